package server

import (
	"context"
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("addr = %q, want :3000", cfg.Addr)
	}
	if cfg.DBPath != "feastly.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("FEASTLY_SERVER_ADDR", ":4000")
	t.Setenv("FEASTLY_SERVER_TOKEN_SECRET", "env-secret")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "override.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":4000" {
		t.Fatalf("addr = %q, want env value", cfg.Addr)
	}
	if cfg.TokenSecret != "env-secret" {
		t.Fatalf("token secret = %q", cfg.TokenSecret)
	}
	if cfg.DBPath != "override.db" {
		t.Fatalf("db path = %q, want flag override", cfg.DBPath)
	}
}

func TestRunRequiresTokenSecret(t *testing.T) {
	if err := Run(context.Background(), Config{Addr: ":0", DBPath: "x.db"}); err == nil {
		t.Fatal("expected error without token secret")
	}
}

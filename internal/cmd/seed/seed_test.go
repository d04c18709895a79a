package seed

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigFlagOverridesDefault(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "custom.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "custom.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestRunSeedsThenSkips(t *testing.T) {
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "feastly.db")}
	ctx := context.Background()

	var first bytes.Buffer
	if err := Run(ctx, cfg, &first); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !strings.Contains(first.String(), "seeded 3 restaurants and 6 menu items") {
		t.Fatalf("first output: %s", first.String())
	}

	var second bytes.Buffer
	if err := Run(ctx, cfg, &second); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(second.String(), "nothing to do") {
		t.Fatalf("second output: %s", second.String())
	}
}

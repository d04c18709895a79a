// Package server parses server command flags and starts the REST API.
package server

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/louisbranch/feastly/internal/auth/token"
	entrypoint "github.com/louisbranch/feastly/internal/platform/cmd"
	"github.com/louisbranch/feastly/internal/server"
	"github.com/louisbranch/feastly/internal/storage/sqlite"
)

// Config holds server command configuration.
type Config struct {
	Addr        string        `env:"FEASTLY_SERVER_ADDR" envDefault:":3000"`
	DBPath      string        `env:"FEASTLY_SERVER_DB_PATH" envDefault:"feastly.db"`
	TokenSecret string        `env:"FEASTLY_SERVER_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"FEASTLY_SERVER_TOKEN_TTL" envDefault:"24h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "The session token lifetime")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the REST API service.
func Run(ctx context.Context, cfg Config) error {
	if cfg.TokenSecret == "" {
		return errors.New("FEASTLY_SERVER_TOKEN_SECRET is required")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close()
		}()

		srv, err := server.NewServer(server.Config{
			Addr:  cfg.Addr,
			Store: store,
			Tokens: token.Config{
				Secret: []byte(cfg.TokenSecret),
				TTL:    cfg.TokenTTL,
			},
		})
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx)
	})
}

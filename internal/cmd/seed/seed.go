// Package seed parses seed command flags and loads the demo catalog.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/louisbranch/feastly/internal/platform/cmd"
	"github.com/louisbranch/feastly/internal/seed"
	"github.com/louisbranch/feastly/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"FEASTLY_SEED_DB_PATH" envDefault:"feastly.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the demo catalog into the configured database.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close()
		}()

		restaurants, items, err := seed.Run(ctx, store)
		if err != nil {
			return err
		}
		if restaurants == 0 {
			fmt.Fprintln(out, "catalog already seeded, nothing to do")
			return nil
		}
		fmt.Fprintf(out, "seeded %d restaurants and %d menu items\n", restaurants, items)
		return nil
	})
}

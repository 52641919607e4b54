// Package valuation parses valuation command flags and starts the gRPC service.
package valuation

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/appraisal/internal/platform/cmd"
	server "github.com/louisbranch/appraisal/internal/services/valuation/server"
)

// Config holds valuation command configuration.
type Config struct {
	Port      int    `env:"VALUATION_PORT" envDefault:"8082"`
	Addr      string `env:"VALUATION_ADDR"`
	DBPath    string `env:"VALUATION_DB_PATH" envDefault:"data/valuations.db"`
	RulesPath string `env:"RULES_PATH"`
	ModelsDir string `env:"MODELS_DIR"`
	Simulate  bool   `env:"SIMULATE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.IntVar(&cfg.Port, "port", cfg.Port, "The valuation server port")
		fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The valuation server listen address (overrides -port)")
		fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite valuation log; empty disables history")
		fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "rule configuration file (JSON or YAML)")
		fs.StringVar(&cfg.ModelsDir, "models", cfg.ModelsDir, "directory of <quantity>_model.json files")
		fs.BoolVar(&cfg.Simulate, "simulate", cfg.Simulate, "simulate predictions when no model is available")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the valuation gRPC service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceValuation, func(ctx context.Context) error {
		return server.Run(ctx, server.Options{
			Addr:      cfg.Addr,
			Port:      cfg.Port,
			DBPath:    cfg.DBPath,
			RulesPath: cfg.RulesPath,
			ModelsDir: cfg.ModelsDir,
			Simulate:  cfg.Simulate,
		})
	})
}

// Package scenario wires the scenario runner command.
package scenario

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"time"

	"github.com/louisbranch/battlegrid/internal/platform/cmd"
	"github.com/louisbranch/battlegrid/internal/random"
	"github.com/louisbranch/battlegrid/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"BATTLEGRID_SCENARIO_FILE"`
	Assertions bool          `env:"BATTLEGRID_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool          `env:"BATTLEGRID_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"BATTLEGRID_SCENARIO_TIMEOUT" envDefault:"10s"`
	Seed       int64         `env:"BATTLEGRID_SEED"`
	Locale     string        `env:"BATTLEGRID_LOCALE"           envDefault:"en-US"`
}

// ParseConfig reads the environment, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every step and engine event")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "dice seed once queued rolls run out (0 picks one)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "narration locale for verbose logs")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return err
	}

	logger := log.New(errOut, "", 0)
	if cfg.Verbose {
		logger.Printf("seed %d", seed)
	}
	return scenario.RunFile(ctx, scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
		Seed:       seed,
		Locale:     cfg.Locale,
	}, cfg.Scenario)
}

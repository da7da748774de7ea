// Package schema wires the saved encounter JSON schema command.
package schema

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/louisbranch/battlegrid/internal/encounter"
	"github.com/louisbranch/battlegrid/internal/platform/cmd"
)

// Config holds schema command configuration.
type Config struct {
	Out string `env:"BATTLEGRID_SCHEMA_OUT"`
}

// ParseConfig reads the environment, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Out, "out", cfg.Out, "write the schema to this file instead of stdout")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run writes the saved encounter schema.
func Run(_ context.Context, cfg Config, out io.Writer) error {
	data, err := json.MarshalIndent(encounter.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	data = append(data, '\n')
	if cfg.Out != "" {
		if err := os.WriteFile(cfg.Out, data, 0o644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		return nil
	}
	if out == nil {
		out = io.Discard
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return nil
}

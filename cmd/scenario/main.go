// Package main runs Lua encounter scripts against an in-process engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/battlegrid/internal/platform/cmd"
	"github.com/louisbranch/battlegrid/internal/platform/config"

	scenariocmd "github.com/louisbranch/battlegrid/internal/cmd/scenario"
)

func main() {
	log.SetPrefix(cmd.LogPrefix)
	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.RunWithTelemetry(ctx, cmd.ServiceScenario, func(ctx context.Context) error {
		return scenariocmd.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

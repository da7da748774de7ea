// Package main serves a live combat encounter over MCP.
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

	battlegridcmd "github.com/louisbranch/battlegrid/internal/cmd/battlegrid"
)

func main() {
	log.SetPrefix(cmd.LogPrefix)
	cfg, err := battlegridcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.RunWithTelemetry(ctx, cmd.ServiceBattlegrid, func(ctx context.Context) error {
		return battlegridcmd.Run(ctx, cfg, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

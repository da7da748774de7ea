// Package main lists, exports and imports saved encounters.
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

	exportcmd "github.com/louisbranch/battlegrid/internal/cmd/export"
)

func main() {
	log.SetPrefix(cmd.LogPrefix)
	cfg, err := exportcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.RunWithTelemetry(ctx, cmd.ServiceExport, func(ctx context.Context) error {
		return exportcmd.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

// Package main prints the JSON schema of saved encounters.
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

	schemacmd "github.com/louisbranch/battlegrid/internal/cmd/schema"
)

func main() {
	log.SetPrefix(cmd.LogPrefix)
	cfg, err := schemacmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.RunWithTelemetry(ctx, cmd.ServiceSchema, func(ctx context.Context) error {
		return schemacmd.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

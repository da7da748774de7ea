// Package battlegrid wires the MCP encounter server command.
package battlegrid

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"strings"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/library"
	"github.com/louisbranch/battlegrid/internal/narration"
	"github.com/louisbranch/battlegrid/internal/platform/cmd"
	"github.com/louisbranch/battlegrid/internal/platform/config"
	"github.com/louisbranch/battlegrid/internal/platform/id"
	"github.com/louisbranch/battlegrid/internal/random"
	"github.com/louisbranch/battlegrid/internal/render"
	"github.com/louisbranch/battlegrid/internal/services/mcp/domain"
	"github.com/louisbranch/battlegrid/internal/services/mcp/service"
	"github.com/louisbranch/battlegrid/internal/storage"
	"github.com/louisbranch/battlegrid/internal/storage/backend"
)

// Config holds MCP command configuration.
type Config struct {
	Transport    string   `env:"BATTLEGRID_MCP_TRANSPORT"     envDefault:"stdio"`
	HTTPAddr     string   `env:"BATTLEGRID_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	AllowedHosts []string `env:"BATTLEGRID_MCP_ALLOWED_HOSTS" envSeparator:","`
	Seed         int64    `env:"BATTLEGRID_SEED"`
	Locale       string   `env:"BATTLEGRID_LOCALE"            envDefault:"en-US"`
	Persist      bool     `env:"BATTLEGRID_PERSIST"           envDefault:"true"`
	Verbose      bool     `env:"BATTLEGRID_VERBOSE"`
	MapWidth     int      `env:"BATTLEGRID_MAP_WIDTH"         envDefault:"800"`
	MapHeight    int      `env:"BATTLEGRID_MAP_HEIGHT"        envDefault:"600"`
	Store        config.Store
}

// ParseConfig reads the environment, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	hosts := strings.Join(cfg.AllowedHosts, ",")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "listen address for the http transport")
	fs.StringVar(&hosts, "allowed-hosts", hosts, "comma separated hosts accepted besides loopback")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "dice seed (0 picks one)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "narration and error locale")
	fs.BoolVar(&cfg.Persist, "persist", cfg.Persist, "enable saved encounters")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every engine event")
	fs.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "encounter store backend: bolt or sqlite")
	fs.StringVar(&cfg.Store.Path, "store-path", cfg.Store.Path, "encounter store file")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.AllowedHosts = splitHosts(hosts)
	return cfg, nil
}

// Run serves one live encounter until the context ends or the client
// disconnects. Logs go to errOut since stdio carries the protocol.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	session, closeStore, err := NewSession(cfg, errOut)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()
	return service.Run(ctx, session, service.Config{
		Transport:    service.TransportKind(cfg.Transport),
		HTTPAddr:     cfg.HTTPAddr,
		AllowedHosts: cfg.AllowedHosts,
	})
}

// NewSession builds the engine, battle map and optional library behind the
// server. The returned func closes the store.
func NewSession(cfg Config, errOut io.Writer) (*domain.Session, func() error, error) {
	if errOut == nil {
		errOut = io.Discard
	}
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(errOut, cmd.LogPrefix, 0)
	logger.Printf("seed %d", seed)

	src := dice.NewSource(seed)
	scene := render.New(render.Config{Width: cfg.MapWidth, Height: cfg.MapHeight})
	engine := combat.New(combat.Config{Dice: src, Adapter: scene})
	if cfg.Verbose {
		engine.Subscribe(narration.LogObserver(logger, narration.New(cfg.Locale), engine.Registry))
	}

	closeStore := func() error { return nil }
	var lib *library.Library
	if cfg.Persist {
		var store storage.EncounterStore
		store, err = backend.Open(cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		closeStore = store.Close
		lib = library.New(store, id.NewID, nil)
	}

	session, err := domain.NewSession(domain.SessionConfig{
		Engine:  engine,
		Dice:    src,
		Library: lib,
		Map:     scene,
		Locale:  cfg.Locale,
	})
	if err != nil {
		return nil, nil, errors.Join(err, closeStore())
	}
	return session, closeStore, nil
}

func splitHosts(value string) []string {
	var hosts []string
	for _, host := range strings.Split(value, ",") {
		if host = strings.TrimSpace(host); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

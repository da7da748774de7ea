// Package export wires the saved encounter export command.
package export

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/library"
	"github.com/louisbranch/battlegrid/internal/platform/cmd"
	"github.com/louisbranch/battlegrid/internal/platform/config"
	"github.com/louisbranch/battlegrid/internal/render"
	"github.com/louisbranch/battlegrid/internal/storage/backend"
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// Config holds export command configuration.
type Config struct {
	EncounterID string `env:"BATTLEGRID_EXPORT_ID"`
	Import      string `env:"BATTLEGRID_EXPORT_IMPORT"`
	PNG         string `env:"BATTLEGRID_EXPORT_PNG"`
	Clipboard   bool   `env:"BATTLEGRID_CLIPBOARD"`
	Stats       bool
	Clear       bool
	Store       config.Store
}

// ParseConfig reads the environment, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.EncounterID, "id", cfg.EncounterID, "saved encounter to export (empty lists saves)")
	fs.StringVar(&cfg.Import, "import", cfg.Import, "exported encounter file to import")
	fs.StringVar(&cfg.PNG, "png", cfg.PNG, "also render the exported encounter to this PNG file")
	fs.BoolVar(&cfg.Clipboard, "clipboard", cfg.Clipboard, "also copy the exported JSON to the clipboard")
	fs.BoolVar(&cfg.Stats, "stats", false, "print how many encounters are saved and their size")
	fs.BoolVar(&cfg.Clear, "clear", false, "delete every saved encounter")
	fs.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "encounter store backend: bolt or sqlite")
	fs.StringVar(&cfg.Store.Path, "store-path", cfg.Store.Path, "encounter store file")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run lists, exports or imports saved encounters, or reports and clears the
// whole store.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.Import != "" && cfg.EncounterID != "" {
		return errors.New("import and id are mutually exclusive")
	}
	if cfg.Clear && (cfg.Import != "" || cfg.EncounterID != "") {
		return errors.New("clear cannot be combined with import or id")
	}
	store, err := backend.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()
	lib := library.New(store, nil, nil)

	switch {
	case cfg.Clear:
		return clearAll(ctx, lib, out)
	case cfg.Stats:
		return printStats(ctx, lib, out)
	case cfg.Import != "":
		return importFile(ctx, lib, cfg.Import, out)
	case cfg.EncounterID == "":
		return list(ctx, lib, out)
	default:
		return exportEncounter(ctx, lib, cfg, out)
	}
}

func list(ctx context.Context, lib *library.Library, out io.Writer) error {
	saves, err := lib.List(ctx)
	if err != nil {
		return err
	}
	for _, meta := range saves {
		stamp := time.UnixMilli(meta.Timestamp).UTC().Format(time.RFC3339)
		if _, err := fmt.Fprintf(out, "%s\t%s\t%d entities\t%s\n", meta.ID, stamp, meta.EntityCount, meta.Name); err != nil {
			return err
		}
	}
	return nil
}

func printStats(ctx context.Context, lib *library.Library, out io.Writer) error {
	s, err := lib.Stats(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d encounters\t%d bytes\n", s.Count, s.Bytes)
	return err
}

func clearAll(ctx context.Context, lib *library.Library, out io.Writer) error {
	s, err := lib.Stats(ctx)
	if err != nil {
		return err
	}
	if err := lib.Clear(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "deleted %d encounters\n", s.Count)
	return err
}

func importFile(ctx context.Context, lib *library.Library, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import: %w", err)
	}
	defer f.Close()

	meta, err := lib.Import(ctx, f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "imported %s as %s\n", meta.Name, meta.ID)
	return err
}

func exportEncounter(ctx context.Context, lib *library.Library, cfg Config, out io.Writer) error {
	var buf bytes.Buffer
	if err := lib.Export(ctx, cfg.EncounterID, &buf); err != nil {
		return err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if cfg.Clipboard {
		if err := writeClipboard(buf.String()); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	if cfg.PNG == "" {
		return nil
	}

	scene := render.New(render.Config{})
	engine := combat.New(combat.Config{Adapter: scene})
	if _, err := lib.Restore(ctx, cfg.EncounterID, engine); err != nil {
		return err
	}
	return scene.SavePNG(cfg.PNG)
}

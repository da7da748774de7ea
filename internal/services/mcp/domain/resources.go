package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/encounter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// StateResourceURI serves the live encounter in the saved-encounter format.
	StateResourceURI = "battlegrid://encounter/state"
	// HistoryResourceURI serves the action log, newest last.
	HistoryResourceURI = "battlegrid://encounter/history"
	// CatalogResourceURI serves weapons, spells and status presets.
	CatalogResourceURI = "battlegrid://catalog"
	// EncountersResourceURI serves the saved encounter summaries.
	EncountersResourceURI = "battlegrid://encounters"
	// MapResourceURI serves the battle map as PNG.
	MapResourceURI = "battlegrid://encounter/map"
)

const (
	jsonMIME = "application/json"
	pngMIME  = "image/png"
)

// SubscribableURIs are the resources that send update notifications.
var SubscribableURIs = []string{StateResourceURI, HistoryResourceURI, EncountersResourceURI, MapResourceURI}

// StateResource defines the live encounter resource.
func StateResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "encounter_state",
		Title:       "Encounter state",
		Description: "Entities, turn order, round and status effects of the live encounter",
		MIMEType:    jsonMIME,
		URI:         StateResourceURI,
	}
}

// StateResourceHandler reads the live encounter.
func StateResourceHandler(s *Session) mcp.ResourceHandler {
	return s.resource("encounter_state", func(context.Context) (any, error) {
		return encounter.Snapshot(s.engine.State(), nil, s.engine.StatusEffects(), encounter.Meta{Name: "live"}, s.clock()), nil
	})
}

// HistoryResource defines the action log resource.
func HistoryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "encounter_history",
		Title:       "Action history",
		Description: "Every resolved action of the live encounter, oldest first",
		MIMEType:    jsonMIME,
		URI:         HistoryResourceURI,
	}
}

// HistoryResourceHandler reads the action log.
func HistoryResourceHandler(s *Session) mcp.ResourceHandler {
	return s.resource("encounter_history", func(context.Context) (any, error) {
		history := s.engine.History()
		snapshot := encounter.Snapshot(combat.NewState(), history, nil, encounter.Meta{}, s.clock())
		for i := range snapshot.ActionHistory {
			snapshot.ActionHistory[i].Description = s.narrate(history[i])
		}
		return snapshot.ActionHistory, nil
	})
}

type catalogWeapon struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Damage      string `json:"damage"`
	DamageType  string `json:"damage_type"`
	Range       int    `json:"range"`
	AttackBonus int    `json:"attack_bonus"`
}

type catalogSpell struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Level       int     `json:"level"`
	School      string  `json:"school"`
	Range       int     `json:"range"`
	Damage      string  `json:"damage,omitempty"`
	DamageType  string  `json:"damage_type,omitempty"`
	Heal        string  `json:"heal,omitempty"`
	Save        string  `json:"save,omitempty"`
	AreaShape   string  `json:"area_shape,omitempty"`
	AreaSize    float64 `json:"area_size,omitempty"`
	Description string  `json:"description"`
}

type catalogStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Color       string `json:"color"`
}

type catalog struct {
	Weapons       []catalogWeapon `json:"weapons"`
	Spells        []catalogSpell  `json:"spells"`
	StatusPresets []catalogStatus `json:"status_presets"`
}

// CatalogResource defines the reference data resource.
func CatalogResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "catalog",
		Title:       "Catalog",
		Description: "Weapon, spell and status preset keys accepted by the combat tools",
		MIMEType:    jsonMIME,
		URI:         CatalogResourceURI,
	}
}

// CatalogResourceHandler reads the catalog.
func CatalogResourceHandler(s *Session) mcp.ResourceHandler {
	return s.resource("catalog", func(context.Context) (any, error) {
		return buildCatalog()
	})
}

func buildCatalog() (catalog, error) {
	var out catalog
	for _, key := range combat.WeaponKeys() {
		w, err := combat.LookupWeapon(key)
		if err != nil {
			return catalog{}, err
		}
		out.Weapons = append(out.Weapons, catalogWeapon{
			Key:         key,
			Name:        w.Name,
			Damage:      w.Damage,
			DamageType:  string(w.DamageType),
			Range:       w.Range,
			AttackBonus: w.AttackBonus,
		})
	}
	for _, key := range combat.SpellKeys() {
		sp, err := combat.LookupSpell(key)
		if err != nil {
			return catalog{}, err
		}
		entry := catalogSpell{
			Key:         key,
			Name:        sp.Name,
			Level:       sp.Level,
			School:      string(sp.School),
			Range:       sp.Range,
			Damage:      sp.Damage,
			DamageType:  string(sp.DamageType),
			Heal:        sp.Heal,
			Save:        string(sp.Save),
			Description: sp.Description,
		}
		if sp.Area != nil {
			entry.AreaShape = string(sp.Area.Shape)
			entry.AreaSize = sp.Area.Size
		}
		out.Spells = append(out.Spells, entry)
	}
	for _, preset := range combat.StatusPresets() {
		out.StatusPresets = append(out.StatusPresets, catalogStatus{
			Name:        preset.Name,
			Description: preset.Description,
			Duration:    preset.Duration,
			Color:       preset.Color,
		})
	}
	return out, nil
}

// EncountersResource defines the saved encounter listing resource.
func EncountersResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "encounters",
		Title:       "Saved encounters",
		Description: "Summaries of every saved encounter, newest first",
		MIMEType:    jsonMIME,
		URI:         EncountersResourceURI,
	}
}

// EncountersResourceHandler reads the saved encounter listing.
func EncountersResourceHandler(s *Session) mcp.ResourceHandler {
	return s.resource("encounters", func(ctx context.Context) (any, error) {
		if s.library == nil {
			return nil, errNoLibrary
		}
		list, err := s.library.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]EncounterResult, 0, len(list))
		for _, meta := range list {
			out = append(out, encounterResult(meta))
		}
		return out, nil
	})
}

// resource wraps a read under the session lock and encodes its payload as
// JSON text content.
func (s *Session) resource(name string, read func(ctx context.Context) (any, error)) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		var payload []byte
		err := s.call(ctx, "resource."+name, false, func(ctx context.Context) error {
			value, err := read(ctx)
			if err != nil {
				return err
			}
			payload, err = json.MarshalIndent(value, "", "  ")
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		uri := ""
		if req != nil && req.Params != nil {
			uri = req.Params.URI
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIME, Text: string(payload)}},
		}, nil
	}
}

// MapResource defines the battle map resource.
func MapResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "encounter_map",
		Title:       "Battle map",
		Description: "Top-down PNG of tokens, movement ranges and spell areas",
		MIMEType:    pngMIME,
		URI:         MapResourceURI,
	}
}

// MapResourceHandler renders the battle map.
func MapResourceHandler(s *Session) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		var buf bytes.Buffer
		err := s.call(ctx, "resource.encounter_map", false, func(context.Context) error {
			if s.scene == nil {
				return errors.New("battle map is not configured")
			}
			return s.scene.EncodePNG(&buf)
		})
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: MapResourceURI, MIMEType: pngMIME, Blob: buf.Bytes()}},
		}, nil
	}
}

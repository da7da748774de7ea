package domain

import (
	"context"
	"errors"

	"github.com/louisbranch/battlegrid/internal/encounter"
	"github.com/louisbranch/battlegrid/internal/library"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errNoLibrary = errors.New("encounter storage is not configured")

// EncounterSaveTool defines the MCP tool schema for saving the encounter.
func EncounterSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_save",
		Description: "Saves the current encounter under a name. A template keeps the roster with full hit points and no history.",
	}
}

// EncounterSaveHandler executes an encounter save request.
func EncounterSaveHandler(s *Session) mcp.ToolHandlerFor[EncounterSaveInput, EncounterResult] {
	return handle(s, "encounter_save", false, func(ctx context.Context, in EncounterSaveInput) (EncounterResult, error) {
		if s.library == nil {
			return EncounterResult{}, errNoLibrary
		}
		save := s.library.Save
		if in.Template {
			save = s.library.SaveTemplate
		}
		meta, err := save(ctx, in.Name, in.Description, s.engine)
		if err != nil {
			return EncounterResult{}, err
		}
		s.notifyLater(EncountersResourceURI)
		return encounterResult(meta), nil
	})
}

// EncounterQuickSaveTool defines the MCP tool schema for a quick save.
func EncounterQuickSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_quick_save",
		Description: "Saves the current encounter under a timestamped name",
	}
}

// EncounterQuickSaveHandler executes a quick save request.
func EncounterQuickSaveHandler(s *Session) mcp.ToolHandlerFor[EmptyInput, EncounterResult] {
	return handle(s, "encounter_quick_save", false, func(ctx context.Context, _ EmptyInput) (EncounterResult, error) {
		if s.library == nil {
			return EncounterResult{}, errNoLibrary
		}
		meta, err := s.library.QuickSave(ctx, s.engine)
		if err != nil {
			return EncounterResult{}, err
		}
		s.notifyLater(EncountersResourceURI)
		return encounterResult(meta), nil
	})
}

// EncounterLoadTool defines the MCP tool schema for loading an encounter.
func EncounterLoadTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_load",
		Description: "Replaces the current encounter with a saved one",
	}
}

// EncounterLoadHandler executes an encounter load request.
func EncounterLoadHandler(s *Session) mcp.ToolHandlerFor[EncounterIDInput, EncounterResult] {
	return handle(s, "encounter_load", true, func(ctx context.Context, in EncounterIDInput) (EncounterResult, error) {
		if s.library == nil {
			return EncounterResult{}, errNoLibrary
		}
		encounterID, err := requireID("encounter_id", in.EncounterID)
		if err != nil {
			return EncounterResult{}, err
		}
		saved, err := s.library.Restore(ctx, encounterID, s.engine)
		if err != nil {
			return EncounterResult{}, err
		}
		return encounterResult(saved.Metadata()), nil
	})
}

// EncounterDeleteTool defines the MCP tool schema for deleting a save.
func EncounterDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_delete",
		Description: "Deletes a saved encounter. The live encounter is not affected.",
	}
}

// EncounterDeleteHandler executes an encounter delete request.
func EncounterDeleteHandler(s *Session) mcp.ToolHandlerFor[EncounterIDInput, OKResult] {
	return handle(s, "encounter_delete", false, func(ctx context.Context, in EncounterIDInput) (OKResult, error) {
		if s.library == nil {
			return OKResult{}, errNoLibrary
		}
		encounterID, err := requireID("encounter_id", in.EncounterID)
		if err != nil {
			return OKResult{}, err
		}
		if err := s.library.Delete(ctx, encounterID); err != nil {
			return OKResult{}, err
		}
		s.notifyLater(EncountersResourceURI)
		return OKResult{OK: true}, nil
	})
}

// EncounterListTool defines the MCP tool schema for listing saves.
func EncounterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_list",
		Description: "Lists saved encounters, newest first, one page at a time",
	}
}

// EncounterListHandler executes an encounter list request.
func EncounterListHandler(s *Session) mcp.ToolHandlerFor[EncounterListInput, EncounterListResult] {
	return handle(s, "encounter_list", false, func(ctx context.Context, in EncounterListInput) (EncounterListResult, error) {
		if s.library == nil {
			return EncounterListResult{}, errNoLibrary
		}
		page, err := s.library.ListPage(ctx, library.PageRequest{
			Size:   in.PageSize,
			Token:  in.PageToken,
			Filter: in.Filter,
		})
		if err != nil {
			return EncounterListResult{}, err
		}
		result := EncounterListResult{
			Encounters:    make([]EncounterResult, 0, len(page.Encounters)),
			NextPageToken: page.NextToken,
		}
		for _, meta := range page.Encounters {
			result.Encounters = append(result.Encounters, encounterResult(meta))
		}
		return result, nil
	})
}

func encounterResult(meta encounter.Metadata) EncounterResult {
	return EncounterResult{
		ID:          meta.ID,
		Name:        meta.Name,
		Description: meta.Description,
		Timestamp:   meta.Timestamp,
		EntityCount: meta.EntityCount,
	}
}

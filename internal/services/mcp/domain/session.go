package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/library"
	"github.com/louisbranch/battlegrid/internal/narration"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
	"github.com/louisbranch/battlegrid/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("battlegrid/mcp")

// ResourceUpdateNotifier tells subscribed clients that a resource changed.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

// SessionConfig wires a Session. Engine and Dice must share one source so
// tool rolls and engine rolls draw from the same sequence.
type SessionConfig struct {
	Engine  *combat.Engine
	Dice    dice.Source
	Library *library.Library
	// Map is the scene adapter attached to Engine, if any. It backs the map
	// resource and must receive the same adapter calls as Engine.
	Map    MapRenderer
	Locale string
	Clock  func() time.Time
}

// MapRenderer draws the battle map of the live encounter.
type MapRenderer interface {
	EncodePNG(w io.Writer) error
}

// Session is one encounter driven over MCP. The engine is single-writer, so
// every tool call and resource read holds mu.
type Session struct {
	mu       sync.Mutex
	engine   *combat.Engine
	dice     dice.Source
	library  *library.Library
	scene    MapRenderer
	narrator *narration.Narrator
	clock    func() time.Time
	notify   ResourceUpdateNotifier
	pending  []string
}

// NewSession builds a session. A nil Library disables the encounter tools.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Dice == nil {
		return nil, errors.New("dice source is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		engine:   cfg.Engine,
		dice:     cfg.Dice,
		library:  cfg.Library,
		scene:    cfg.Map,
		narrator: narration.New(cfg.Locale),
		clock:    clock,
	}, nil
}

// SetNotifier installs the resource update callback.
func (s *Session) SetNotifier(notify ResourceUpdateNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = notify
}

// Locale is the narration and error locale of the session.
func (s *Session) Locale() string { return s.narrator.Locale() }

// HasLibrary reports whether encounter persistence is configured.
func (s *Session) HasLibrary() bool { return s.library != nil }

// HasMap reports whether a battle map is attached.
func (s *Session) HasMap() bool { return s.scene != nil }

// call runs fn under the session lock inside a span. Expired spell areas are
// pruned first. A panic in fn is returned as an error and the lock is
// released either way. A mutating call that succeeds notifies the encounter
// resources after the lock is released.
func (s *Session) call(ctx context.Context, name string, mutates bool, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "mcp."+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.Bool("battlegrid.mutates", mutates)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
	defer cancel()

	var (
		state  combat.State
		notify ResourceUpdateNotifier
		uris   []string
	)
	err := func() (err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s failed: %v", name, r)
			}
			state = s.engine.State()
			notify = s.notify
			uris = s.pending
			s.pending = nil
		}()
		s.engine.PruneAreas(s.clock())
		return fn(ctx)
	}()

	span.SetAttributes(
		attribute.Int("battlegrid.round", state.Round),
		attribute.Bool("battlegrid.active", state.IsActive),
		attribute.Int("battlegrid.entities", len(state.Entities)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		return s.toolError(err)
	}
	if mutates {
		uris = append(uris, StateResourceURI, HistoryResourceURI)
		if s.scene != nil {
			uris = append(uris, MapResourceURI)
		}
	}
	if notify != nil {
		for _, uri := range uris {
			notify(ctx, uri)
		}
	}
	return nil
}

// notifyLater queues a resource update for the end of the current call.
// Callers hold mu.
func (s *Session) notifyLater(uri string) {
	s.pending = append(s.pending, uri)
}

// toolError renders err for the client in the session locale, keeping the
// code so agents can branch on it.
func (s *Session) toolError(err error) error {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		return err
	}
	return fmt.Errorf("%s: %s", code, apperrors.Localize(err, s.Locale()))
}

// narrate renders an action in the session locale.
func (s *Session) narrate(action combat.Action) string {
	return s.narrator.Action(action, s.engine.Registry)
}

// handle adapts an engine command into a typed MCP tool handler.
func handle[I, O any](s *Session, name string, mutates bool, fn func(ctx context.Context, in I) (O, error)) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in I) (*mcp.CallToolResult, O, error) {
		var out O
		err := s.call(ctx, name, mutates, func(ctx context.Context) error {
			var err error
			out, err = fn(ctx, in)
			return err
		})
		if err != nil {
			var zero O
			return nil, zero, err
		}
		return nil, out, nil
	}
}

func requireID(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	return value, nil
}

func entityNotFound(entityID string) error {
	return apperrors.WithMetadata(apperrors.CodeEntityNotFound,
		fmt.Sprintf("entity %q not found", entityID), map[string]string{"EntityID": entityID})
}

package service

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/louisbranch/battlegrid/internal/platform/branding"
	"github.com/louisbranch/battlegrid/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

type registrationModule struct {
	name     string
	register func(*mcp.Server, *domain.Session) error
}

const (
	entityToolsModuleName    = "entity-tools"
	turnToolsModuleName      = "turn-tools"
	actionToolsModuleName    = "action-tools"
	encounterToolsModuleName = "encounter-tools"
	resourcesModuleName      = "resources"
)

func registrationModules(session *domain.Session) []registrationModule {
	modules := []registrationModule{
		{name: entityToolsModuleName, register: registerEntityTools},
		{name: turnToolsModuleName, register: registerTurnTools},
		{name: actionToolsModuleName, register: registerActionTools},
	}
	if session.HasLibrary() {
		modules = append(modules, registrationModule{name: encounterToolsModuleName, register: registerEncounterTools})
	}
	return append(modules, registrationModule{name: resourcesModuleName, register: registerResources})
}

func registerEntityTools(server *mcp.Server, s *domain.Session) error {
	mcp.AddTool(server, domain.EntityAddTool(), domain.EntityAddHandler(s))
	mcp.AddTool(server, domain.EntityRemoveTool(), domain.EntityRemoveHandler(s))
	mcp.AddTool(server, domain.EntityUpdateTool(), domain.EntityUpdateHandler(s))
	mcp.AddTool(server, domain.FlyTool(), domain.FlyHandler(s))
	mcp.AddTool(server, domain.LandTool(), domain.LandHandler(s))
	mcp.AddTool(server, domain.StatusAddTool(), domain.StatusAddHandler(s))
	mcp.AddTool(server, domain.StatusRemoveTool(), domain.StatusRemoveHandler(s))
	mcp.AddTool(server, domain.ConditionAddTool(), domain.ConditionAddHandler(s))
	mcp.AddTool(server, domain.ConditionRemoveTool(), domain.ConditionRemoveHandler(s))
	return nil
}

func registerTurnTools(server *mcp.Server, s *domain.Session) error {
	mcp.AddTool(server, domain.CombatStartTool(), domain.CombatStartHandler(s))
	mcp.AddTool(server, domain.TurnNextTool(), domain.TurnNextHandler(s))
	mcp.AddTool(server, domain.CombatEndTool(), domain.CombatEndHandler(s))
	mcp.AddTool(server, domain.InitiativeSetTool(), domain.InitiativeSetHandler(s))
	mcp.AddTool(server, domain.InitiativeSwapTool(), domain.InitiativeSwapHandler(s))
	mcp.AddTool(server, domain.DiceRollTool(), domain.DiceRollHandler(s))
	return nil
}

func registerActionTools(server *mcp.Server, s *domain.Session) error {
	mcp.AddTool(server, domain.AttackTool(), domain.AttackHandler(s))
	mcp.AddTool(server, domain.CastSpellTool(), domain.CastSpellHandler(s))
	mcp.AddTool(server, domain.MoveTool(), domain.MoveHandler(s))
	mcp.AddTool(server, domain.DashTool(), domain.DashHandler(s))
	mcp.AddTool(server, domain.DodgeTool(), domain.DodgeHandler(s))
	mcp.AddTool(server, domain.DamageTool(), domain.DamageHandler(s))
	mcp.AddTool(server, domain.HealTool(), domain.HealHandler(s))
	return nil
}

func registerEncounterTools(server *mcp.Server, s *domain.Session) error {
	mcp.AddTool(server, domain.EncounterSaveTool(), domain.EncounterSaveHandler(s))
	mcp.AddTool(server, domain.EncounterQuickSaveTool(), domain.EncounterQuickSaveHandler(s))
	mcp.AddTool(server, domain.EncounterLoadTool(), domain.EncounterLoadHandler(s))
	mcp.AddTool(server, domain.EncounterDeleteTool(), domain.EncounterDeleteHandler(s))
	mcp.AddTool(server, domain.EncounterListTool(), domain.EncounterListHandler(s))
	return nil
}

func registerResources(server *mcp.Server, s *domain.Session) error {
	server.AddResource(domain.StateResource(), domain.StateResourceHandler(s))
	server.AddResource(domain.HistoryResource(), domain.HistoryResourceHandler(s))
	server.AddResource(domain.CatalogResource(), domain.CatalogResourceHandler(s))
	if s.HasLibrary() {
		server.AddResource(domain.EncountersResource(), domain.EncountersResourceHandler(s))
	}
	if s.HasMap() {
		server.AddResource(domain.MapResource(), domain.MapResourceHandler(s))
	}
	return nil
}

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs streamable MCP over HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for the HTTP transport.
	HTTPAddr string
	// AllowedHosts extends the loopback hosts accepted in Host headers.
	AllowedHosts []string
}

// Server hosts the MCP server for one encounter session.
type Server struct {
	mcpServer *mcp.Server
	session   *domain.Session
}

// New registers every tool and resource for session.
func New(session *domain.Session) (*Server, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	session.SetNotifier(func(ctx context.Context, uri string) {
		if strings.TrimSpace(uri) == "" {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.Printf("mcp resource updated notify failed: uri=%s err=%v", uri, err)
		}
	})

	for _, module := range registrationModules(session) {
		if err := module.register(mcpServer, session); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return &Server{mcpServer: mcpServer, session: session}, nil
}

// resourceSubscribeHandler accepts subscriptions to resources that send
// update notifications.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	if !slices.Contains(domain.SubscribableURIs, req.Params.URI) {
		return fmt.Errorf("resource %q does not support subscriptions", req.Params.URI)
	}
	return nil
}

// resourceUnsubscribeHandler accepts unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

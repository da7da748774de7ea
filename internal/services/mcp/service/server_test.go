package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/library"
	"github.com/louisbranch/battlegrid/internal/platform/id"
	"github.com/louisbranch/battlegrid/internal/render"
	"github.com/louisbranch/battlegrid/internal/services/mcp/domain"
	storagebbolt "github.com/louisbranch/battlegrid/internal/storage/bbolt"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestSession(t *testing.T, withLibrary bool, faces ...int) *domain.Session {
	t.Helper()
	src := dice.NewSequenceSource(dice.NewSource(1), faces...)
	engine := combat.New(combat.Config{Dice: src, IDs: id.Sequential("id")})
	var lib *library.Library
	if withLibrary {
		store, err := storagebbolt.Open(filepath.Join(t.TempDir(), "encounters.db"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		lib = library.New(store, id.Sequential("enc"), nil)
	}
	session, err := domain.NewSession(domain.SessionConfig{Engine: engine, Dice: src, Library: lib})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

// connect serves server over in-memory transports and returns a client
// session. Both sides stop when the test ends.
func connect(t *testing.T, server *Server, opts *mcp.ClientOptions) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, opts)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("serve did not stop after cancel")
		}
	})
	return session
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if result == nil || result.IsError {
		t.Fatalf("call %s failed: %+v", name, result)
	}
	return decodeStructuredContent[T](t, result.StructuredContent)
}

func TestNewRequiresSession(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}

func TestListToolsDependsOnLibrary(t *testing.T) {
	tests := []struct {
		name        string
		withLibrary bool
		want        int
	}{
		{name: "engine only", want: 22},
		{name: "with library", withLibrary: true, want: 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := New(newTestSession(t, tt.withLibrary))
			if err != nil {
				t.Fatalf("new server: %v", err)
			}
			session := connect(t, server, nil)
			tools, err := session.ListTools(context.Background(), nil)
			if err != nil {
				t.Fatalf("list tools: %v", err)
			}
			if len(tools.Tools) != tt.want {
				t.Fatalf("tools = %d, want %d", len(tools.Tools), tt.want)
			}
		})
	}
}

func TestToolRoundTrip(t *testing.T) {
	server, err := New(newTestSession(t, false, 10, 15))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	session := connect(t, server, nil)

	fighter := callTool[domain.EntityResult](t, session, "entity_add", map[string]any{
		"name": "Fighter", "max_hp": 20, "armor_class": 16, "position": map[string]any{"x": 0, "z": 0},
	})
	goblin := callTool[domain.EntityResult](t, session, "entity_add", map[string]any{
		"name": "Goblin", "type": "enemy", "max_hp": 7, "armor_class": 13, "position": map[string]any{"x": 1, "z": 0},
	})
	turn := callTool[domain.TurnResult](t, session, "combat_start", map[string]any{})
	if turn.CurrentID != goblin.ID || turn.Round != 1 {
		t.Fatalf("turn = %+v, want goblin first", turn)
	}
	turn = callTool[domain.TurnResult](t, session, "turn_next", map[string]any{})
	if turn.CurrentID != fighter.ID {
		t.Fatalf("turn = %+v, want fighter", turn)
	}

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "heal",
		Arguments: map[string]any{"entity_id": "nobody", "amount": 1},
	})
	if err == nil && (result == nil || !result.IsError) {
		t.Fatal("expected tool error for unknown entity")
	}
	if err == nil {
		text := result.Content[0].(*mcp.TextContent).Text
		if !strings.Contains(text, "ENTITY_NOT_FOUND") {
			t.Fatalf("error text = %q", text)
		}
	}
}

func TestReadMapResource(t *testing.T) {
	src := dice.NewSource(1)
	scene := render.New(render.Config{Width: 200, Height: 200})
	engine := combat.New(combat.Config{Dice: src, Adapter: scene, IDs: id.Sequential("id")})
	s, err := domain.NewSession(domain.SessionConfig{Engine: engine, Dice: src, Map: scene})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	server, err := New(s)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	session := connect(t, server, nil)
	callTool[domain.EntityResult](t, session, "entity_add", map[string]any{"name": "Owlbear", "max_hp": 59})

	result, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: domain.MapResourceURI})
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].MIMEType != "image/png" {
		t.Fatalf("contents = %+v", result.Contents)
	}
	if blob := result.Contents[0].Blob; len(blob) < 8 || string(blob[1:4]) != "PNG" {
		t.Fatalf("blob is not a PNG (%d bytes)", len(blob))
	}
}

func TestReadResources(t *testing.T) {
	server, err := New(newTestSession(t, true))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	session := connect(t, server, nil)
	callTool[domain.EntityResult](t, session, "entity_add", map[string]any{
		"name": "Owlbear", "type": "enemy", "max_hp": 59, "armor_class": 13, "position": map[string]any{"x": 3, "z": 4},
	})

	for _, tt := range []struct {
		uri  string
		want string
	}{
		{uri: domain.StateResourceURI, want: "Owlbear"},
		{uri: domain.HistoryResourceURI, want: "[]"},
		{uri: domain.CatalogResourceURI, want: "fireball"},
		{uri: domain.EncountersResourceURI, want: "[]"},
	} {
		t.Run(tt.uri, func(t *testing.T) {
			result, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: tt.uri})
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(result.Contents) != 1 || !strings.Contains(result.Contents[0].Text, tt.want) {
				t.Fatalf("contents = %+v, want %q", result.Contents, tt.want)
			}
		})
	}
}

func TestSubscribedClientsReceiveStateUpdates(t *testing.T) {
	server, err := New(newTestSession(t, false))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	updates := make(chan string, 8)
	session := connect(t, server, &mcp.ClientOptions{
		ResourceUpdatedHandler: func(_ context.Context, req *mcp.ResourceUpdatedNotificationRequest) {
			updates <- req.Params.URI
		},
	})

	ctx := context.Background()
	if err := session.Subscribe(ctx, &mcp.SubscribeParams{URI: domain.StateResourceURI}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := session.Subscribe(ctx, &mcp.SubscribeParams{URI: domain.CatalogResourceURI}); err == nil {
		t.Fatal("expected catalog subscription to be rejected")
	}

	callTool[domain.EntityResult](t, session, "entity_add", map[string]any{
		"name": "Fighter", "max_hp": 20, "armor_class": 16, "position": map[string]any{"x": 0, "z": 0},
	})
	select {
	case uri := <-updates:
		if uri != domain.StateResourceURI {
			t.Fatalf("update uri = %s", uri)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no resource update received")
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), newTestSession(t, false), Config{Transport: "websocket"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("error = %v, want not supported", err)
	}
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	server, err := New(newTestSession(t, false))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveListener(ctx, listener, nil)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/mcp/health")
	if err != nil {
		cancel()
		t.Fatalf("health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestHostGuard(t *testing.T) {
	server, err := New(newTestSession(t, false))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	handler := server.Handler([]string{"battlegrid.example"})

	tests := []struct {
		name   string
		host   string
		origin string
		want   int
	}{
		{name: "foreign host", host: "evil.example", want: http.StatusForbidden},
		{name: "foreign origin", host: "localhost:8081", origin: "http://evil.example", want: http.StatusForbidden},
		{name: "allowed host", host: "battlegrid.example:8081", want: http.StatusMethodNotAllowed},
		{name: "loopback", host: "127.0.0.1:8081", origin: "http://localhost:3000", want: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/mcp", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestIsLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{" localhost ", true},
		{"example.com", false},
		{"127.0.0.2", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := isLoopbackHost(tt.host); got != tt.want {
				t.Errorf("isLoopbackHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOk bool
	}{
		{"localhost:8081", "localhost", true},
		{"[::1]:8081", "::1", true},
		{"[::1]", "::1", true},
		{"::1", "::1", true},
		{"example.com", "example.com", true},
		{"", "", false},
		{"[::1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := normalizeHost(tt.input)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("normalizeHost(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/battlegrid/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultHTTPAddr = "localhost:8081"

// Handler returns the HTTP routes of the server: streamable MCP on /mcp and
// a health probe on /mcp/health. Requests whose Host or Origin is neither
// loopback nor in allowedHosts are rejected to block DNS rebinding.
func (s *Server) Handler(allowedHosts []string) http.Handler {
	allowed := parseAllowedHosts(allowedHosts)
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", hostGuard(allowed, streamable))
	mux.HandleFunc("/mcp/health", handleHealth)
	return mux
}

// ListenAndServe serves Handler on cfg.HTTPAddr until ctx ends, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = defaultHTTPAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serveListener(ctx, listener, cfg.AllowedHosts)
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener, allowedHosts []string) error {
	httpServer := &http.Server{
		Handler:           s.Handler(allowedHosts),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	log.Printf("mcp http listening on %s", listener.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP over HTTP: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown MCP HTTP server: %w", err)
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func hostGuard(allowed map[string]struct{}, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hostAllowed(r.Host, allowed) {
			http.Error(w, "Forbidden host", http.StatusForbidden)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			parsed, err := url.Parse(origin)
			if err != nil || !hostAllowed(parsed.Host, allowed) {
				http.Error(w, "Forbidden origin", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func hostAllowed(raw string, allowed map[string]struct{}) bool {
	host, ok := normalizeHost(raw)
	if !ok {
		return false
	}
	if isLoopbackHost(host) {
		return true
	}
	_, ok = allowed[strings.ToLower(host)]
	return ok
}

// isLoopbackHost reports whether host is a loopback hostname or address.
func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

// parseAllowedHosts lowercases and dedupes configured hosts.
func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		result[strings.ToLower(trimmed)] = struct{}{}
	}
	return result
}

// normalizeHost extracts the hostname portion of a Host or Origin value.
func normalizeHost(host string) (string, bool) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}
	if strings.HasPrefix(host, "[") {
		if splitHost, _, err := net.SplitHostPort(host); err == nil {
			return splitHost, true
		}
		if strings.HasSuffix(host, "]") {
			return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), true
		}
		return "", false
	}
	if strings.Count(host, ":") > 1 {
		return host, true
	}
	if strings.Contains(host, ":") {
		splitHost, _, err := net.SplitHostPort(host)
		if err != nil {
			return "", false
		}
		return splitHost, true
	}
	return host, true
}

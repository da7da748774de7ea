package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/battlegrid/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Run serves session over the configured transport and blocks until the
// context ends or the client disconnects.
func Run(ctx context.Context, session *domain.Session, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := New(session)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportHTTP {
		return server.ListenAndServe(ctx, cfg)
	}
	return server.Serve(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs the server on transport. Context cancellation is a
// clean stop.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

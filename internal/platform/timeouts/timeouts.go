// Package timeouts defines shared timeout constants. Keeping them in one place
// stops the MCP transports and commands from drifting apart.
package timeouts

import "time"

// ToolCall caps a single MCP tool call or resource read, store access
// included.
const ToolCall = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// Package service wires MCP transports to the encounter domain handlers.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates every
// tool and resource to package domain.
package service

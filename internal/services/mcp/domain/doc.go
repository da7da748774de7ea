// Package domain translates MCP tool calls into commands on one encounter.
//
// Every handler runs under the session lock:
// - decode the typed tool input,
// - call the engine, resolver, tracker or library,
// - return a structured result with narrated text in the session locale.
//
// Reads go through resources so clients can subscribe to state changes.
package domain

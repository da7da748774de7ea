// Package branding holds the product name shown to MCP clients and in CLI
// usage text.
package branding

// AppName is the product name.
const AppName = "Battlegrid"

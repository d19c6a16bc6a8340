// Package mcp implements the Model Context Protocol server for firms.
//
// The mcp package provides:
// - An MCP stdio server exposing the fetch and aggregate pipeline as tools
// - Country catalog, data availability and MAP_KEY status tools
// - JSON results that mirror the CLI's --json summary
package mcp

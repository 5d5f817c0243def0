// Package mcp provides an MCP (Model Context Protocol) server adapter for shopdesk.
// It exposes the knowledge-base lookup tools to voice and chat agents.
package mcp

import "errors"

// ErrMissingToolRegistry is returned when the tool registry is not provided.
var ErrMissingToolRegistry = errors.New("mcp: tool registry is required")

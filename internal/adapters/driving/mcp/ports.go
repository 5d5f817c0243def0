package mcp

import (
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Tools dispatches the lookup tools.
	Tools driving.ToolRegistry

	// Retrieval backs the raw search tool and the index resource.
	// Optional; both are omitted when nil.
	Retrieval driving.RetrievalService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolRegistry
	}
	return nil
}

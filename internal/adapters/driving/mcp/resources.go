package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for shopdesk resources.
	uriScheme = "shopdesk://"

	indexResourceURI = uriScheme + "index"
)

// indexInfo is the JSON body of the index resource.
type indexInfo struct {
	State          string     `json:"state"`
	Error          string     `json:"error,omitempty"`
	SourcePath     string     `json:"source_path,omitempty"`
	EmbeddingModel string     `json:"embedding_model,omitempty"`
	Dimensions     int        `json:"dimensions,omitempty"`
	ChunkCount     int        `json:"chunk_count"`
	ChunkSize      int        `json:"chunk_size,omitempty"`
	ChunkOverlap   int        `json:"chunk_overlap,omitempty"`
	BuiltAt        *time.Time `json:"built_at,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Retrieval == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         indexResourceURI,
		Name:        "index",
		Description: "State and manifest of the loaded knowledge index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleIndexResource reports the retrieval service state and, when an
// index is loaded, its manifest.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := indexInfo{State: s.ports.Retrieval.State().String()}
	if err := s.ports.Retrieval.LoadError(); err != nil {
		info.Error = err.Error()
	}
	if m := s.ports.Retrieval.Manifest(); m != nil {
		info.SourcePath = m.SourcePath
		info.EmbeddingModel = m.EmbeddingModel
		info.Dimensions = m.Dimensions
		info.ChunkCount = m.ChunkCount
		info.ChunkSize = m.ChunkSize
		info.ChunkOverlap = m.ChunkOverlap
		if !m.BuiltAt.IsZero() {
			built := m.BuiltAt
			info.BuiltAt = &built
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

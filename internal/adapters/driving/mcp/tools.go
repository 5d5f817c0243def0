package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/services"
)

// searchToolName is the raw retrieval tool, registered when a retrieval
// service is available.
const searchToolName = "search_knowledge_base"

// OrderStatusInput is the input schema for get_order_status.
type OrderStatusInput struct {
	OrderID string `json:"order_id" jsonschema:"the order identifier, for example ORD123"`
}

// PolicyInfoInput is the input schema for get_policy_info.
type PolicyInfoInput struct {
	Topic string `json:"topic" jsonschema:"the policy topic, for example returns or shipping"`
}

// ProductInfoInput is the input schema for get_product_info.
type ProductInfoInput struct {
	ProductName string `json:"product_name" jsonschema:"the product name as the customer said it"`
}

// LookupOutput is the output schema shared by the lookup tools.
type LookupOutput struct {
	Result string `json:"result"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text question to look up in the knowledge base"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Hits    []HitOutput `json:"hits"`
	Count   int         `json:"count"`
}

// HitOutput is a single retrieved passage.
type HitOutput struct {
	ChunkID   string  `json:"chunk_id"`
	Score     float64 `json:"score"`
	PageStart int     `json:"page_start"`
	PageEnd   int     `json:"page_end"`
	Content   string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	addLookup(s, domain.ToolOrderStatus, func(in OrderStatusInput) string { return in.OrderID })
	addLookup(s, domain.ToolPolicyInfo, func(in PolicyInfoInput) string { return in.Topic })
	addLookup(s, domain.ToolProductInfo, func(in ProductInfoInput) string { return in.ProductName })

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        searchToolName,
			Description: "Search the company knowledge base and return the most relevant passages with scores.",
		}, s.handleSearch)
	}
}

// addLookup exposes a registered lookup tool under its own name with a
// typed input. Tools missing from the registry are skipped.
func addLookup[In any](s *Server, name string, arg func(In) string) {
	tool, ok := s.ports.Tools.Get(name)
	if !ok {
		return
	}
	spec := tool.Spec()

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, LookupOutput, error) {
		return s.handleLookup(ctx, spec.Name, arg(in))
	})
}

// handleLookup dispatches a lookup and returns its speakable result as text.
func (s *Server) handleLookup(ctx context.Context, name, arg string) (*mcp.CallToolResult, LookupOutput, error) {
	result, err := s.ports.Tools.Dispatch(ctx, name, arg)
	if err != nil {
		return nil, LookupOutput{}, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: result}},
	}, LookupOutput{Result: result}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	outcome := s.ports.Retrieval.Query(ctx, input.Query, input.TopK)

	output := SearchOutput{
		Status:  string(outcome.Status),
		Message: services.RenderOutcome(outcome),
		Hits:    make([]HitOutput, len(outcome.Hits)),
		Count:   len(outcome.Hits),
	}
	for i, h := range outcome.Hits {
		output.Hits[i] = HitOutput{
			ChunkID:   h.Chunk.ID,
			Score:     h.Score,
			PageStart: h.Chunk.PageStart,
			PageEnd:   h.Chunk.PageEnd,
			Content:   h.Chunk.Content,
		}
	}

	return nil, output, nil
}

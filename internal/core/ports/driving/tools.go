package driving

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// Tool is a lookup the conversation layer can invoke with one string argument.
// Invoke always returns a speakable string; it never fails.
type Tool interface {
	Spec() domain.ToolSpec
	Invoke(ctx context.Context, arg string) string
}

// ToolRegistry dispatches tool calls by name.
type ToolRegistry interface {
	// Register adds a tool. Returns domain.ErrDuplicateTool if the name is taken.
	Register(tool Tool) error

	// Get returns the tool with the given name.
	Get(name string) (Tool, bool)

	// List returns the specs of all registered tools, sorted by name.
	List() []domain.ToolSpec

	// Dispatch invokes the named tool. Returns domain.ErrUnknownTool for
	// unregistered names; the tool result itself is never an error.
	Dispatch(ctx context.Context, name, arg string) (string, error)
}

package services

import (
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// Spoken fallbacks for non-success outcomes.
const (
	NoResultsMessage   = "I couldn't find any specific information regarding that in our records."
	UnavailableMessage = "I'm sorry, my knowledge base is currently offline. Please try again later."
)

// ChunkSeparator joins matched chunk texts in tool results.
const ChunkSeparator = "\n---\n"

// RenderOutcome turns a query outcome into text suitable for speech.
// Every status maps to a non-empty string.
func RenderOutcome(o domain.QueryOutcome) string {
	switch o.Status {
	case domain.OutcomeOK:
		if len(o.Hits) == 0 {
			return NoResultsMessage
		}
		parts := make([]string, len(o.Hits))
		for i, h := range o.Hits {
			parts[i] = h.Chunk.Content
		}
		return strings.Join(parts, ChunkSeparator)
	case domain.OutcomeNoResults:
		return NoResultsMessage
	default:
		return UnavailableMessage
	}
}

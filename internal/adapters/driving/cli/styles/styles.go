// Package styles provides the colour palette and lipgloss styles used by
// CLI output.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// Palette defines the colours used by CLI output.
type Palette struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
}

// DefaultPalette returns the default colours.
func DefaultPalette() *Palette {
	return &Palette{
		Accent:  lipgloss.Color("#06B6D4"), // Cyan
		Text:    lipgloss.Color("#CDD6F4"), // Light gray
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
		Border:  lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	palette *Palette

	// Heading is used for section titles.
	Heading lipgloss.Style

	// Label is used for keys in key/value listings.
	Label lipgloss.Style

	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Passage frames a retrieved chunk.
	Passage lipgloss.Style
}

// New creates styles from a palette. A nil palette uses DefaultPalette.
func New(p *Palette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}

	return &Styles{
		palette: p,

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),

		Label: lipgloss.NewStyle().
			Foreground(p.Muted).
			Width(32),

		Value: lipgloss.NewStyle().
			Foreground(p.Text),

		Muted: lipgloss.NewStyle().
			Foreground(p.Muted),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Success),

		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Warning),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Error),

		Passage: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
	}
}

// Default returns styles with the default palette.
func Default() *Styles {
	return New(DefaultPalette())
}

// Palette returns the palette used by these styles.
func (s *Styles) Palette() *Palette {
	return s.palette
}

// Status returns the style for a query outcome status.
func (s *Styles) Status(status domain.QueryStatus) lipgloss.Style {
	switch status {
	case domain.OutcomeOK:
		return s.Success
	case domain.OutcomeNoResults:
		return s.Warning
	default:
		return s.Error
	}
}

// State returns the style for a retrieval service state.
func (s *Styles) State(state domain.ServiceState) lipgloss.Style {
	switch state {
	case domain.StateReady:
		return s.Success
	case domain.StateDegraded:
		return s.Error
	default:
		return s.Warning
	}
}

// KeyValue renders one aligned "label value" line.
func (s *Styles) KeyValue(label string, value any) string {
	return s.Label.Render(label) + s.Value.Render(fmt.Sprint(value))
}

package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

func raw(uri, content string) *domain.RawDocument {
	return &domain.RawDocument{URI: uri, Extension: ".md", Content: []byte(content)}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".md", ".markdown"}, New().SupportedExtensions())
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	doc, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_SinglePage(t *testing.T) {
	md := "# Support Handbook\r\n\r\n## Orders\r\n\r\nOrder **ORD123** is _Shipped_.\r\n\r\n## Returns\r\n\r\nReturns accepted within 45 days.\r\n"
	in := raw("/kb/handbook.md", md)
	in.Metadata = map[string]any{"sha256": "abc"}

	doc, err := New().Normalise(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "/kb/handbook.md", doc.URI)
	assert.Equal(t, "Support Handbook", doc.Title)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, "Support Handbook\n\nOrders\n\nOrder ORD123 is Shipped.\n\nReturns\n\nReturns accepted within 45 days.", doc.Pages[0].Content)
	assert.Equal(t, "markdown", doc.Metadata["format"])
	assert.Equal(t, "abc", doc.Metadata["sha256"])
	assert.NotContains(t, in.Metadata, "format", "raw metadata must not be modified")
}

func TestNormalise_FrontMatter(t *testing.T) {
	doc, err := New().Normalise(context.Background(), raw("/kb/faq.md", "---\ntitle: \"Shipping FAQ\"\nowner: support\n---\n# Ignored heading\n\nExpress takes 2 days."))
	require.NoError(t, err)

	assert.Equal(t, "Shipping FAQ", doc.Title)
	assert.NotContains(t, doc.Pages[0].Content, "owner")
	assert.Contains(t, doc.Pages[0].Content, "Express takes 2 days.")
}

func TestExtractTitle_FallsBackToFileName(t *testing.T) {
	assert.Equal(t, "return policy v2", extractTitle("", "No heading here.", "/kb/return_policy-v2.md"))
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "### Lamp specs", "Lamp specs"},
		{"link keeps text", "See [the returns page](https://shop.example/returns).", "See the returns page."},
		{"image keeps alt", "![Aurora Desk Lamp](lamp.png)", "Aurora Desk Lamp"},
		{"inline code keeps text", "Use SKU `LAMP-001` when ordering.", "Use SKU LAMP-001 when ordering."},
		{"fenced code keeps body", "```\nORD456 Processing\n```", "ORD456 Processing"},
		{"underscores inside identifiers", "SKU_LAMP_001 ships today", "SKU_LAMP_001 ships today"},
		{"bold and italic", "**Free** shipping on *all* orders", "Free shipping on all orders"},
		{"lists", "- standard: 5 days\n* express: 2 days\n1. order\n2) pay", "standard: 5 days\nexpress: 2 days\norder\npay"},
		{"blockquote", "> Refunds take 5 days.", "Refunds take 5 days."},
		{"horizontal rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
		{"starred rule", "above\n\n* * *\n\nbelow", "above\n\nbelow"},
		{"table", "| Order | Status |\n|---|:---:|\n| ORD123 | Shipped |", "Order | Status\n\nORD123 | Shipped"},
		{"collapses blank runs", "a\n\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

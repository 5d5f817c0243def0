package normalisers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

type stubNormaliser struct {
	exts     []string
	priority int
	title    string
}

func (s *stubNormaliser) SupportedExtensions() []string { return s.exts }
func (s *stubNormaliser) Priority() int                 { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return &domain.Document{URI: raw.URI, Title: s.title}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{exts: []string{".txt"}, priority: 5, title: "fallback"},
		&stubNormaliser{exts: []string{".txt"}, priority: 60, title: "specific"},
	)

	doc, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "a.txt", Extension: ".TXT"})
	require.NoError(t, err)
	assert.Equal(t, "specific", doc.Title)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "a.xlsx", Extension: ".xlsx"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedExtensions(t *testing.T) {
	exts := DefaultRegistry().SupportedExtensions()

	for _, ext := range []string{".pdf", ".docx", ".html", ".htm", ".md", ".markdown", ".txt"} {
		assert.Contains(t, exts, ext)
	}
	assert.IsIncreasing(t, exts)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Handbook.TXT")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	raw, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, raw.URI)
	assert.Equal(t, ".txt", raw.Extension)
	assert.Equal(t, []byte("hello"), raw.Content)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", raw.Metadata[MetaSHA256])
	assert.Equal(t, int64(5), raw.Metadata[MetaSize])
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)

	_, err = LoadFile(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestLoadFile_ThenNormalise(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.md")
	require.NoError(t, os.WriteFile(path, []byte("# Policy\n\nReturns within 45 days."), 0o600))

	raw, err := LoadFile(path)
	require.NoError(t, err)

	doc, err := DefaultRegistry().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Policy", doc.Title)
	assert.Contains(t, doc.Content(), "45 days")
	assert.Equal(t, "markdown", doc.Metadata["format"], "markdown outranks the plaintext fallback")
}

func TestDefaultRegistry_DispatchesByExtension(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		content string
		format  string
		want    string
	}{
		{"html", ".html", "<html><body><p>Express takes <b>2 days</b>.</p></body></html>", "html", "Express takes 2 days."},
		{"markdown", ".md", "Returns within **45 days**.", "markdown", "Returns within 45 days."},
		{"text", ".txt", "Order ORD123 is Shipped.", "txt", "Order ORD123 is Shipped."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DefaultRegistry().Normalise(context.Background(), &domain.RawDocument{
				URI: "kb" + tt.ext, Extension: tt.ext, Content: []byte(tt.content),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.format, doc.Metadata["format"])
			assert.Equal(t, tt.want, doc.Content())
		})
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.txt")
	require.NoError(t, os.WriteFile(path, []byte("Shipping takes 3 days."), 0o600))

	raw, err := FileLoader{}.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ".txt", raw.Extension)

	_, err = FileLoader{}.Load(context.Background(), path+".missing")
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileLoader{}.Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

package normalisers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Metadata keys set by LoadFile.
const (
	MetaSHA256 = domain.MetaSHA256
	MetaSize   = domain.MetaSize
)

// Ensure FileLoader implements the interface.
var _ driven.DocumentLoader = FileLoader{}

// FileLoader reads source documents from the local filesystem.
type FileLoader struct{}

// Load reads the file at path. See LoadFile.
func (FileLoader) Load(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the file at path into a RawDocument.
// Returns domain.ErrSourceNotFound if path does not exist or is a directory.
func LoadFile(path string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrSourceNotFound, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	sum := sha256.Sum256(content)
	return &domain.RawDocument{
		URI:       path,
		Extension: strings.ToLower(filepath.Ext(path)),
		Content:   content,
		Metadata: map[string]any{
			MetaSHA256: hex.EncodeToString(sum[:]),
			MetaSize:   info.Size(),
		},
	}, nil
}

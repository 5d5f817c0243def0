package domain

// RawDocument represents opaque bytes read from the source document path.
// It is the loader's output before normalisation.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// Extension is the lower-cased file extension including the dot (e.g. ".pdf").
	Extension string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any
}

// Metadata keys set by the source loader.
const (
	// MetaSHA256 is the hex SHA-256 digest of Content.
	MetaSHA256 = "sha256"

	// MetaSize is the file size in bytes (int64).
	MetaSize = "size"
)

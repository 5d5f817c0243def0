package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	assert.Empty(t, store.Keys())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "constructor must not create the file")
}

func TestDefaultConfigPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".shopdesk", "config.toml"), path)
}

func TestNewConfigStore_ReadsNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[embedding]
provider = "ollama"
model = "nomic-embed-text"
requests_per_second = 2.5

[retrieval]
top_k = 5
min_score = 1

[debug]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
	assert.Equal(t, 2.5, store.GetFloat("embedding.requests_per_second"))
	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 1.0, store.GetFloat("retrieval.min_score"))
	assert.True(t, store.GetBool("debug.enabled"))
	assert.Equal(t, []string{
		"debug.enabled",
		"embedding.model",
		"embedding.provider",
		"embedding.requests_per_second",
		"retrieval.min_score",
		"retrieval.top_k",
	}, store.Keys())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[embedding\nprovider = "), 0600))

	_, err := NewConfigStore(path)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("s", "hello world"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 0.35))
	require.NoError(t, store.Set("b", true))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "hello world"},
		{"string wrong type", store.GetString("i"), ""},
		{"string missing", store.GetString("nope"), ""},
		{"int", store.GetInt("i"), 42},
		{"int wrong type", store.GetInt("s"), 0},
		{"int missing", store.GetInt("nope"), 0},
		{"float", store.GetFloat("f"), 0.35},
		{"float from int", store.GetFloat("i"), 42.0},
		{"float wrong type", store.GetFloat("b"), 0.0},
		{"bool", store.GetBool("b"), true},
		{"bool wrong type", store.GetBool("s"), false},
		{"bool missing", store.GetBool("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("embedding.provider", "hashing"))
	require.NoError(t, store.Set("chunking.size", 800))
	require.NoError(t, store.Set("retrieval.min_score", 0.2))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "[embedding]")
	assert.Contains(t, text, "[chunking]")
	assert.NotContains(t, text, "'embedding.provider'")

	reopened, err := NewConfigStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "hashing", reopened.GetString("embedding.provider"))
	assert.Equal(t, 800, reopened.GetInt("chunking.size"))
	assert.Equal(t, 0.2, reopened.GetFloat("retrieval.min_score"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("paths.index", "/tmp/knowledge.db"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestConfigStore_SetConflictRollsBack(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("embedding", "flat"))

	err := store.Set("embedding.provider", "openai")
	require.Error(t, err)

	_, ok := store.Get("embedding.provider")
	assert.False(t, ok)
	assert.Equal(t, "flat", store.GetString("embedding"))
}

func TestConfigStore_LoadDiscardsUnsavedChanges(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("retrieval.top_k", 4))

	// Mutate the file behind the store's back.
	require.NoError(t, os.WriteFile(store.Path(), []byte("[retrieval]\ntop_k = 9\n"), 0600))
	require.NoError(t, store.Load())
	assert.Equal(t, 9, store.GetInt("retrieval.top_k"))
}

func TestFlattenUnflattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{
			"b": int64(1),
			"c": map[string]any{"d": "x"},
		},
		"top": true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "top": true}, flat)

	back, err := unflattenMap(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)

	_, err = unflattenMap(map[string]any{"a": 1, "a.b": 2})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "a.b"))
}

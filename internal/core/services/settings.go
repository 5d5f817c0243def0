package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDims        = "embedding.dimensions"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyEmbedTimeout     = "embedding.timeout_seconds"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyRetrievalTopK    = "retrieval.top_k"
	keyRetrievalMin     = "retrieval.min_score"
	keySourceDocument   = "paths.source_document"
	keyIndexPath        = "paths.index"
	envPrefix           = "SHOPDESK_"
	envOpenAIAPIKey     = "OPENAI_API_KEY"
	redactedPlaceholder = "********"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

// settingKey describes one configurable value.
type settingKey struct {
	kind  valueKind
	parse func(string) (any, error)
	apply func(*domain.Settings, any)
}

var settingKeys = map[string]settingKey{
	keyEmbedProvider: {kindString, parseProvider, func(s *domain.Settings, v any) {
		s.Embedding.Provider = domain.EmbeddingProvider(v.(string))
	}},
	keyEmbedModel: {kindString, parseNonEmpty, func(s *domain.Settings, v any) {
		s.Embedding.Model = v.(string)
	}},
	keyEmbedBaseURL: {kindString, parseAny, func(s *domain.Settings, v any) {
		s.Embedding.BaseURL = v.(string)
	}},
	keyEmbedAPIKey: {kindString, parseAny, func(s *domain.Settings, v any) {
		s.Embedding.APIKey = v.(string)
	}},
	keyEmbedDims: {kindInt, parseIntAtLeast(0), func(s *domain.Settings, v any) {
		s.Embedding.Dimensions = v.(int)
	}},
	keyEmbedBatchSize: {kindInt, parseIntAtLeast(1), func(s *domain.Settings, v any) {
		s.Embedding.BatchSize = v.(int)
	}},
	keyEmbedRPS: {kindFloat, parseFloatWithin(0, 1e6), func(s *domain.Settings, v any) {
		s.Embedding.RequestsPerSecond = v.(float64)
	}},
	keyEmbedTimeout: {kindInt, parseIntAtLeast(1), func(s *domain.Settings, v any) {
		s.Embedding.TimeoutSeconds = v.(int)
	}},
	keyChunkSize: {kindInt, parseIntAtLeast(1), func(s *domain.Settings, v any) {
		s.Chunking.Size = v.(int)
	}},
	keyChunkOverlap: {kindInt, parseIntAtLeast(0), func(s *domain.Settings, v any) {
		s.Chunking.Overlap = v.(int)
	}},
	keyRetrievalTopK: {kindInt, parseIntAtLeast(1), func(s *domain.Settings, v any) {
		s.Retrieval.TopK = v.(int)
	}},
	keyRetrievalMin: {kindFloat, parseFloatWithin(-1, 1), func(s *domain.Settings, v any) {
		s.Retrieval.MinScore = v.(float64)
	}},
	keySourceDocument: {kindString, parseAny, func(s *domain.Settings, v any) {
		s.Paths.SourceDocument = v.(string)
	}},
	keyIndexPath: {kindString, parseAny, func(s *domain.Settings, v any) {
		s.Paths.Index = v.(string)
	}},
}

// SettingKeys returns every configurable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvVar returns the environment variable that overrides key,
// e.g. "retrieval.top_k" -> "SHOPDESK_RETRIEVAL_TOP_K".
func EnvVar(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingsService composes settings from defaults, the config store and
// the environment, in that order of precedence.
type SettingsService struct {
	configStore      driven.ConfigStore
	lookupEnv        func(string) (string, bool)
	defaultIndexPath string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces os.LookupEnv, mainly for tests.
func WithEnv(lookup func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) { s.lookupEnv = lookup }
}

// WithDefaultIndexPath sets the index path used when none is configured.
func WithDefaultIndexPath(path string) SettingsOption {
	return func(s *SettingsService) { s.defaultIndexPath = path }
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the effective settings. Values in the config file that fail
// to parse are ignored with a warning; bad environment values are errors.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	modelSet := false

	for _, key := range SettingKeys() {
		raw, ok := s.configStore.Get(key)
		if !ok {
			continue
		}
		val, err := s.stored(key, raw)
		if err != nil {
			logger.Warn("Ignoring %s in %s: %v", key, s.configStore.Path(), err)
			continue
		}
		settingKeys[key].apply(&settings, val)
		if key == keyEmbedModel {
			modelSet = true
		}
	}

	for _, key := range SettingKeys() {
		env := EnvVar(key)
		v, ok := s.lookupEnv(env)
		if !ok || v == "" {
			continue
		}
		val, err := settingKeys[key].parse(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", env, err)
		}
		settingKeys[key].apply(&settings, val)
		if key == keyEmbedModel {
			modelSet = true
		}
	}

	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.ProviderOpenAI {
		if v, ok := s.lookupEnv(envOpenAIAPIKey); ok {
			settings.Embedding.APIKey = v
		}
	}
	if !modelSet {
		if model, ok := domain.DefaultEmbeddingModels()[settings.Embedding.Provider]; ok {
			settings.Embedding.Model = model
		}
	}
	if settings.Paths.Index == "" {
		settings.Paths.Index = s.defaultIndexPath
	}

	return &settings, nil
}

// stored converts a value read from the config store and re-checks it.
func (s *SettingsService) stored(key string, raw any) (any, error) {
	k := settingKeys[key]
	switch k.kind {
	case kindInt:
		if _, isInt := raw.(int64); !isInt {
			if _, isInt := raw.(int); !isInt {
				return nil, fmt.Errorf("%w: expected an integer, got %v", domain.ErrInvalidInput, raw)
			}
		}
		return k.parse(strconv.Itoa(s.configStore.GetInt(key)))
	case kindFloat:
		switch raw.(type) {
		case float64, int64, int:
		default:
			return nil, fmt.Errorf("%w: expected a number, got %v", domain.ErrInvalidInput, raw)
		}
		return k.parse(strconv.FormatFloat(s.configStore.GetFloat(key), 'g', -1, 64))
	default:
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected a string, got %v", domain.ErrInvalidInput, raw)
		}
		return k.parse(str)
	}
}

// Set validates value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	k, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(SettingKeys(), ", "))
	}

	val, err := k.parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if key == keyChunkSize || key == keyChunkOverlap {
		current, err := s.Get()
		if err != nil {
			return err
		}
		k.apply(current, val)
		if current.Chunking.Overlap >= current.Chunking.Size {
			return fmt.Errorf("%w: chunking.overlap (%d) must be smaller than chunking.size (%d)",
				domain.ErrInvalidInput, current.Chunking.Overlap, current.Chunking.Size)
		}
	}

	if err := s.configStore.Set(key, val); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	d := domain.DefaultSettings()
	d.Paths.Index = s.defaultIndexPath
	return d
}

// ConfigPath returns the backing config file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// SettingsMap flattens settings into key/value strings for display.
// Secrets are redacted.
func SettingsMap(st *domain.Settings) map[string]string {
	apiKey := ""
	if st.Embedding.APIKey != "" {
		apiKey = redactedPlaceholder
	}
	return map[string]string{
		keyEmbedProvider:  st.Embedding.Provider.String(),
		keyEmbedModel:     st.Embedding.Model,
		keyEmbedBaseURL:   st.Embedding.BaseURL,
		keyEmbedAPIKey:    apiKey,
		keyEmbedDims:      strconv.Itoa(st.Embedding.Dimensions),
		keyEmbedBatchSize: strconv.Itoa(st.Embedding.BatchSize),
		keyEmbedRPS:       strconv.FormatFloat(st.Embedding.RequestsPerSecond, 'g', -1, 64),
		keyEmbedTimeout:   strconv.Itoa(st.Embedding.TimeoutSeconds),
		keyChunkSize:      strconv.Itoa(st.Chunking.Size),
		keyChunkOverlap:   strconv.Itoa(st.Chunking.Overlap),
		keyRetrievalTopK:  strconv.Itoa(st.Retrieval.TopK),
		keyRetrievalMin:   strconv.FormatFloat(st.Retrieval.MinScore, 'g', -1, 64),
		keySourceDocument: st.Paths.SourceDocument,
		keyIndexPath:      st.Paths.Index,
	}
}

// Parsers for setting values.

func parseAny(v string) (any, error) {
	return v, nil
}

func parseNonEmpty(v string) (any, error) {
	if strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%w: value must not be empty", domain.ErrInvalidInput)
	}
	return v, nil
}

func parseProvider(v string) (any, error) {
	p := domain.EmbeddingProvider(strings.ToLower(strings.TrimSpace(v)))
	if !p.IsValid() {
		names := make([]string, 0, len(domain.AllEmbeddingProviders()))
		for _, known := range domain.AllEmbeddingProviders() {
			names = append(names, known.String())
		}
		return nil, fmt.Errorf("%w: unknown embedding provider %q (want one of %s)",
			domain.ErrInvalidInput, v, strings.Join(names, ", "))
	}
	return p.String(), nil
}

func parseIntAtLeast(minVal int) func(string) (any, error) {
	return func(v string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, v)
		}
		if n < minVal {
			return nil, fmt.Errorf("%w: %d is below the minimum of %d", domain.ErrInvalidInput, n, minVal)
		}
		return n, nil
	}
}

func parseFloatWithin(lo, hi float64) func(string) (any, error) {
	return func(v string) (any, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		if f < lo || f > hi {
			return nil, fmt.Errorf("%w: %g is outside [%g, %g]", domain.ErrInvalidInput, f, lo, hi)
		}
		return f, nil
	}
}

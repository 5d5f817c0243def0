package driving

import "github.com/custodia-labs/shopdesk/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then environment variables.
	Get() (*domain.Settings, error)

	// Set validates and persists a single dot-notation key.
	Set(key, value string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ConfigPath returns the path of the backing config file.
	ConfigPath() string
}

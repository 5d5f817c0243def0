package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateStore = (*TemplateStore)(nil)

// TemplateStore loads tool query templates from user-editable files.
// Each template lives in <dir>/<tool>.txt. Missing or invalid files fall
// back to domain.DefaultQueryTemplates.
//
// The constructor does no I/O. The directory and default files are
// created on the first Load.
type TemplateStore struct {
	mu       sync.RWMutex
	dir      string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

// NewTemplateStore creates a template store rooted at dir.
// If dir is empty, defaults to ~/.shopdesk/templates/.
func NewTemplateStore(dir string) (*TemplateStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".shopdesk", "templates")
	}

	return &TemplateStore{
		dir:   dir,
		cache: make(map[string]string),
	}, nil
}

// Load returns the query template for the named tool.
func (s *TemplateStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	def, hasDefault := domain.DefaultQueryTemplates[name]
	if s.initErr != nil {
		if hasDefault {
			return def, nil
		}
		return "", fmt.Errorf("template store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if tmpl, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return tmpl, nil
	}
	s.mu.RUnlock()

	tmpl, err := s.loadFromFile(name)
	if err == nil {
		err = domain.ValidateQueryTemplate(tmpl)
	}
	if err != nil {
		if !hasDefault {
			return "", fmt.Errorf("load template %q: %w", name, err)
		}
		if !os.IsNotExist(err) {
			logger.Warn("Ignoring template %s: %v", s.path(name), err)
		}
		tmpl = def
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		tmpl = cached
	} else {
		s.cache[name] = tmpl
	}
	s.mu.Unlock()

	return tmpl, nil
}

// Dir returns the template directory.
func (s *TemplateStore) Dir() string {
	return s.dir
}

func (s *TemplateStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// initialise creates the directory and writes any missing default files.
func (s *TemplateStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create template directory: %w", err)
		return
	}

	for name, content := range domain.DefaultQueryTemplates {
		path := s.path(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
				s.initErr = fmt.Errorf("create default template %q: %w", name, err)
				return
			}
		}
	}
}

func (s *TemplateStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

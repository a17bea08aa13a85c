// Package cms manages the site content documents (page config, FAQ, how-to,
// theme) as JSON files edited through the admin API.
package cms

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/fetch"
)

// Document names the API accepts.
const (
	DocConfig = "config"
	DocFAQ    = "faq"
	DocHowto  = "howto"
	DocTheme  = "theme"
)

var allowedDocs = map[string]struct{}{
	DocConfig: {},
	DocFAQ:    {},
	DocHowto:  {},
	DocTheme:  {},
}

// themeKey is where theme colors live inside the config document. Theme
// updates are not a document of their own: they merge into config so a config
// read always reflects the latest colors.
const themeKey = "theme_colors"

// requiredKeys lists the top-level key a patch must carry for documents with
// a fixed shape. The theme document additionally accepts nothing else.
var requiredKeys = map[string]string{
	DocFAQ:   "faq_items",
	DocHowto: "tutorial_steps",
	DocTheme: themeKey,
}

// Store reads and updates content documents on disk. Updates merge by
// top-level key so concurrent editors touching different sections do not
// clobber each other's work.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// New creates a Store rooted at dir, creating the directory when missing.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("content directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create content directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Get returns a document's current contents. An unknown document name returns
// ErrNotFound; a known document with no file yet returns an empty object.
// The theme document is a view over the config document's theme_colors key.
func (s *Store) Get(name string) (map[string]json.RawMessage, error) {
	if _, ok := allowedDocs[name]; !ok {
		return nil, fetch.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == DocTheme {
		cfg, err := s.read(DocConfig)
		if err != nil {
			return nil, err
		}
		theme := map[string]json.RawMessage{}
		if colors, ok := cfg[themeKey]; ok {
			theme[themeKey] = colors
		}
		return theme, nil
	}
	return s.read(name)
}

// Merge applies the patch's top-level keys over the stored document and
// persists the result atomically. It returns the merged document.
func (s *Store) Merge(name string, patch map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	if _, ok := allowedDocs[name]; !ok {
		return nil, fetch.ErrNotFound
	}
	if len(patch) == 0 {
		return nil, fetch.NewValidationError("document patch must not be empty")
	}
	if key, ok := requiredKeys[name]; ok {
		if _, present := patch[key]; !present {
			return nil, fetch.NewValidationError("document %s requires key %q", name, key)
		}
	}
	if name == DocTheme {
		for key := range patch {
			if key != requiredKeys[DocTheme] {
				return nil, fetch.NewValidationError("theme updates accept only %q", requiredKeys[DocTheme])
			}
		}
	}

	// Theme patches land in the config document under themeKey.
	target := name
	if name == DocTheme {
		target = DocConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(target)
	if err != nil {
		return nil, err
	}
	for key, value := range patch {
		doc[key] = value
	}
	if err := s.write(target, doc); err != nil {
		return nil, err
	}
	s.logger.Info("content document updated",
		zap.String("document", name),
		zap.Int("keys", len(patch)))
	if name == DocTheme {
		return map[string]json.RawMessage{themeKey: doc[themeKey]}, nil
	}
	return doc, nil
}

func (s *Store) read(name string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read document %s: %w", name, err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", name, err)
	}
	return doc, nil
}

func (s *Store) write(name string, doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("replace document %s: %w", name, err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

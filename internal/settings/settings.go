// Package settings keeps the persisted preferences document of a serving node
package settings

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Settings - UI preferences saved between sessions
type Settings struct {
	IsDarkMode      bool     `json:"isDarkMode"`
	Language        string   `json:"language" validate:"required,bcp47_language_tag"`
	TrimLine        bool     `json:"trimLine"`
	TrimParts       bool     `json:"trimParts"`
	FontSize        string   `json:"fontSize" validate:"required"`
	ShowLineNumbers bool     `json:"showLineNumbers"`
	ShowEmptyLines  bool     `json:"showEmptyLines"`
	SavedPatterns   []string `json:"savedPatterns" validate:"dive,required"`
	WindowPosition  [2]int   `json:"windowPosition"`
	WindowSize      [2]int   `json:"windowSize" validate:"dive,gt=0"`
}

func Default() Settings {
	return Settings{
		IsDarkMode:     true,
		Language:       "en",
		FontSize:       "text-sm",
		SavedPatterns:  []string{},
		WindowPosition: [2]int{100, 100},
		WindowSize:     [2]int{1200, 800},
	}
}

func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return apperr.InvalidValue("settings", err)
	}
	return nil
}

func (s Settings) clone() Settings {
	s.SavedPatterns = slices.Clone(s.SavedPatterns)
	if s.SavedPatterns == nil {
		s.SavedPatterns = []string{}
	}
	return s
}

// Load never leaves the caller without settings: a missing file gives defaults silently,
// an unreadable or corrupt one gives defaults together with the error. Fields absent from
// the document keep their default values.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), apperr.IO(err, "read settings %s", path)
	}

	loaded := Default()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return Default(), apperr.IO(err, "parse settings %s", path)
	}
	return loaded.clone(), nil
}

// Save writes the document as indented JSON, creating missing directories
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s.clone(), "", "  ")
	if err != nil {
		return apperr.IO(err, "encode settings")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.IO(err, "create settings directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.IO(err, "write settings %s", path)
	}
	return nil
}

// Store owns the settings of one running node. It is loaded once and saved explicitly.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Settings
}

func Open(path string, log *zap.Logger) *Store {
	cur, err := Load(path)
	if err != nil {
		log.Warn("settings fell back to defaults", zap.String("path", path), zap.Error(err))
	}
	return &Store{path: path, cur: cur}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.clone()
}

// Set replaces the whole document; an invalid one leaves the current settings untouched
func (s *Store) Set(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = next.clone()
	return nil
}

func (s *Store) Save() error {
	return Save(s.path, s.Get())
}

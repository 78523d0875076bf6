// Package locale loads the embedded translation files. Each file maps stat
// field names and message codes to display text for one language, plus the
// tesseract model to OCR screenshots taken in that language.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

const DefaultLanguage = "en"

// Bundle is the translation table for one language.
type Bundle struct {
	code    string
	entries map[string]string
}

// Code returns the language code, e.g. "en".
func (b *Bundle) Code() string { return b.code }

// Get returns the localized text for a key, falling back to the key itself
// so unknown fields still display.
func (b *Bundle) Get(key string) string {
	if v, ok := b.entries[key]; ok {
		return v
	}
	return key
}

// TesseractModel is the OCR language model for this bundle.
func (b *Bundle) TesseractModel() string {
	if v, ok := b.entries["tesseractmodel"]; ok {
		return v
	}
	return "eng"
}

// Store holds every loaded language bundle.
type Store struct {
	bundles map[string]*Bundle
}

// NewStore parses all embedded locale files.
func NewStore() (*Store, error) {
	s := &Store{bundles: make(map[string]*Bundle)}

	err := fs.WalkDir(localeFS, "locales", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		data, err := localeFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read locale %s: %w", path, err)
		}
		entries := make(map[string]string)
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse locale %s: %w", path, err)
		}
		name := d.Name()
		code := strings.TrimSuffix(name, ".json")
		s.bundles[code] = &Bundle{code: code, entries: entries}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, ok := s.bundles[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q missing", DefaultLanguage)
	}
	return s, nil
}

// Bundle returns the bundle for a language code, falling back to English.
func (s *Store) Bundle(code string) *Bundle {
	if b, ok := s.bundles[code]; ok {
		return b
	}
	return s.bundles[DefaultLanguage]
}

// Languages lists the loaded language codes.
func (s *Store) Languages() []string {
	codes := make([]string, 0, len(s.bundles))
	for code := range s.bundles {
		codes = append(codes, code)
	}
	return codes
}

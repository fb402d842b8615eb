package correction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dictionary maps known misspellings to their corrections. Lookups are exact
// and untrimmed. It is read-only after construction.
type Dictionary struct {
	entries map[string]string
}

var defaultFallback = map[string]string{
	"வநக்கம்":     "வணக்கம்",
	"போறேன்":      "போகிறேன்",
	"செல்றேன்":    "செல்கிறேன்",
	"வர்றேன்":     "வருகிறேன்",
	"படிக்க்றேன்": "படிக்கிறேன்",
	"எழுத்றேன்":   "எழுதுகிறேன்",
	"கேட்ட்றேன்":  "கேட்டேன்",
	"சொன்ன்றேன்":  "சொன்னேன்",
	"வந்த்றேன்":   "வந்தேன்",
	"போன்றேன்":    "போனேன்",
}

// DefaultDictionary returns the built-in common-misspelling table.
func DefaultDictionary() *Dictionary {
	return NewDictionary(defaultFallback)
}

// NewDictionary copies entries into a new Dictionary.
func NewDictionary(entries map[string]string) *Dictionary {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &Dictionary{entries: m}
}

type dictionaryFile struct {
	Entries map[string]string `yaml:"entries"`
}

// LoadDictionary returns the built-in table extended by the YAML file at path.
// File entries win over built-in ones.
func LoadDictionary(path string) (*Dictionary, error) {
	d := DefaultDictionary()
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback file %s: %w", path, err)
	}
	var f dictionaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fallback file %s: %w", path, err)
	}
	for wrong, right := range f.Entries {
		if wrong == "" || right == "" {
			return nil, fmt.Errorf("fallback file %s: empty entry", path)
		}
		d.entries[wrong] = right
	}
	return d, nil
}

// Lookup returns the correction for text when text is exactly a known key.
func (d *Dictionary) Lookup(text string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.entries[text]
	return v, ok
}

// Len reports the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

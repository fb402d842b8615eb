package correction

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operation names a correction mode.
type Operation string

const (
	OpLiveGrammar     Operation = "live_grammar"
	OpSpellCheck      Operation = "spell_check"
	OpLiveSpelling    Operation = "live_spelling"
	OpFormalityShift  Operation = "formality_shift"
	OpTanglishConvert Operation = "tanglish_convert"
)

// Template is the instruction prefix for one operation and the label used for
// error records it produces.
type Template struct {
	Prompt    string `yaml:"prompt" json:"-"`
	ErrorType string `yaml:"error_type" json:"error_type"`
}

// Registry maps operations to templates. It is never modified after
// construction and is safe for concurrent reads.
type Registry struct {
	templates map[Operation]Template
}

var defaultTemplates = map[Operation]Template{
	OpLiveGrammar: {
		ErrorType: "grammar",
		Prompt: `You are a Tamil language expert. Check this Tamil text for grammar errors.

Rules:
1. Only correct actual errors, don't change correct Tamil
2. Maintain the original meaning and tone
3. Use proper Tamil script (தமிழ் எழுத்து)
4. Return ONLY the corrected text, no explanations
5. If no errors, return the original text unchanged

Text to check:`,
	},
	OpSpellCheck: {
		ErrorType: "grammar",
		Prompt: `You are a Tamil language expert. Check this Tamil word for spelling errors.

Rules:
1. Only correct spelling errors, don't change correct Tamil words
2. Return ONLY the correctly spelled word, no explanations
3. Use proper Tamil script (தமிழ் எழுத்து)
4. If the word is already correct, return the original word unchanged
5. Focus on common spelling mistakes in Tamil

Word to check:`,
	},
	OpLiveSpelling: {
		ErrorType: "spelling_grammar",
		Prompt: `You are a Tamil language expert. Check this Tamil text for spelling and grammar errors.

Rules:
1. Correct misspelled words and grammatical mistakes
2. Keep the sentence structure, meaning and tone
3. Use proper Tamil script (தமிழ் எழுத்து)
4. Return ONLY the corrected text, no explanations
5. If there are no errors, return the original text unchanged

Text to check:`,
	},
	OpFormalityShift: {
		ErrorType: "formality",
		Prompt: `You are a Tamil language expert. Rewrite this Tamil text in formal written Tamil (செந்தமிழ்).

Rules:
1. Replace colloquial spoken forms with their formal written equivalents
2. Keep the original meaning
3. Use proper Tamil script (தமிழ் எழுத்து)
4. Return ONLY the rewritten text, no explanations
5. If the text is already formal, return it unchanged

Text to rewrite:`,
	},
	OpTanglishConvert: {
		ErrorType: "transliteration",
		Prompt: `You are a Tamil language expert. Convert this Tanglish text (Tamil written in Latin letters) into Tamil script.

Rules:
1. Transliterate every Tamil word into Tamil script (தமிழ் எழுத்து)
2. Keep English words that have no common Tamil equivalent as they are
3. Correct obvious spelling mistakes while converting
4. Return ONLY the converted text, no explanations

Text to convert:`,
	},
}

// DefaultRegistry returns the built-in operation templates.
func DefaultRegistry() *Registry {
	m := make(map[Operation]Template, len(defaultTemplates))
	for op, t := range defaultTemplates {
		m[op] = t
	}
	return &Registry{templates: m}
}

type registryFile struct {
	Operations map[string]Template `yaml:"operations"`
}

// LoadRegistry returns the built-in templates overlaid with the YAML file at
// path. An empty path yields the defaults. A file entry replaces the prompt
// and/or error type of a built-in operation or adds a new operation.
func LoadRegistry(path string) (*Registry, error) {
	r := DefaultRegistry()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	for name, override := range f.Operations {
		op := Operation(strings.TrimSpace(name))
		if op == "" {
			return nil, fmt.Errorf("prompts file %s: empty operation name", path)
		}
		t, exists := r.templates[op]
		if p := strings.TrimSpace(override.Prompt); p != "" {
			t.Prompt = p
		}
		if et := strings.TrimSpace(override.ErrorType); et != "" {
			t.ErrorType = et
		}
		if !exists {
			if t.Prompt == "" {
				return nil, fmt.Errorf("prompts file %s: operation %q has no prompt", path, op)
			}
			if t.ErrorType == "" {
				t.ErrorType = "grammar"
			}
		}
		r.templates[op] = t
	}
	return r, nil
}

// Lookup returns the template registered for op.
func (r *Registry) Lookup(op Operation) (Template, bool) {
	t, ok := r.templates[op]
	return t, ok
}

// Operations returns the registered operations in name order.
func (r *Registry) Operations() []Operation {
	ops := make([]Operation, 0, len(r.templates))
	for op := range r.templates {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// BuildPrompt joins the template and the user text. The text is embedded as is.
func BuildPrompt(t Template, text string) string {
	return t.Prompt + "\n\n" + text
}

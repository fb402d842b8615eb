package correction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	want := map[Operation]string{
		OpLiveGrammar:     "grammar",
		OpSpellCheck:      "grammar",
		OpLiveSpelling:    "spelling_grammar",
		OpFormalityShift:  "formality",
		OpTanglishConvert: "transliteration",
	}
	for op, errType := range want {
		tmpl, ok := r.Lookup(op)
		if !ok {
			t.Fatalf("missing operation %s", op)
		}
		if tmpl.ErrorType != errType {
			t.Errorf("%s: error type = %q, want %q", op, tmpl.ErrorType, errType)
		}
		if strings.TrimSpace(tmpl.Prompt) == "" {
			t.Errorf("%s: empty prompt", op)
		}
	}
	if got := r.Operations(); len(got) != len(want) {
		t.Fatalf("operations = %v", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	tmpl := Template{Prompt: "Fix:"}
	if got := BuildPrompt(tmpl, "  {text} \n"); got != "Fix:\n\n  {text} \n" {
		t.Fatalf("prompt = %q", got)
	}
}

func TestLoadRegistry(t *testing.T) {
	t.Run("EmptyPath", func(t *testing.T) {
		r, err := LoadRegistry("")
		if err != nil || len(r.Operations()) != 5 {
			t.Fatalf("r=%v err=%v", r, err)
		}
	})

	t.Run("OverrideAndAdd", func(t *testing.T) {
		path := writeFile(t, "prompts.yaml", `
operations:
  spell_check:
    prompt: "Only fix spelling."
  summarize_tamil:
    prompt: "Summarise this Tamil text."
    error_type: summary
  punctuation:
    prompt: "Fix Tamil punctuation."
`)
		r, err := LoadRegistry(path)
		if err != nil {
			t.Fatalf("LoadRegistry: %v", err)
		}

		sc, _ := r.Lookup(OpSpellCheck)
		if sc.Prompt != "Only fix spelling." || sc.ErrorType != "grammar" {
			t.Fatalf("spell_check = %+v", sc)
		}
		sum, ok := r.Lookup("summarize_tamil")
		if !ok || sum.ErrorType != "summary" {
			t.Fatalf("summarize_tamil = %+v ok=%v", sum, ok)
		}
		p, _ := r.Lookup("punctuation")
		if p.ErrorType != "grammar" {
			t.Fatalf("new operation should default to grammar, got %q", p.ErrorType)
		}
		if DefaultRegistry().Operations()[0] != OpFormalityShift {
			t.Fatalf("defaults must not be mutated by a loaded file")
		}
	})

	t.Run("NewOperationWithoutPrompt", func(t *testing.T) {
		path := writeFile(t, "prompts.yaml", "operations:\n  bogus:\n    error_type: x\n")
		if _, err := LoadRegistry(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadRegistry(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("BadYAML", func(t *testing.T) {
		path := writeFile(t, "prompts.yaml", "operations: [unclosed")
		if _, err := LoadRegistry(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDictionary(t *testing.T) {
	d := DefaultDictionary()
	if d.Len() != 10 {
		t.Fatalf("default entries = %d", d.Len())
	}
	if v, ok := d.Lookup("போறேன்"); !ok || v != "போகிறேன்" {
		t.Fatalf("lookup = %q, %v", v, ok)
	}
	if _, ok := d.Lookup("போறேன் "); ok {
		t.Fatalf("lookup must be exact")
	}

	var nilDict *Dictionary
	if _, ok := nilDict.Lookup("x"); ok || nilDict.Len() != 0 {
		t.Fatalf("nil dictionary must be empty")
	}
}

func TestLoadDictionary(t *testing.T) {
	t.Run("Extend", func(t *testing.T) {
		path := writeFile(t, "fallback.yaml", `
entries:
  "பன்னுறேன்": "பண்ணுகிறேன்"
  "போறேன்": "செல்கிறேன்"
`)
		d, err := LoadDictionary(path)
		if err != nil {
			t.Fatalf("LoadDictionary: %v", err)
		}
		if d.Len() != 11 {
			t.Fatalf("entries = %d", d.Len())
		}
		if v, _ := d.Lookup("போறேன்"); v != "செல்கிறேன்" {
			t.Fatalf("file entries should win, got %q", v)
		}
		if v, _ := DefaultDictionary().Lookup("போறேன்"); v != "போகிறேன்" {
			t.Fatalf("defaults must not be mutated, got %q", v)
		}
	})

	t.Run("EmptyValue", func(t *testing.T) {
		path := writeFile(t, "fallback.yaml", "entries:\n  \"x\": \"\"\n")
		if _, err := LoadDictionary(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDiff(t *testing.T) {
	if s := Suggestions(" a ", "a"); len(s) != 0 || s == nil {
		t.Fatalf("suggestions = %#v", s)
	}
	if e := Errors("a", "a\n", "grammar"); len(e) != 0 || e == nil {
		t.Fatalf("errors = %#v", e)
	}
	s := Suggestions("a", " b ")
	if len(s) != 1 || s[0] != "Suggested:  b " {
		t.Fatalf("suggestion must carry corrected text verbatim: %#v", s)
	}
	e := Errors("a", "b", "formality")
	if len(e) != 1 || e[0] != (ErrorRecord{Original: "a", Corrected: "b", Type: "formality"}) {
		t.Fatalf("errors = %#v", e)
	}
}

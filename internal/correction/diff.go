package correction

import "strings"

// Changed reports whether corrected differs from original once surrounding
// whitespace is ignored.
func Changed(original, corrected string) bool {
	return strings.TrimSpace(original) != strings.TrimSpace(corrected)
}

// Suggestions returns a single whole-string suggestion, or an empty slice when
// nothing changed.
func Suggestions(original, corrected string) []string {
	if !Changed(original, corrected) {
		return []string{}
	}
	return []string{"Suggested: " + corrected}
}

// Errors returns a single record covering the whole input, or an empty slice
// when nothing changed.
func Errors(original, corrected, errType string) []ErrorRecord {
	if !Changed(original, corrected) {
		return []ErrorRecord{}
	}
	return []ErrorRecord{{Original: original, Corrected: corrected, Type: errType}}
}

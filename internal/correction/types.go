package correction

import "github.com/oukeidos/tamilfix/internal/apperrors"

// Request is one correction request.
type Request struct {
	Text      string    `json:"text"`
	Operation Operation `json:"operation"`
}

// Source records where the corrected text came from.
type Source string

const (
	SourceModel      Source = "model"
	SourceDictionary Source = "fallback_dictionary"
	SourceOriginal   Source = "original"
)

// ErrorRecord describes one whole-string correction.
type ErrorRecord struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Type      string `json:"type"`
}

// Response is the result of Process. Suggestions and Errors are never nil.
type Response struct {
	OriginalText  string        `json:"original_text"`
	CorrectedText string        `json:"corrected_text"`
	Suggestions   []string      `json:"suggestions"`
	Errors        []ErrorRecord `json:"errors"`
	Confidence    float64       `json:"confidence"`
	Degraded      bool          `json:"degraded"`
	Source        Source        `json:"source"`
}

var (
	ErrEmptyText        = apperrors.InvalidInput("Text cannot be empty")
	ErrInvalidOperation = apperrors.InvalidInput("Invalid operation")
)

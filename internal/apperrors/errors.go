package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindConfig        Kind = "config"
	KindTimeout       Kind = "timeout"
	KindRateLimit     Kind = "rate_limit"
	KindTransport     Kind = "transport"
	KindAuth          Kind = "auth"
	KindMalformed     Kind = "malformed"
	KindEmptyResponse Kind = "empty_response"
)

type Error struct {
	Kind Kind
	// SafeMessage is returned to API callers and written to logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindInvalidInput:
		return "Invalid request."
	case KindConfig:
		return "Service is not configured."
	case KindTimeout:
		return "API request timed out. Please try again."
	case KindRateLimit:
		return "Rate limit exceeded. Please wait a moment and try again."
	case KindTransport:
		return "API request failed."
	case KindAuth:
		return "API request failed: authentication rejected."
	case KindMalformed:
		return "Unexpected API response format."
	case KindEmptyResponse:
		return "No response from Gemini API"
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func InvalidInput(msg string) error {
	return New(KindInvalidInput, msg, nil)
}

func Config(msg string) error {
	return New(KindConfig, msg, nil)
}

func Timeout(err error) error {
	return New(KindTimeout, "", err)
}

func RateLimit(err error) error {
	return New(KindRateLimit, "", err)
}

func EmptyResponse(err error) error {
	return New(KindEmptyResponse, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsUpstream reports whether err was caused by the remote model API rather than
// by the caller or by local configuration.
func IsUpstream(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindTimeout, KindRateLimit, KindTransport, KindAuth, KindMalformed, KindEmptyResponse:
		return true
	}
	return false
}

// IsRetryable reports whether a caller may reasonably repeat the request.
// Nothing inside the service retries; this is for clients such as the CLI.
func IsRetryable(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindTimeout || k == KindRateLimit || k == KindTransport
}

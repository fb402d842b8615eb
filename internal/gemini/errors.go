package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"google.golang.org/api/googleapi"
)

var errMissingKey = apperrors.Config("GEMINI_API_KEY not found in environment variables")

// classifyError maps a failed generateContent call onto the service error
// taxonomy. Rate limiting is detected from the status code only. secret is
// scrubbed from any message that may reach a caller.
func classifyError(ctx context.Context, err error, secret string) error {
	if err == nil {
		return nil
	}

	wrapped := fmt.Errorf("gemini generate content failed: %w", err)

	if isTimeout(ctx, err) {
		return apperrors.Timeout(wrapped)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return apperrors.RateLimit(wrapped)
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
			return apperrors.New(apperrors.KindAuth, "API request failed: "+describeStatus(gerr, secret), wrapped)
		default:
			return apperrors.New(apperrors.KindTransport, "API request failed: "+describeStatus(gerr, secret), wrapped)
		}
	}

	if errors.Is(err, context.Canceled) {
		return apperrors.New(apperrors.KindTransport, "API request failed: request cancelled", wrapped)
	}

	return apperrors.New(apperrors.KindTransport, "API request failed: "+scrub(err.Error(), secret), wrapped)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func describeStatus(gerr *googleapi.Error, secret string) string {
	desc := fmt.Sprintf("%d %s", gerr.Code, http.StatusText(gerr.Code))
	if msg := strings.TrimSpace(gerr.Message); msg != "" {
		desc += ": " + scrub(msg, secret)
	}
	return desc
}

func scrub(msg, secret string) string {
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, secret, "[REDACTED]")
}

func malformed(detail string) error {
	return apperrors.New(apperrors.KindMalformed, "Unexpected API response format: "+detail, nil)
}

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/httpclient"
)

const testKey = "AIzaTestKey1234567890"

const okBody = `{"candidates":[{"content":{"parts":[{"text":"வணக்கம்"}],"role":"model"}}]}`

func newTestREST(t *testing.T, srv *httptest.Server, auth AuthMode, timeout time.Duration) *RESTClient {
	t.Helper()
	c, err := NewRESTClient(Options{
		APIKey:     testKey,
		Model:      "gemini-2.0-flash",
		Endpoint:   srv.URL,
		Auth:       auth,
		Timeout:    timeout,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewRESTClient: %v", err)
	}
	return c
}

func TestRESTClient_HeaderAuth(t *testing.T) {
	var gotPath, gotHeader, gotQuery, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("X-goog-api-key")
		gotQuery = r.URL.Query().Get("key")
		var req generateRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err == nil && len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	c := newTestREST(t, srv, AuthHeader, time.Second)
	text, err := c.Generate(context.Background(), "prompt\n\nவநக்கம்")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "வணக்கம்" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotHeader != testKey || gotQuery != "" {
		t.Errorf("header auth: header=%q query=%q", gotHeader, gotQuery)
	}
	if gotPrompt != "prompt\n\nவநக்கம்" {
		t.Errorf("prompt sent verbatim, got %q", gotPrompt)
	}
}

func TestRESTClient_QueryAuth(t *testing.T) {
	var gotHeader, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-goog-api-key")
		gotQuery = r.URL.Query().Get("key")
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	c := newTestREST(t, srv, AuthQuery, time.Second)
	if _, err := c.Generate(context.Background(), "hi"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotQuery != testKey || gotHeader != "" {
		t.Errorf("query auth: header=%q query=%q", gotHeader, gotQuery)
	}
}

func TestRESTClient_StatusErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   apperrors.Kind
		msg    string
	}{
		{"rate limited", 429, `{"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`, apperrors.KindRateLimit, "Rate limit exceeded"},
		{"forbidden", 403, `{"error":{"code":403,"message":"Permission denied"}}`, apperrors.KindAuth, "403 Forbidden: Permission denied"},
		{"server error", 500, `oops`, apperrors.KindTransport, "API request failed: 500 Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestREST(t, srv, AuthHeader, time.Second).Generate(context.Background(), "x")
			assertErrorKind(t, err, tc.kind)
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("message %q does not contain %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestRESTClient_ResponseShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind apperrors.Kind
	}{
		{"no candidates field", `{"promptFeedback":{"blockReason":"SAFETY"}}`, apperrors.KindEmptyResponse},
		{"empty candidates", `{"candidates":[]}`, apperrors.KindEmptyResponse},
		{"missing content", `{"candidates":[{"finishReason":"STOP"}]}`, apperrors.KindMalformed},
		{"missing parts", `{"candidates":[{"content":{"role":"model"}}]}`, apperrors.KindMalformed},
		{"missing text", `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`, apperrors.KindMalformed},
		{"not json", `<html>`, apperrors.KindMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestREST(t, srv, AuthHeader, time.Second).Generate(context.Background(), "x")
			assertErrorKind(t, err, tc.kind)
		})
	}
}

func TestRESTClient_EmptyResponseMessage(t *testing.T) {
	_, err := extractRESTText([]byte(`{"candidates":[]}`))
	if err == nil || err.Error() != "No response from Gemini API" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRESTClient_MultiPartText(t *testing.T) {
	text, err := extractRESTText([]byte(`{"candidates":[{"content":{"parts":[{"text":"வண"},{"text":"க்கம்"}]}}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "வணக்கம்" {
		t.Fatalf("text = %q", text)
	}
}

func TestRESTClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestREST(t, srv, AuthHeader, 20*time.Millisecond).Generate(context.Background(), "x")
	assertErrorKind(t, err, apperrors.KindTimeout)
}

func TestRESTClient_TransportErrorHidesQueryKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestREST(t, srv, AuthQuery, time.Second)
	srv.Close()

	_, err := c.Generate(context.Background(), "x")
	assertErrorKind(t, err, apperrors.KindTransport)
	if !strings.HasPrefix(err.Error(), "API request failed: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if strings.Contains(err.Error(), testKey) {
		t.Fatalf("API key leaked: %q", err.Error())
	}
}

func TestRESTClient_MissingKey(t *testing.T) {
	c, err := NewRESTClient(Options{})
	if err != nil {
		t.Fatalf("NewRESTClient: %v", err)
	}
	_, err = c.Generate(context.Background(), "x")
	assertErrorKind(t, err, apperrors.KindConfig)
}

func TestNewRESTClient_RejectsUnknownAuth(t *testing.T) {
	if _, err := NewRESTClient(Options{Auth: "cookie"}); err == nil {
		t.Fatalf("expected error for unknown auth mode")
	}
}

func TestNewRESTClient_DefaultsToSharedClient(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	// The TLS test server only trusts its own client, so a request that
	// succeeds proves the shared client carried it.
	restore := httpclient.SetSharedForTesting(srv.Client())
	defer restore()

	c, err := NewRESTClient(Options{APIKey: testKey, Endpoint: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewRESTClient: %v", err)
	}
	text, err := c.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "வணக்கம்" {
		t.Fatalf("text = %q", text)
	}
}

package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestShared(t *testing.T) {
	client := Shared()
	if client == nil {
		t.Fatal("expected shared client")
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, client.Timeout)
	}
	if Shared() != client {
		t.Errorf("expected singleton client instance")
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(5 * time.Second)
	if client.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok || transport == nil {
		t.Fatalf("expected *http.Transport")
	}
	if transport.MaxIdleConnsPerHost != MaxIdleConnsPerHost {
		t.Errorf("MaxIdleConnsPerHost = %d, want %d", transport.MaxIdleConnsPerHost, MaxIdleConnsPerHost)
	}
	if transport.TLSHandshakeTimeout != TLSHandshakeTimeout {
		t.Errorf("TLSHandshakeTimeout = %v, want %v", transport.TLSHandshakeTimeout, TLSHandshakeTimeout)
	}

	if NewClient(0).Timeout != DefaultTimeout {
		t.Errorf("zero timeout should fall back to DefaultTimeout")
	}
}

func TestDoAndRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429}}`)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	body, resp, err := DoAndRead(Shared(), req)
	if err != nil {
		t.Fatalf("DoAndRead failed: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status to be passed through, got %d", resp.StatusCode)
	}
	if string(body) != `{"error":{"code":429}}` {
		t.Errorf("unexpected body %q", body)
	}
}

func TestDoAndReadTooLarge(t *testing.T) {
	oversized := make([]byte, MaxResponseBytes+1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(oversized)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(oversized)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, resp, err := DoAndRead(Shared(), req)
	if err == nil || !strings.Contains(err.Error(), "response body too large") {
		t.Fatalf("expected body too large error, got: %v", err)
	}
	if resp == nil {
		t.Fatalf("response should be returned alongside the read error")
	}
}

func TestSetSharedForTesting(t *testing.T) {
	custom := &http.Client{Timeout: 3 * time.Second}
	restore := SetSharedForTesting(custom)
	if Shared() != custom {
		t.Fatalf("expected overridden shared client")
	}
	restore()
	if Shared() == custom {
		t.Fatalf("restore should reinstate the previous client")
	}
}

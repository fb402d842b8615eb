package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds a single call to the model API.
	// Callers usually set a tighter deadline on the request context.
	DefaultTimeout = 30 * time.Second
	// MaxResponseBytes caps upstream response bodies. A correction is a few
	// kilobytes of text; anything near this size is a broken upstream.
	MaxResponseBytes = 2 * 1024 * 1024

	MaxIdleConns          = 64
	MaxIdleConnsPerHost   = 16
	IdleConnTimeout       = 90 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ExpectContinueTimeout = time.Second
)

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once
	overrideClient   *http.Client
)

// NewClient returns an http.Client with a pooled transport and the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          MaxIdleConns,
			MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
			IdleConnTimeout:       IdleConnTimeout,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ExpectContinueTimeout: ExpectContinueTimeout,
		},
	}
}

// Shared returns the process-wide client used when no client is injected.
func Shared() *http.Client {
	if overrideClient != nil {
		return overrideClient
	}
	sharedClientOnce.Do(func() {
		sharedClient = NewClient(DefaultTimeout)
	})
	return sharedClient
}

// SetSharedForTesting swaps the shared client and returns a restore function.
func SetSharedForTesting(client *http.Client) func() {
	prev := overrideClient
	overrideClient = client
	return func() {
		overrideClient = prev
	}
}

// DoAndRead performs req, reads at most MaxResponseBytes of the body and always
// closes it. The response is returned even when reading fails so callers can
// still inspect the status code.
func DoAndRead(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}
	return body, resp, nil
}

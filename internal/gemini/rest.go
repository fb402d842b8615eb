package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/httpclient"
	"google.golang.org/api/googleapi"
)

// RESTClient calls generateContent over plain HTTPS.
type RESTClient struct {
	apiKey   string
	model    string
	endpoint string
	auth     AuthMode
	timeout  time.Duration
	httpc    *http.Client
}

var _ Generator = (*RESTClient)(nil)

// NewRESTClient creates a REST client. A missing API key is not an error here;
// Generate reports it on first use.
func NewRESTClient(opts Options) (*RESTClient, error) {
	opts = opts.withDefaults()
	if opts.Auth != AuthHeader && opts.Auth != AuthQuery {
		return nil, fmt.Errorf("unknown gemini auth mode %q (want header or query)", opts.Auth)
	}
	if _, err := url.Parse(opts.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid gemini endpoint: %w", err)
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = httpclient.Shared()
	}
	return &RESTClient{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		auth:     opts.Auth,
		timeout:  opts.Timeout,
		httpc:    httpc,
	}, nil
}

func (c *RESTClient) Close() error { return nil }

// Generate sends exactly one request; it never retries.
func (c *RESTClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errMissingKey
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth == AuthHeader {
		req.Header.Set("X-goog-api-key", c.apiKey)
	}

	body, resp, err := httpclient.DoAndRead(c.httpc, req)
	if err != nil {
		return "", classifyError(ctx, c.hideURL(err), c.apiKey)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyError(ctx, statusError(resp, body), c.apiKey)
	}
	return extractRESTText(body)
}

func (c *RESTClient) baseURL() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
}

func (c *RESTClient) requestURL() string {
	if c.auth == AuthQuery {
		return c.baseURL() + "?key=" + url.QueryEscape(c.apiKey)
	}
	return c.baseURL()
}

// hideURL replaces the request URL inside transport errors so a query-string
// key cannot leak through err.Error().
func (c *RESTClient) hideURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: c.baseURL(), Err: uerr.Err}
	}
	return err
}

func statusError(resp *http.Response, body []byte) error {
	gerr := &googleapi.Error{
		Code:   resp.StatusCode,
		Body:   string(body),
		Header: resp.Header,
	}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		gerr.Message = env.Error.Message
	}
	return gerr
}

func extractRESTText(body []byte) (string, error) {
	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", apperrors.New(apperrors.KindMalformed, "Unexpected API response format: invalid JSON", err)
	}
	if len(out.Candidates) == 0 {
		return "", apperrors.EmptyResponse(nil)
	}
	first := out.Candidates[0]
	if first.Content == nil {
		return "", malformed(`missing "content"`)
	}
	if len(first.Content.Parts) == 0 {
		return "", malformed(`missing "parts"`)
	}
	var sb strings.Builder
	found := false
	for _, part := range first.Content.Parts {
		if part.Text == nil {
			continue
		}
		found = true
		sb.WriteString(*part.Text)
	}
	if !found {
		return "", malformed(`missing "text"`)
	}
	return sb.String(), nil
}

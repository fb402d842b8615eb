package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/tamilfix/internal/apperrors"
	"google.golang.org/api/option"
)

// SDKClient calls Gemini through the official generative-ai-go SDK.
// The SDK always authenticates with a header.
type SDKClient struct {
	apiKey  string
	timeout time.Duration
	client  *genai.Client
	model   *genai.GenerativeModel
}

var _ Generator = (*SDKClient)(nil)

// NewSDKClient creates an SDK-backed client. With an empty key no SDK client is
// built and Generate reports the configuration error instead.
func NewSDKClient(ctx context.Context, opts Options) (*SDKClient, error) {
	opts = opts.withDefaults()
	c := &SDKClient{apiKey: opts.APIKey, timeout: opts.Timeout}
	if opts.APIKey == "" {
		return c, nil
	}

	// option.WithHTTPClient is not used: it bypasses the SDK's API key header
	// injection. Timeouts are enforced through the context in Generate.
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != DefaultEndpoint {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client
	c.model = client.GenerativeModel(opts.Model)
	return c, nil
}

// Close closes the underlying genai client.
func (c *SDKClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *SDKClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.model == nil {
		return "", errMissingKey
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyError(ctx, err, c.apiKey)
	}
	return extractResponseText(resp)
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", malformed("nil response")
	}
	if len(resp.Candidates) == 0 {
		return "", apperrors.EmptyResponse(nil)
	}
	first := resp.Candidates[0]
	if first == nil || first.Content == nil {
		return "", malformed(`missing "content"`)
	}
	if len(first.Content.Parts) == 0 {
		return "", malformed(`missing "parts"`)
	}
	var combined string
	found := false
	for _, part := range first.Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			continue
		}
		found = true
		combined += string(text)
	}
	if !found {
		return "", malformed(`missing "text"`)
	}
	return combined, nil
}

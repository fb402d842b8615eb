package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oukeidos/tamilfix/internal/httpclient"
)

const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultTimeout  = httpclient.DefaultTimeout
)

// Backend selects the transport used to reach the model.
type Backend string

const (
	BackendREST Backend = "rest"
	BackendSDK  Backend = "sdk"
)

// AuthMode selects how the REST backend sends the API key.
type AuthMode string

const (
	AuthHeader AuthMode = "header"
	AuthQuery  AuthMode = "query"
)

// Generator sends one prompt to the model and returns the first candidate's text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Options configures a Generator.
type Options struct {
	APIKey   string
	Model    string
	Endpoint string
	Backend  Backend
	Auth     AuthMode
	Timeout  time.Duration

	// HTTPClient overrides the shared client for the REST backend.
	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Endpoint == "" {
		o.Endpoint = DefaultEndpoint
	}
	if o.Backend == "" {
		o.Backend = BackendREST
	}
	if o.Auth == "" {
		o.Auth = AuthHeader
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// New builds the Generator selected by opts.Backend.
func New(ctx context.Context, opts Options) (Generator, error) {
	opts = opts.withDefaults()
	switch opts.Backend {
	case BackendREST:
		c, err := NewRESTClient(opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendSDK:
		c, err := NewSDKClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown gemini backend %q (want rest or sdk)", opts.Backend)
	}
}

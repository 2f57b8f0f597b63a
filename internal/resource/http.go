package resource

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/provisor-io/provisor/internal/config"
)

// HTTPProvider resolves public-access descriptors by fetching their
// substituted URI over HTTP. A single GET is issued per resolution; there is
// no retry and no caching.
type HTTPProvider struct {
	registry *Registry
	client   *http.Client
	logger   *slog.Logger
}

var _ Provider = (*HTTPProvider)(nil)

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.client = client
	}
}

// WithTimeout sets the per-request timeout on the provider's HTTP client.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		p.client.Timeout = timeout
	}
}

// WithHTTPLogger sets a custom logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(p *HTTPProvider) {
		p.logger = logger
	}
}

// NewHTTPProvider creates an HTTP provider over the given registry.
// The default client timeout is config.DefaultTimeout.
func NewHTTPProvider(registry *Registry, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		registry: registry,
		client:   &http.Client{Timeout: config.DefaultTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the provider's descriptor registry.
func (p *HTTPProvider) Registry() *Registry {
	return p.registry
}

// Get resolves a public resource: descriptor lookup, parameter substitution,
// then a single blocking GET. Transport failures and non-success statuses
// both surface as a *FetchError.
func (p *HTTPProvider) Get(ctx context.Context, name string, params map[string]string) (*Content, error) {
	d, ok := p.registry.Lookup(name)
	if !ok || d.Access != AccessPublic {
		return nil, &NotFoundError{Name: name}
	}

	url, err := d.Expand(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	p.logger.Debug("fetching resource", "resource", name, "url", url)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return &Content{
		Data:     body,
		Type:     d.Type,
		MIMEType: d.Type.MIME(),
	}, nil
}

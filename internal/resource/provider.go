package resource

import (
	"context"
)

// Content is the result of resolving a resource: the raw content paired with
// the descriptor's declared content type.
type Content struct {
	// Data is the raw resolved content.
	Data []byte
	// Type is the descriptor's declared content kind.
	Type ContentType
	// MIMEType is the MIME type derived from Type.
	MIMEType string
}

// Text returns the content as a string.
func (c *Content) Text() string {
	return string(c.Data)
}

// Provider resolves named resources. Implementations hold no state beyond
// the immutable descriptor registry, so every Get call is an independent
// resolution that is safe to issue concurrently.
type Provider interface {
	// Get resolves the named resource with the supplied parameter values.
	Get(ctx context.Context, name string, params map[string]string) (*Content, error)

	// Registry returns the provider's descriptor registry.
	Registry() *Registry
}

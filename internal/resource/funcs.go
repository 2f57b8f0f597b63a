package resource

import (
	"context"
	"log/slog"
)

// Func is a server-side resource function. It receives the validated
// parameter mapping and returns the resource content.
type Func func(ctx context.Context, params map[string]string) (string, error)

// FuncMap maps function names to registered server-side functions. The host
// application supplies the full map at provider construction; there is no
// dynamic lookup or reflection.
type FuncMap map[string]Func

// FuncProvider resolves mcp_server-access descriptors by invoking a
// registered function with the validated parameter mapping.
type FuncProvider struct {
	registry *Registry
	funcs    FuncMap
	logger   *slog.Logger
}

var _ Provider = (*FuncProvider)(nil)

// FuncOption configures a FuncProvider.
type FuncOption func(*FuncProvider)

// WithFuncLogger sets a custom logger.
func WithFuncLogger(logger *slog.Logger) FuncOption {
	return func(p *FuncProvider) {
		p.logger = logger
	}
}

// NewFuncProvider creates a function provider over the given registry and
// function map. Function names are resolved per call, so a descriptor whose
// function is absent from the map fails at Get time, not construction.
func NewFuncProvider(registry *Registry, funcs FuncMap, opts ...FuncOption) *FuncProvider {
	p := &FuncProvider{
		registry: registry,
		funcs:    funcs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the provider's descriptor registry.
func (p *FuncProvider) Registry() *Registry {
	return p.registry
}

// Get resolves a server-side resource: descriptor lookup, function lookup,
// uniform parameter validation, then a synchronous invocation. A function
// failure surfaces as a *FunctionExecutionError wrapping the cause.
func (p *FuncProvider) Get(ctx context.Context, name string, params map[string]string) (*Content, error) {
	d, ok := p.registry.Lookup(name)
	if !ok || d.Access != AccessServer {
		return nil, &NotFoundError{Name: name}
	}

	fn, ok := p.funcs[d.Function]
	if !ok {
		return nil, &FunctionNotFoundError{Resource: name, Function: d.Function}
	}

	if err := d.ValidateParameters(params); err != nil {
		return nil, err
	}

	p.logger.Debug("invoking resource function", "resource", name, "function", d.Function)

	result, err := fn(ctx, params)
	if err != nil {
		return nil, &FunctionExecutionError{Function: d.Function, Err: err}
	}

	return &Content{
		Data:     []byte(result),
		Type:     d.Type,
		MIMEType: d.Type.MIME(),
	}, nil
}

package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/provisor-io/provisor/internal/config"
	"github.com/provisor-io/provisor/internal/resource"
)

// URIScheme is the scheme under which configured resources are exposed to
// MCP clients: provisor://<name>, with caller parameters as query values.
const URIScheme = "provisor"

// Providers bundles a descriptor registry with the per-access-class
// providers built from it. The bundle is immutable; reloading configuration
// builds a fresh bundle and swaps it into the server.
type Providers struct {
	Registry *resource.Registry
	Public   resource.Provider
	Server   resource.Provider
}

// NewProviders builds a provider bundle from the configuration and the
// host-registered server-side functions.
func NewProviders(cfg *config.Config, funcs resource.FuncMap, logger *slog.Logger) (*Providers, error) {
	registry, err := resource.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.HTTP.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}

	return &Providers{
		Registry: registry,
		Public: resource.NewHTTPProvider(registry,
			resource.WithTimeout(timeout),
			resource.WithHTTPLogger(logger),
		),
		Server: resource.NewFuncProvider(registry, funcs,
			resource.WithFuncLogger(logger),
		),
	}, nil
}

// Server implements the MCP server for Provisor. It exposes the configured
// resource descriptors over stdio JSON-RPC.
type Server struct {
	name      string
	version   string
	sessionID string
	logger    *slog.Logger

	mu        sync.RWMutex
	providers *Providers

	// transport is set while serving, for list_changed notifications.
	transport Transport
}

// ServerOption configures the MCP server.
type ServerOption func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithServerName sets the advertised server name.
func WithServerName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// NewServer creates a new MCP server over the given provider bundle.
func NewServer(version string, providers *Providers, opts ...ServerOption) (*Server, error) {
	if providers == nil {
		return nil, errors.New("mcp: providers must not be nil")
	}

	s := &Server{
		name:      "provisor",
		version:   version,
		sessionID: uuid.NewString(),
		logger:    slog.Default(),
		providers: providers,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("session_id", s.sessionID)

	return s, nil
}

// SessionID returns the identifier attached to this server's log records.
func (s *Server) SessionID() string {
	return s.sessionID
}

// Reload swaps in a freshly built provider bundle and notifies connected
// clients that the resource list may have changed. Each bundle itself stays
// immutable.
func (s *Server) Reload(providers *Providers) {
	s.mu.Lock()
	s.providers = providers
	transport := s.transport
	s.mu.Unlock()

	s.logger.Info("resource set reloaded", "resources", providers.Registry.Len())

	if transport != nil {
		if err := transport.WriteNotification("notifications/resources/list_changed", nil); err != nil {
			s.logger.Warn("failed to send list_changed notification", "error", err)
		}
	}
}

// current returns the active provider bundle.
func (s *Server) current() *Providers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providers
}

// ServeStdio starts the MCP server on stdio transport.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve starts the MCP server with a custom reader/writer pair.
func (s *Server) Serve(ctx context.Context, reader io.Reader, writer io.Writer) error {
	transport := NewStdioTransport(reader, writer)

	s.mu.Lock()
	s.transport = transport
	s.mu.Unlock()

	loop := NewMessageLoop(transport, s)

	s.logger.Info("MCP server started", "name", s.name, "version", s.version)
	return loop.Run(ctx)
}

// HandleRequest implements MessageHandler.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	s.logger.Debug("handling request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response needed
		return nil
	case "resources/list":
		return s.handleListResources(req)
	case "resources/templates/list":
		return s.handleListResourceTemplates(req)
	case "resources/read":
		return s.handleReadResource(ctx, req)
	case "ping":
		return NewResponse(req.ID, map[string]any{})
	default:
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
		}
	}

	s.logger.Info("client connected",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
	)

	result := InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: ServerCapabilities{
			Resources: &ResourcesCapability{Subscribe: false, ListChanged: true},
			Logging:   &LoggingCapability{},
		},
		ServerInfo: Implementation{
			Name:    s.name,
			Version: s.version,
		},
		Instructions: "Provisor serves declaratively configured resources. " +
			"Read a resource at provisor://<name>; parameterized resources " +
			"take their values as query parameters, e.g. " +
			"provisor://sampledata?client=acme.",
	}

	return NewResponse(req.ID, result)
}

func (s *Server) handleListResources(req *Request) *Response {
	descriptors := s.current().Registry.Descriptors()

	resources := make([]Resource, 0, len(descriptors))
	for _, d := range descriptors {
		resources = append(resources, Resource{
			URI:         resourceURI(d.Name),
			Name:        d.Name,
			Description: d.Description,
			MIMEType:    d.Type.MIME(),
		})
	}

	return NewResponse(req.ID, ListResourcesResult{Resources: resources})
}

func (s *Server) handleListResourceTemplates(req *Request) *Response {
	var templates []ResourceTemplate
	for _, d := range s.current().Registry.Descriptors() {
		placeholders := d.Placeholders()
		if len(placeholders) == 0 {
			continue
		}
		templates = append(templates, ResourceTemplate{
			URITemplate: resourceURI(d.Name) + "{?" + strings.Join(placeholders, ",") + "}",
			Name:        d.Name,
			Description: d.Description,
			MIMEType:    d.Type.MIME(),
		})
	}

	return NewResponse(req.ID, ListResourceTemplatesResult{ResourceTemplates: templates})
}

func (s *Server) handleReadResource(ctx context.Context, req *Request) *Response {
	var params ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	name, values, err := parseResourceURI(params.URI)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid resource URI", err.Error())
	}

	content, err := s.resolve(ctx, name, values)
	if err != nil {
		return errorResponse(req.ID, err)
	}

	return NewResponse(req.ID, &ReadResourceResult{
		Contents: []ResourceContent{resourceContent(params.URI, content)},
	})
}

// resolve dispatches a resolution to the provider matching the descriptor's
// access class.
func (s *Server) resolve(ctx context.Context, name string, params map[string]string) (*resource.Content, error) {
	p := s.current()

	d, ok := p.Registry.Lookup(name)
	if !ok {
		return nil, &resource.NotFoundError{Name: name}
	}

	switch d.Access {
	case resource.AccessPublic:
		return p.Public.Get(ctx, name, params)
	case resource.AccessServer:
		return p.Server.Get(ctx, name, params)
	default:
		return nil, fmt.Errorf("resource %q: unhandled access class %q", name, d.Access)
	}
}

// errorResponse maps resolution errors to JSON-RPC error responses.
func errorResponse(id any, err error) *Response {
	var (
		notFound   *resource.NotFoundError
		missing    *resource.MissingParameterError
		invalid    *resource.InvalidParameterValueError
		fnNotFound *resource.FunctionNotFoundError
	)

	switch {
	case errors.As(err, &notFound):
		return NewErrorResponse(id, ErrCodeMethodNotFound, "Resource not found", notFound.Name)
	case errors.As(err, &missing):
		return NewErrorResponse(id, ErrCodeInvalidParams, "Missing parameter", missing.Parameter)
	case errors.As(err, &invalid):
		return NewErrorResponse(id, ErrCodeInvalidParams, "Invalid parameter value", invalid.Error())
	case errors.As(err, &fnNotFound):
		return NewErrorResponse(id, ErrCodeInternalError, "Resource function not registered", fnNotFound.Function)
	default:
		return NewErrorResponse(id, ErrCodeInternalError, "Resource read failed", err.Error())
	}
}

// resourceContent converts resolved content to the MCP wire shape. Binary
// content kinds are base64-encoded as blobs; everything else is text.
func resourceContent(uri string, content *resource.Content) ResourceContent {
	if content.Type == resource.TypePDF {
		return NewBlobResourceContent(uri, content.MIMEType, base64.StdEncoding.EncodeToString(content.Data))
	}
	return NewTextResourceContent(uri, content.MIMEType, content.Text())
}

// resourceURI returns the canonical URI for a named resource.
func resourceURI(name string) string {
	return URIScheme + "://" + name
}

// parseResourceURI splits a provisor:// URI into the resource name and the
// caller-supplied parameter values. Repeated query keys keep the first value.
func parseResourceURI(raw string) (string, map[string]string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, err
	}

	if u.Scheme != URIScheme {
		return "", nil, fmt.Errorf("unsupported scheme %q, expected %q", u.Scheme, URIScheme)
	}

	name := u.Host
	if name == "" {
		name = strings.Trim(u.Path, "/")
	}
	if name == "" {
		return "", nil, fmt.Errorf("resource name missing in %q", raw)
	}

	query := u.Query()
	params := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return name, params, nil
}

package resource

import (
	"strings"

	"github.com/provisor-io/provisor/internal/config"
	perrors "github.com/provisor-io/provisor/internal/errors"
)

// Registry is the validated, ordered set of resource descriptors loaded from
// a configuration object. It is immutable after construction and safe for
// concurrent use.
type Registry struct {
	names  []string
	byName map[string]Descriptor
}

// NewRegistry parses and validates the resource descriptor records from the
// configuration. Construction fails with a configuration error on the first
// malformed record, so a misconfigured provider fails fast instead of at
// first use.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	const op = "resource.NewRegistry"

	if cfg == nil {
		return nil, perrors.Config(op, "configuration must not be nil")
	}

	r := &Registry{
		names:  make([]string, 0, len(cfg.Params.Resources)),
		byName: make(map[string]Descriptor, len(cfg.Params.Resources)),
	}

	for i := range cfg.Params.Resources {
		d, err := parseDescriptor(&cfg.Params.Resources[i])
		if err != nil {
			return nil, err
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, perrors.Configf(op, "resource %q: duplicate name", d.Name)
		}
		r.names = append(r.names, d.Name)
		r.byName[d.Name] = d
	}

	return r, nil
}

// parseDescriptor validates a single descriptor record.
func parseDescriptor(rc *config.ResourceConfig) (Descriptor, error) {
	const op = "resource.NewRegistry"

	if rc.Name == "" {
		return Descriptor{}, perrors.Config(op, "resource name is required")
	}

	ct := ContentType(rc.Type)
	if !ct.Valid() {
		return Descriptor{}, perrors.Configf(op, "resource %q: type %q is not one of csv, txt, json, xml, html, pdf", rc.Name, rc.Type)
	}

	access := AccessType(rc.Access)
	if !access.Valid() {
		return Descriptor{}, perrors.Configf(op, "resource %q: access %q is not one of public, mcp_server", rc.Name, rc.Access)
	}

	if rc.URI == "" {
		return Descriptor{}, perrors.Configf(op, "resource %q: uri is required", rc.Name)
	}

	switch access {
	case AccessPublic:
		if !strings.HasPrefix(rc.URI, "http://") && !strings.HasPrefix(rc.URI, "https://") {
			return Descriptor{}, perrors.Configf(op, "resource %q: public uri must use the http or https scheme", rc.Name)
		}
	case AccessServer:
		if rc.Function == "" {
			return Descriptor{}, perrors.Configf(op, "resource %q: function is required for mcp_server access", rc.Name)
		}
	}

	d := Descriptor{
		Name:        rc.Name,
		Description: rc.Description,
		Type:        ct,
		Access:      access,
		URI:         rc.URI,
		Function:    rc.Function,
	}

	declared := make(map[string]bool, len(rc.ResourceParameters))
	for _, pc := range rc.ResourceParameters {
		if pc.Name == "" {
			return Descriptor{}, perrors.Configf(op, "resource %q: parameter name is required", rc.Name)
		}
		if declared[pc.Name] {
			return Descriptor{}, perrors.Configf(op, "resource %q: duplicate parameter %q", rc.Name, pc.Name)
		}
		declared[pc.Name] = true

		allowed, err := parseAllowedValues(pc.AllowedValues)
		if err != nil {
			return Descriptor{}, perrors.Configf(op, "resource %q: parameter %q: %v", rc.Name, pc.Name, err)
		}

		d.Parameters = append(d.Parameters, Parameter{
			Name:          pc.Name,
			Description:   pc.Description,
			AllowedValues: allowed,
		})
	}

	// Every placeholder token in the uri must have a declaration. Declared
	// parameters that never appear are tolerated.
	for _, name := range d.Placeholders() {
		if !declared[name] {
			return Descriptor{}, perrors.Configf(op, "resource %q: uri placeholder {%s} has no parameter declaration", rc.Name, name)
		}
	}

	return d, nil
}

// parseAllowedValues normalizes the allowed_values wire value. Viper decodes
// YAML lists as []any; JSON-sourced configs may carry []string directly.
func parseAllowedValues(av any) (AllowedValues, error) {
	switch val := av.(type) {
	case nil:
		return AnyString(), nil
	case string:
		if val != "string" {
			return AllowedValues{}, &unknownSentinelError{sentinel: val}
		}
		return AnyString(), nil
	case []string:
		return OneOf(val...), nil
	case []any:
		values := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return AllowedValues{}, &malformedAllowedValuesError{}
			}
			values = append(values, s)
		}
		return OneOf(values...), nil
	default:
		return AllowedValues{}, &malformedAllowedValuesError{}
	}
}

type unknownSentinelError struct {
	sentinel string
}

func (e *unknownSentinelError) Error() string {
	return "allowed_values: unknown sentinel \"" + e.sentinel + "\""
}

type malformedAllowedValuesError struct{}

func (e *malformedAllowedValuesError) Error() string {
	return "allowed_values must be \"string\" or a list of strings"
}

// Lookup returns the descriptor registered under the given name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns the descriptor names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Descriptors returns all descriptors in declaration order.
func (r *Registry) Descriptors() []Descriptor {
	ds := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		ds = append(ds, r.byName[name])
	}
	return ds
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.names)
}

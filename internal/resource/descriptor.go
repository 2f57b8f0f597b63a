// Package resource implements declarative MCP resource providers.
//
// A provider is built from a validated set of resource descriptors. Each
// descriptor maps a name and optional parameters to either a publicly
// fetchable HTTP location or a server-side function registered by the host
// application. Resolution is a stateless, per-call operation: look up the
// descriptor, substitute parameters into its URI template, then fetch or
// invoke.
package resource

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"

	"github.com/provisor-io/provisor/internal/config"
)

// AccessType selects which provider logic applies to a descriptor.
type AccessType string

const (
	// AccessPublic marks a resource fetched over public HTTP.
	AccessPublic AccessType = "public"
	// AccessServer marks a resource resolved by a server-side function.
	AccessServer AccessType = "mcp_server"
)

// Valid reports whether the access type is one of the enumerated values.
func (a AccessType) Valid() bool {
	return a == AccessPublic || a == AccessServer
}

// ContentType is the declared content kind of a resource. It is advisory
// metadata: the actual fetched content is not checked against it.
type ContentType string

const (
	TypeCSV  ContentType = "csv"
	TypeTXT  ContentType = "txt"
	TypeJSON ContentType = "json"
	TypeXML  ContentType = "xml"
	TypeHTML ContentType = "html"
	TypePDF  ContentType = "pdf"
)

// contentTypes lists the enumerated content kinds.
var contentTypes = []ContentType{TypeCSV, TypeTXT, TypeJSON, TypeXML, TypeHTML, TypePDF}

// Valid reports whether the content type is one of the enumerated values.
func (t ContentType) Valid() bool {
	return slices.Contains(contentTypes, t)
}

// MIME returns the MIME type for the content kind.
// Unknown kinds fall back to text/plain.
func (t ContentType) MIME() string {
	switch t {
	case TypeCSV:
		return "text/csv"
	case TypeTXT:
		return "text/plain"
	case TypeJSON:
		return "application/json"
	case TypeXML:
		return "application/xml"
	case TypeHTML:
		return "text/html"
	case TypePDF:
		return "application/pdf"
	default:
		return "text/plain"
	}
}

// AllowedValues restricts the values a parameter accepts: either any string
// (the "string" sentinel in configuration) or an explicit set.
type AllowedValues struct {
	values []string // nil means any string
}

// AnyString returns an AllowedValues accepting any string value.
func AnyString() AllowedValues {
	return AllowedValues{}
}

// OneOf returns an AllowedValues restricted to the given set.
func OneOf(values ...string) AllowedValues {
	return AllowedValues{values: values}
}

// Any reports whether any string value is accepted.
func (a AllowedValues) Any() bool {
	return a.values == nil
}

// Values returns the explicit permitted set, or nil when any string is
// accepted.
func (a AllowedValues) Values() []string {
	return a.values
}

// Contains reports whether the given value is permitted.
func (a AllowedValues) Contains(value string) bool {
	if a.values == nil {
		return true
	}
	return slices.Contains(a.values, value)
}

// MarshalJSON writes the configuration wire shape: the "string" sentinel or
// an explicit list.
func (a AllowedValues) MarshalJSON() ([]byte, error) {
	if a.values == nil {
		return json.Marshal("string")
	}
	return json.Marshal(a.values)
}

// UnmarshalJSON reads the configuration wire shape.
func (a *AllowedValues) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "string" {
			return fmt.Errorf("allowed_values: unknown sentinel %q", s)
		}
		a.values = nil
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("allowed_values: expected \"string\" or a list of strings")
	}
	a.values = values
	return nil
}

// configValue returns the wire representation used in ResourceConfig.
func (a AllowedValues) configValue() any {
	if a.values == nil {
		return "string"
	}
	return slices.Clone(a.values)
}

// Parameter is a validated resource parameter declaration.
type Parameter struct {
	// Name matches a {name} placeholder in the owning descriptor's URI.
	Name string `json:"name"`
	// Description is a human-readable parameter description.
	Description string `json:"description"`
	// AllowedValues restricts the accepted values.
	AllowedValues AllowedValues `json:"allowed_values"`
}

// Descriptor is a validated, immutable resource descriptor. Descriptors are
// parsed once at registry construction and never mutated afterwards, so they
// are safe to share across goroutines.
type Descriptor struct {
	// Name uniquely identifies the resource within a registry.
	Name string `json:"name"`
	// Description is a human-readable resource description.
	Description string `json:"description"`
	// Type is the declared content kind.
	Type ContentType `json:"type"`
	// Access selects fetch-vs-invoke behavior.
	Access AccessType `json:"access"`
	// URI is the resource location template.
	URI string `json:"uri"`
	// Function names the server-side function for AccessServer descriptors.
	Function string `json:"function,omitempty"`
	// Parameters are the declared parameters, in declaration order.
	Parameters []Parameter `json:"resource_parameters,omitempty"`
}

// placeholderPattern matches {name} tokens in a URI template.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Placeholders returns the placeholder names appearing in the URI template,
// in order of first appearance, without duplicates.
func (d Descriptor) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(d.URI, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Parameter returns the declaration for the named parameter.
func (d Descriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParameterSchema returns the JSON schema describing the descriptor's
// parameters. Every declared parameter is required; explicit allowed sets
// become enum constraints.
func (d Descriptor) ParameterSchema() map[string]any {
	if len(d.Parameters) == 0 {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	properties := make(map[string]any, len(d.Parameters))
	required := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		schema := map[string]any{
			"type":        "string",
			"description": p.Description,
		}
		if !p.AllowedValues.Any() {
			schema["enum"] = p.AllowedValues.Values()
		}
		properties[p.Name] = schema
		required = append(required, p.Name)
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Config converts the descriptor back to its configuration wire shape.
// The conversion is lossless for every descriptor field.
func (d Descriptor) Config() config.ResourceConfig {
	rc := config.ResourceConfig{
		Name:        d.Name,
		Description: d.Description,
		Type:        string(d.Type),
		Access:      string(d.Access),
		URI:         d.URI,
		Function:    d.Function,
	}
	for _, p := range d.Parameters {
		rc.ResourceParameters = append(rc.ResourceParameters, config.ParameterConfig{
			Name:          p.Name,
			Description:   p.Description,
			AllowedValues: p.AllowedValues.configValue(),
		})
	}
	return rc
}

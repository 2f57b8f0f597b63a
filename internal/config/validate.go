// Package config provides configuration management for Provisor.
package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// validTypes are the accepted resource content kinds.
var validTypes = []string{"csv", "txt", "json", "xml", "html", "pdf"}

// validAccess are the accepted resource access classes.
var validAccess = []string{"public", "mcp_server"}

// placeholderPattern matches {name} tokens in a URI template.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for errors and warnings.
// It returns nil when the configuration is fully valid and warning-free;
// otherwise the returned *ValidationError aggregates every finding so a
// misconfigured provider is reported in one pass.
func Validate(cfg *Config) *ValidationError {
	v := &ValidationError{}

	if cfg.Name == "" {
		v.Addf("provider name must not be empty")
	}

	if cfg.HTTP.Timeout < 0 {
		v.Addf("http.timeout must not be negative")
	}

	if level := cfg.Log.Level; level != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, level) {
		v.Addf("log.level %q is not one of debug, info, warn, error", level)
	}

	if format := cfg.Log.Format; format != "" && !slices.Contains([]string{"text", "json"}, format) {
		v.Addf("log.format %q is not one of text, json", format)
	}

	if len(cfg.Params.Resources) == 0 {
		v.Warnf("no resources declared; the provider will serve an empty set")
	}

	seen := make(map[string]bool, len(cfg.Params.Resources))
	for i := range cfg.Params.Resources {
		validateResource(v, &cfg.Params.Resources[i], seen)
	}

	if v.HasErrors() || v.HasWarnings() {
		return v
	}
	return nil
}

// validateResource checks a single resource descriptor record.
func validateResource(v *ValidationError, r *ResourceConfig, seen map[string]bool) {
	if r.Name == "" {
		v.Addf("resource with empty name")
		return
	}

	if seen[r.Name] {
		v.Addf("resource %q: duplicate name", r.Name)
	}
	seen[r.Name] = true

	if r.Type == "" {
		v.Addf("resource %q: type is required", r.Name)
	} else if !slices.Contains(validTypes, r.Type) {
		v.Addf("resource %q: type %q is not one of %s", r.Name, r.Type, strings.Join(validTypes, ", "))
	}

	switch r.Access {
	case "":
		v.Addf("resource %q: access is required", r.Name)
	case "public":
		if r.Function != "" {
			v.Warnf("resource %q: function %q is ignored for public access", r.Name, r.Function)
		}
		if !strings.HasPrefix(r.URI, "http://") && !strings.HasPrefix(r.URI, "https://") {
			v.Addf("resource %q: public uri must use the http or https scheme", r.Name)
		}
	case "mcp_server":
		if r.Function == "" {
			v.Addf("resource %q: function is required for mcp_server access", r.Name)
		}
	default:
		v.Addf("resource %q: access %q is not one of %s", r.Name, r.Access, strings.Join(validAccess, ", "))
	}

	if r.URI == "" {
		v.Addf("resource %q: uri is required", r.Name)
	}

	declared := make(map[string]bool, len(r.ResourceParameters))
	for _, p := range r.ResourceParameters {
		if p.Name == "" {
			v.Addf("resource %q: parameter with empty name", r.Name)
			continue
		}
		if declared[p.Name] {
			v.Addf("resource %q: duplicate parameter %q", r.Name, p.Name)
		}
		declared[p.Name] = true

		if !allowedValuesOK(p.AllowedValues) {
			v.Addf("resource %q: parameter %q: allowed_values must be \"string\" or a list of strings", r.Name, p.Name)
		}
	}

	// Every placeholder must be declared; unused declarations are tolerated
	// but flagged as wasteful.
	placeholders := placeholderPattern.FindAllStringSubmatch(r.URI, -1)
	used := make(map[string]bool, len(placeholders))
	for _, m := range placeholders {
		used[m[1]] = true
		if !declared[m[1]] {
			v.Addf("resource %q: uri placeholder {%s} has no parameter declaration", r.Name, m[1])
		}
	}
	for name := range declared {
		if !used[name] {
			v.Warnf("resource %q: parameter %q never appears in the uri", r.Name, name)
		}
	}
}

// allowedValuesOK reports whether an allowed_values field is well formed.
// Viper decodes YAML lists as []any, JSON configs may give []string.
func allowedValuesOK(av any) bool {
	switch val := av.(type) {
	case nil:
		return true
	case string:
		return val == "string"
	case []string:
		return true
	case []any:
		for _, item := range val {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

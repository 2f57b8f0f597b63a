// Package config provides configuration management for Provisor.
package config

import (
	"time"
)

// Config is the root configuration for a Provisor resource provider.
type Config struct {
	// Name identifies the provider (also reported as the MCP server name).
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// Description is a human-readable provider description.
	Description string `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`
	// Log configures logging output.
	Log LogConfig `mapstructure:"log" json:"log" yaml:"log"`
	// HTTP configures the outbound HTTP client for public resources.
	HTTP HTTPConfig `mapstructure:"http" json:"http" yaml:"http"`
	// Params holds the provider parameters, including the resource set.
	Params ParamsConfig `mapstructure:"params" json:"params" yaml:"params"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" json:"level" yaml:"level"`
	// Format is the log format (text, json).
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	// Timeout bounds each resource fetch. Zero means the default (30s).
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// ParamsConfig holds the provider parameter block from the configuration
// object. Resources is the declared resource descriptor list.
type ParamsConfig struct {
	Resources []ResourceConfig `mapstructure:"resources" json:"resources" yaml:"resources"`
}

// ResourceConfig is the wire shape of a single resource descriptor record.
type ResourceConfig struct {
	// Name uniquely identifies the resource within the provider.
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// Description is a human-readable resource description.
	Description string `mapstructure:"description" json:"description" yaml:"description"`
	// Type is the declared content kind (csv, txt, json, xml, html, pdf).
	Type string `mapstructure:"type" json:"type" yaml:"type"`
	// Access selects the retrieval behavior (public, mcp_server).
	Access string `mapstructure:"access" json:"access" yaml:"access"`
	// URI is the resource location, possibly containing {placeholder} tokens.
	URI string `mapstructure:"uri" json:"uri" yaml:"uri"`
	// Function names the registered server-side function. Required when
	// Access is mcp_server, unused otherwise.
	Function string `mapstructure:"function" json:"function,omitempty" yaml:"function,omitempty"`
	// ResourceParameters declares the parameters accepted by the resource.
	ResourceParameters []ParameterConfig `mapstructure:"resource_parameters" json:"resource_parameters,omitempty" yaml:"resource_parameters,omitempty"`
}

// ParameterConfig is the wire shape of a resource parameter declaration.
// AllowedValues is either the literal string "string" (any value accepted)
// or a list of permitted string values.
type ParameterConfig struct {
	Name          string `mapstructure:"name" json:"name" yaml:"name"`
	Description   string `mapstructure:"description" json:"description" yaml:"description"`
	AllowedValues any    `mapstructure:"allowed_values" json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
}

// DefaultTimeout is the default HTTP fetch timeout.
const DefaultTimeout = 30 * time.Second

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "provisor",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Timeout: DefaultTimeout,
		},
	}
}

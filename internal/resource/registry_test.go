package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provisor-io/provisor/internal/config"
	perrors "github.com/provisor-io/provisor/internal/errors"
)

// testConfig returns a configuration with one public and one server-side
// resource, mirroring the documented configuration shape.
func testConfig() *config.Config {
	return &config.Config{
		Name: "example_resources",
		Params: config.ParamsConfig{
			Resources: []config.ResourceConfig{
				{
					Name:        "sampledata",
					Description: "per-client sample data",
					Type:        "csv",
					Access:      "public",
					URI:         "https://example.com/sampledata/{client}/data.csv",
					ResourceParameters: []config.ParameterConfig{
						{Name: "client", Description: "client id", AllowedValues: []any{"acme", "globex"}},
					},
				},
				{
					Name:        "client_greeting",
					Description: "client-specific greeting text",
					Type:        "txt",
					Access:      "mcp_server",
					URI:         "//sampledata/{client}/",
					Function:    "sample_parameterized_resource",
					ResourceParameters: []config.ParameterConfig{
						{Name: "client", Description: "client id", AllowedValues: "string"},
					},
				},
			},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("parses valid config", func(t *testing.T) {
		reg, err := NewRegistry(testConfig())
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Len())
		assert.Equal(t, []string{"sampledata", "client_greeting"}, reg.Names())

		d, ok := reg.Lookup("sampledata")
		require.True(t, ok)
		assert.Equal(t, TypeCSV, d.Type)
		assert.Equal(t, AccessPublic, d.Access)
		require.Len(t, d.Parameters, 1)
		assert.Equal(t, []string{"acme", "globex"}, d.Parameters[0].AllowedValues.Values())

		d, ok = reg.Lookup("client_greeting")
		require.True(t, ok)
		assert.Equal(t, AccessServer, d.Access)
		assert.Equal(t, "sample_parameterized_resource", d.Function)
		assert.True(t, d.Parameters[0].AllowedValues.Any())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewRegistry(nil)
		require.Error(t, err)
		assert.True(t, perrors.IsKind(err, perrors.KindConfig))
	})

	t.Run("empty resource list is valid", func(t *testing.T) {
		reg, err := NewRegistry(&config.Config{Name: "empty"})
		require.NoError(t, err)
		assert.Equal(t, 0, reg.Len())
		assert.Empty(t, reg.Descriptors())
	})

	t.Run("unknown resource name", func(t *testing.T) {
		reg, err := NewRegistry(testConfig())
		require.NoError(t, err)

		_, ok := reg.Lookup("nope")
		assert.False(t, ok)
	})
}

func TestNewRegistryValidation(t *testing.T) {
	mutate := func(fn func(cfg *config.Config)) *config.Config {
		cfg := testConfig()
		fn(cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{
			name: "missing name",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].Name = ""
			}),
			want: "resource name is required",
		},
		{
			name: "duplicate name",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[1].Name = "sampledata"
			}),
			want: "duplicate name",
		},
		{
			name: "unknown type",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].Type = "parquet"
			}),
			want: "type",
		},
		{
			name: "unknown access",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].Access = "private"
			}),
			want: "access",
		},
		{
			name: "missing uri",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].URI = ""
			}),
			want: "uri is required",
		},
		{
			name: "public uri without http scheme",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].URI = "ftp://example.com/data.csv"
			}),
			want: "http or https",
		},
		{
			name: "server-side resource without function",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[1].Function = ""
			}),
			want: "function is required",
		},
		{
			name: "malformed allowed_values sentinel",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].ResourceParameters[0].AllowedValues = "number"
			}),
			want: "allowed_values",
		},
		{
			name: "malformed allowed_values list",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].ResourceParameters[0].AllowedValues = []any{"acme", 7}
			}),
			want: "allowed_values",
		},
		{
			name: "undeclared placeholder",
			cfg: mutate(func(cfg *config.Config) {
				cfg.Params.Resources[0].URI = "https://example.com/{client}/{region}/data.csv"
			}),
			want: "placeholder {region}",
		},
		{
			name: "duplicate parameter",
			cfg: mutate(func(cfg *config.Config) {
				params := cfg.Params.Resources[0].ResourceParameters
				cfg.Params.Resources[0].ResourceParameters = append(params, params[0])
			}),
			want: "duplicate parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.cfg)
			require.Error(t, err)
			assert.True(t, perrors.IsKind(err, perrors.KindConfig), "expected a configuration error, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistryUnusedDeclarationTolerated(t *testing.T) {
	cfg := testConfig()
	cfg.Params.Resources[0].ResourceParameters = append(
		cfg.Params.Resources[0].ResourceParameters,
		config.ParameterConfig{Name: "unused", Description: "never substituted", AllowedValues: "string"},
	)

	reg, err := NewRegistry(cfg)
	require.NoError(t, err)

	d, ok := reg.Lookup("sampledata")
	require.True(t, ok)
	assert.Len(t, d.Parameters, 2)
}

func TestRegistryDeterminism(t *testing.T) {
	// Two registries built from the same configuration object must resolve
	// identical descriptors for identical calls.
	a, err := NewRegistry(testConfig())
	require.NoError(t, err)
	b, err := NewRegistry(testConfig())
	require.NoError(t, err)

	assert.Equal(t, a.Names(), b.Names())
	for _, name := range a.Names() {
		da, _ := a.Lookup(name)
		db, _ := b.Lookup(name)
		assert.Equal(t, da, db)
	}
}

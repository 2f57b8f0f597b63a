package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDescriptor() Descriptor {
	return Descriptor{
		Name:   "sampledata",
		Type:   TypeCSV,
		Access: AccessPublic,
		URI:    "//sampledata/{client}/",
		Parameters: []Parameter{
			{Name: "client", Description: "client id", AllowedValues: OneOf("acme", "globex")},
		},
	}
}

func TestExpand(t *testing.T) {
	t.Run("substitutes placeholder", func(t *testing.T) {
		uri, err := sampleDescriptor().Expand(map[string]string{"client": "acme"})
		require.NoError(t, err)
		assert.Equal(t, "//sampledata/acme/", uri)
	})

	t.Run("substitution is literal", func(t *testing.T) {
		d := Descriptor{
			Name: "raw",
			URI:  "https://example.com/{q}",
			Parameters: []Parameter{
				{Name: "q", AllowedValues: AnyString()},
			},
		}
		uri, err := d.Expand(map[string]string{"q": "a b&c"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a b&c", uri)
	})

	t.Run("repeated placeholders all substituted", func(t *testing.T) {
		d := Descriptor{
			Name: "mirror",
			URI:  "https://example.com/{client}/{client}.json",
			Parameters: []Parameter{
				{Name: "client", AllowedValues: AnyString()},
			},
		}
		uri, err := d.Expand(map[string]string{"client": "acme"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/acme/acme.json", uri)
	})

	t.Run("no placeholders passes uri through", func(t *testing.T) {
		d := Descriptor{Name: "static", URI: "https://example.com/data.csv"}
		uri, err := d.Expand(nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/data.csv", uri)
	})

	t.Run("missing parameter names the placeholder", func(t *testing.T) {
		_, err := sampleDescriptor().Expand(map[string]string{})
		require.Error(t, err)

		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "client", missing.Parameter)
		assert.Equal(t, "sampledata", missing.Resource)
		assert.Contains(t, err.Error(), "client")
	})

	t.Run("value outside allowed set", func(t *testing.T) {
		_, err := sampleDescriptor().Expand(map[string]string{"client": "other"})
		require.Error(t, err)

		var invalid *InvalidParameterValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "client", invalid.Parameter)
		assert.Equal(t, "other", invalid.Value)
		assert.Equal(t, []string{"acme", "globex"}, invalid.Allowed)
	})

	t.Run("extra undeclared parameters tolerated", func(t *testing.T) {
		uri, err := sampleDescriptor().Expand(map[string]string{"client": "acme", "extra": "x"})
		require.NoError(t, err)
		assert.Equal(t, "//sampledata/acme/", uri)
	})
}

func TestValidateParameters(t *testing.T) {
	t.Run("unused declaration validated when supplied", func(t *testing.T) {
		d := Descriptor{
			Name: "loose",
			URI:  "https://example.com/data.csv",
			Parameters: []Parameter{
				{Name: "mode", AllowedValues: OneOf("fast", "slow")},
			},
		}

		// Declaration never appears in the uri but a supplied value must
		// still satisfy its allowed set.
		require.NoError(t, d.ValidateParameters(nil))
		require.NoError(t, d.ValidateParameters(map[string]string{"mode": "fast"}))

		err := d.ValidateParameters(map[string]string{"mode": "warp"})
		var invalid *InvalidParameterValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "warp", invalid.Value)
	})

	t.Run("missing reported before invalid", func(t *testing.T) {
		d := Descriptor{
			Name: "two",
			URI:  "https://example.com/{a}/{b}",
			Parameters: []Parameter{
				{Name: "a", AllowedValues: AnyString()},
				{Name: "b", AllowedValues: OneOf("x")},
			},
		}

		err := d.ValidateParameters(map[string]string{"b": "bad"})
		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "a", missing.Parameter)
	})
}

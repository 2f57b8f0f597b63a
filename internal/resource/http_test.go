package resource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provisor-io/provisor/internal/config"
)

// httpTestRegistry builds a registry with one public resource pointed at the
// given base URL.
func httpTestRegistry(t *testing.T, baseURL string) *Registry {
	t.Helper()

	cfg := &config.Config{
		Name: "http_test",
		Params: config.ParamsConfig{
			Resources: []config.ResourceConfig{
				{
					Name:        "sampledata",
					Description: "per-client sample data",
					Type:        "csv",
					Access:      "public",
					URI:         baseURL + "/sampledata/{client}/data.csv",
					ResourceParameters: []config.ParameterConfig{
						{Name: "client", Description: "client id", AllowedValues: []any{"acme", "globex"}},
					},
				},
				{
					Name:     "server_only",
					Type:     "txt",
					Access:   "mcp_server",
					URI:      "//internal/",
					Function: "noop",
				},
			},
		},
	}

	reg, err := NewRegistry(cfg)
	require.NoError(t, err)
	return reg
}

func TestHTTPProviderGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sampledata/acme/data.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("id,name\n1,roadrunner\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	reg := httpTestRegistry(t, srv.URL)
	provider := NewHTTPProvider(reg)
	ctx := context.Background()

	t.Run("fetches substituted uri", func(t *testing.T) {
		content, err := provider.Get(ctx, "sampledata", map[string]string{"client": "acme"})
		require.NoError(t, err)
		assert.Equal(t, "id,name\n1,roadrunner\n", content.Text())
		assert.Equal(t, TypeCSV, content.Type)
		assert.Equal(t, "text/csv", content.MIMEType)
	})

	t.Run("non-success status carries status code", func(t *testing.T) {
		// globex is in the allowed set but the test server has no data for
		// it, so the fetch itself fails.
		_, err := provider.Get(ctx, "sampledata", map[string]string{"client": "globex"})
		require.Error(t, err)

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.NoError(t, fetchErr.Unwrap())
	})

	t.Run("unknown resource", func(t *testing.T) {
		_, err := provider.Get(ctx, "nope", nil)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.Name)
	})

	t.Run("server-side resource is not visible", func(t *testing.T) {
		_, err := provider.Get(ctx, "server_only", nil)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("missing parameter", func(t *testing.T) {
		_, err := provider.Get(ctx, "sampledata", nil)

		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "client", missing.Parameter)
	})

	t.Run("invalid parameter value", func(t *testing.T) {
		_, err := provider.Get(ctx, "sampledata", map[string]string{"client": "other"})

		var invalid *InvalidParameterValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "other", invalid.Value)
	})
}

func TestHTTPProviderTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	reg := httpTestRegistry(t, srv.URL)
	srv.Close() // connection refused from here on

	provider := NewHTTPProvider(reg)

	_, err := provider.Get(context.Background(), "sampledata", map[string]string{"client": "acme"})
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Unwrap())
}

func TestHTTPProviderContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	reg := httpTestRegistry(t, srv.URL)
	provider := NewHTTPProvider(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Get(ctx, "sampledata", map[string]string{"client": "acme"})
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPProviderOptions(t *testing.T) {
	reg := httpTestRegistry(t, "https://example.com")

	t.Run("default timeout", func(t *testing.T) {
		p := NewHTTPProvider(reg)
		assert.Equal(t, config.DefaultTimeout, p.client.Timeout)
	})

	t.Run("with timeout", func(t *testing.T) {
		p := NewHTTPProvider(reg, WithTimeout(5*time.Second))
		assert.Equal(t, 5*time.Second, p.client.Timeout)
	})

	t.Run("with custom client", func(t *testing.T) {
		client := &http.Client{Timeout: time.Second}
		p := NewHTTPProvider(reg, WithHTTPClient(client))
		assert.Same(t, client, p.client)
	})

	t.Run("registry accessor", func(t *testing.T) {
		p := NewHTTPProvider(reg)
		assert.Same(t, reg, p.Registry())
	})
}

package karma

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("ListedIdentity", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/verification/karma/bad@example.com", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"status":"success","data":{"karma_identity":"bad@example.com","amount_in_contention":"0.00"}}`)
		}))
		defer server.Close()

		listed, err := NewClient(server.URL, "test-key").Check(ctx, "bad@example.com")
		require.NoError(t, err)
		assert.True(t, listed)
	})

	t.Run("NotFoundMeansClean", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		listed, err := NewClient(server.URL, "test-key").Check(ctx, "clean@example.com")
		require.NoError(t, err)
		assert.False(t, listed)
	})

	t.Run("EmptyKarmaIdentityMeansClean", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"success","data":{"karma_identity":""}}`)
		}))
		defer server.Close()

		listed, err := NewClient(server.URL, "test-key").Check(ctx, "clean@example.com")
		require.NoError(t, err)
		assert.False(t, listed)
	})

	t.Run("UpstreamErrorSurfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "test-key").Check(ctx, "anyone@example.com")
		assert.Error(t, err)
	})

	t.Run("IdentityIsPathEscaped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/verification/karma/a%2Fb@example.com", r.URL.EscapedPath())
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "test-key").Check(ctx, "a/b@example.com")
		require.NoError(t, err)
	})
}

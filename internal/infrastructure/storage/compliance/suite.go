// Package compliance holds the behavioural test suite shared by object store backends.
package compliance

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertteam/expert/internal/application/user"
)

// Store is an object store that can also enumerate keys under a prefix.
type Store interface {
	user.ObjectStore
	List(ctx context.Context, prefix string) ([]string, error)
}

// Fetch reads an object back through a signed GET URL.
type Fetch func(t *testing.T, signedURL string) (int, []byte)

// RunObjectStoreComplianceTest runs a standard set of tests against an object store.
// setup returns a fresh store and its cleanup; fetch resolves signed URLs.
func RunObjectStoreComplianceTest(t *testing.T, setup func() (Store, func()), fetch Fetch) {
	t.Run("PutAndList", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		prefix := "profile-images/" + uuid.NewString() + "/"
		require.NoError(t, store.Put(ctx, prefix+"a.png", "image/png", strings.NewReader("a")))
		require.NoError(t, store.Put(ctx, prefix+"b.png", "image/png", strings.NewReader("b")))
		require.NoError(t, store.Put(ctx, "other/"+uuid.NewString(), "image/png", strings.NewReader("c")))

		keys, err := store.List(ctx, prefix)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{prefix + "a.png", prefix + "b.png"}, keys)
	})

	t.Run("SignedGetURL", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "profile-images/" + uuid.NewString() + "_avatar.png"
		require.NoError(t, store.Put(ctx, key, "image/png", strings.NewReader("png-bytes")))

		url, err := store.SignedURL(ctx, key, http.MethodGet, 10*time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, url)

		status, body := fetch(t, url)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "png-bytes", string(body))
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "profile-images/" + uuid.NewString() + "_gone.png"
		require.NoError(t, store.Put(ctx, key, "image/png", strings.NewReader("x")))
		require.NoError(t, store.Delete(ctx, key))
		require.NoError(t, store.Delete(ctx, key))

		keys, err := store.List(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("RejectsUnsupportedMethod", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.SignedURL(context.Background(), "profile-images/x", http.MethodPost, time.Minute)
		assert.Error(t, err)
	})
}

// ReadAll is a Fetch helper for backends reachable with a plain HTTP client.
func ReadAll(client *http.Client) Fetch {
	return func(t *testing.T, signedURL string) (int, []byte) {
		t.Helper()
		resp, err := client.Get(signedURL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, body
	}
}

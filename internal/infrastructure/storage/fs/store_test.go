package fs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertteam/expert/internal/infrastructure/storage/compliance"
)

func newTestStore(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store, err := NewStore(t.TempDir(), srv.URL+"/files", []byte("test-signing-secret"))
	require.NoError(t, err)
	mux.Handle("/files/", http.StripPrefix("/files", store.Handler()))

	return store, srv
}

func TestFSStore_Compliance(t *testing.T) {
	compliance.RunObjectStoreComplianceTest(t, func() (compliance.Store, func()) {
		store, srv := newTestStore(t)
		return store, srv.Close
	}, compliance.ReadAll(http.DefaultClient))
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "a/../../b", "/abs", "dir/"} {
		err := store.Put(ctx, key, "image/png", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFSStore_SignedURLs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := "profile-images/abc_avatar.png"

	putURL, err := store.SignedURL(ctx, key, http.MethodPut, time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, putURL, strings.NewReader("uploaded"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("PUT URL cannot be used for GET", func(t *testing.T) {
		resp, err := http.Get(putURL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("tampered signature", func(t *testing.T) {
		getURL, err := store.SignedURL(ctx, key, http.MethodGet, time.Minute)
		require.NoError(t, err)

		resp, err := http.Get(strings.Replace(getURL, "X-Signature=", "X-Signature=00", 1))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("expired", func(t *testing.T) {
		getURL, err := store.SignedURL(ctx, key, http.MethodGet, -time.Second)
		require.NoError(t, err)

		resp, err := http.Get(getURL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("valid GET", func(t *testing.T) {
		getURL, err := store.SignedURL(ctx, key, http.MethodGet, time.Minute)
		require.NoError(t, err)

		status, body := compliance.ReadAll(http.DefaultClient)(t, getURL)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "uploaded", string(body))
	})
}

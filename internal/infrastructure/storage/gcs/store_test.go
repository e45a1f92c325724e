package gcs

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/expertteam/expert/internal/infrastructure/storage/compliance"
)

func TestGCSStore_Compliance(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set, skipping GCS tests")
	}

	compliance.RunObjectStoreComplianceTest(t, func() (compliance.Store, func()) {
		// Assumes Application Default Credentials able to sign URLs for the bucket.
		ctx := context.Background()

		store, err := NewStore(ctx, Config{
			Bucket:          bucket,
			CredentialsFile: os.Getenv("TEST_GCS_CREDENTIALS_FILE"),
		})
		require.NoError(t, err)

		cleanup := func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			for _, prefix := range []string{"profile-images/", "other/"} {
				keys, err := store.List(cleanupCtx, prefix)
				if err != nil {
					t.Logf("Warning: failed to list objects during cleanup: %v", err)
					continue
				}
				for _, key := range keys {
					if err := store.Delete(cleanupCtx, key); err != nil {
						t.Logf("Warning: failed to delete object %s: %v", key, err)
					}
				}
			}
			_ = store.Close()
		}

		return store, cleanup
	}, compliance.ReadAll(&http.Client{Timeout: 30 * time.Second}))
}

func TestNewStore_RequiresBucket(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	require.Error(t, err)
}

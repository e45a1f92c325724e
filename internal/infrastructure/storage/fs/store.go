// Package fs stores objects on the local filesystem and serves them through
// HMAC-signed URLs.
package fs

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Query parameters of signed URLs.
const (
	paramExpires   = "X-Expires"
	paramMethod    = "X-Method"
	paramSignature = "X-Signature"
)

// ErrInvalidKey is returned for object keys that are empty or escape the base directory.
var ErrInvalidKey = errors.New("invalid object key")

// Store is a filesystem-based object store.
type Store struct {
	baseDir string
	baseURL string
	secret  []byte
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStore creates a filesystem store rooted at baseDir. Signed URLs point at
// baseURL, where Handler must be mounted.
func NewStore(baseDir, baseURL string, secret []byte) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}, nil
}

func validKey(key string) bool {
	return key != "" && !strings.HasSuffix(key, "/") && path.Clean("/"+key) == "/"+key
}

func (s *Store) filePath(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

// Put writes the object atomically by renaming a temporary file into place.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	p, err := s.filePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}

	slog.DebugContext(ctx, "stored object", "key", key, "content_type", contentType)
	return nil
}

// Delete removes the object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.filePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// List returns the keys that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := []string{}
	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return keys, nil
}

// SignedURL returns a URL allowing method on key until expiry.
func (s *Store) SignedURL(ctx context.Context, key, method string, expiry time.Duration) (string, error) {
	if method != http.MethodGet && method != http.MethodPut {
		return "", fmt.Errorf("unsupported signed URL method %q", method)
	}
	if !validKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	expires := strconv.FormatInt(s.now().Add(expiry).Unix(), 10)

	q := url.Values{}
	q.Set(paramExpires, expires)
	q.Set(paramMethod, method)
	q.Set(paramSignature, s.sign(method, key, expires))

	return s.baseURL + "/" + (&url.URL{Path: key}).EscapedPath() + "?" + q.Encode(), nil
}

func (s *Store) sign(method, key, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(method + "\n" + key + "\n" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Store) verify(r *http.Request, key string) bool {
	q := r.URL.Query()
	expires := q.Get(paramExpires)
	if q.Get(paramMethod) != r.Method {
		return false
	}
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > unix {
		return false
	}
	want := s.sign(r.Method, key, expires)
	return hmac.Equal([]byte(want), []byte(q.Get(paramSignature)))
}

// Handler serves GET and PUT requests carrying a valid signature.
// It expects the object key as the request path, so callers strip any mount prefix.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		if r.Method != http.MethodGet && r.Method != http.MethodPut {
			w.Header().Set("Allow", "GET, PUT")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !validKey(key) || !s.verify(r, key) {
			http.Error(w, "invalid or expired signature", http.StatusForbidden)
			return
		}

		if r.Method == http.MethodPut {
			if err := s.Put(r.Context(), key, r.Header.Get("Content-Type"), r.Body); err != nil {
				slog.ErrorContext(r.Context(), "signed upload failed", "key", key, "error", err)
				http.Error(w, "upload failed", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		s.serve(w, r, key)
	})
}

func (s *Store) serve(w http.ResponseWriter, r *http.Request, key string) {
	p, err := s.filePath(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	f, err := os.Open(p)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to read object", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "failed to read object", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, path.Base(key), info.ModTime(), f)
}

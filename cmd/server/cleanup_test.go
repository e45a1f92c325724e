package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleanup_ShutsDownAuthenticatorBeforeClosingResources(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("test"), "marker")
	var callOrder []string

	authenticator := &fakeAuthenticator{calls: &callOrder}
	images := &fakeCloser{name: "imagesClose", calls: &callOrder}
	store := &fakeCloser{name: "storeClose", calls: &callOrder}

	cleanup := newCleanup(ctx, authenticator, images, store)

	cleanup()

	require.Equal(t, []string{"authShutdown", "imagesClose", "storeClose"}, callOrder)
	require.Equal(t, "marker", authenticator.receivedCtx.Value(ctxKey("test")))
}

func TestNewCleanup_ContinuesAfterFailures(t *testing.T) {
	var callOrder []string

	authenticator := &fakeAuthenticator{calls: &callOrder, err: errors.New("drain timeout")}
	images := &fakeCloser{name: "imagesClose", calls: &callOrder, err: errors.New("closed")}
	store := &fakeCloser{name: "storeClose", calls: &callOrder}

	newCleanup(context.Background(), authenticator, images, nil, store)()

	assert.Equal(t, []string{"authShutdown", "imagesClose", "storeClose"}, callOrder)
}

func TestNewCleanup_NilAuthenticator(t *testing.T) {
	var callOrder []string
	store := &fakeCloser{name: "storeClose", calls: &callOrder}

	newCleanup(context.Background(), nil, store)()

	assert.Equal(t, []string{"storeClose"}, callOrder)
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://expert:xxxxxx@db:5432/expert?sslmode=disable",
		maskPassword("postgres://expert:s3cret@db:5432/expert?sslmode=disable"))
	assert.Equal(t, "postgres://db:5432/expert", maskPassword("postgres://db:5432/expert"))
	assert.Equal(t, "[REDACTED]", maskPassword("postgres://expert:pa ss@%zz"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

type ctxKey string

type fakeAuthenticator struct {
	calls       *[]string
	receivedCtx context.Context
	err         error
}

func (f *fakeAuthenticator) Shutdown(ctx context.Context) error {
	f.receivedCtx = ctx
	*f.calls = append(*f.calls, "authShutdown")
	return f.err
}

type fakeCloser struct {
	name  string
	calls *[]string
	err   error
}

func (c *fakeCloser) Close() error {
	*c.calls = append(*c.calls, c.name)
	return c.err
}

package gutenberg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "bookfreq-test", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchText(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var hits int32
		srv := newTestServer(t, http.StatusOK, "Title: Test\n\nsome words", &hits)
		c := NewClient(Config{UserAgent: "bookfreq-test"})

		text, err := c.FetchText(ctx, srv.URL+"/cache/epub/1/pg1.txt")
		require.NoError(t, err)
		assert.Equal(t, "Title: Test\n\nsome words", text)
		assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	})

	t.Run("non-success status", func(t *testing.T) {
		var hits int32
		srv := newTestServer(t, http.StatusNotFound, "missing", &hits)
		c := NewClient(Config{UserAgent: "bookfreq-test"})

		_, err := c.FetchText(ctx, srv.URL)
		require.Error(t, err)

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("server errors are not retried", func(t *testing.T) {
		var hits int32
		srv := newTestServer(t, http.StatusServiceUnavailable, "", &hits)
		c := NewClient(Config{UserAgent: "bookfreq-test"})

		_, err := c.FetchText(ctx, srv.URL)
		require.Error(t, err)
		assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	})

	t.Run("transport failure", func(t *testing.T) {
		c := NewClient(Config{UserAgent: "bookfreq-test", Timeout: time.Second})

		_, err := c.FetchText(ctx, "http://127.0.0.1:1/nothing")
		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.StatusCode)
		assert.NotNil(t, fetchErr.Unwrap())
	})

	t.Run("empty url", func(t *testing.T) {
		c := NewClient(Config{})
		_, err := c.FetchText(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyURL)
	})

	t.Run("cached bodies skip the network", func(t *testing.T) {
		var hits int32
		srv := newTestServer(t, http.StatusOK, "cached text", &hits)
		c := NewClient(Config{UserAgent: "bookfreq-test", CacheTTL: time.Minute})

		for i := 0; i < 3; i++ {
			text, err := c.FetchText(ctx, srv.URL)
			require.NoError(t, err)
			assert.Equal(t, "cached text", text)
		}
		assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		var hits int32
		srv := newTestServer(t, http.StatusInternalServerError, "", &hits)
		c := NewClient(Config{UserAgent: "bookfreq-test", CacheTTL: time.Minute})

		_, err := c.FetchText(ctx, srv.URL)
		require.Error(t, err)
		_, err = c.FetchText(ctx, srv.URL)
		require.Error(t, err)
		assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
	})

	t.Run("cancelled context", func(t *testing.T) {
		var hits int32
		srv := newTestServer(t, http.StatusOK, "text", &hits)
		c := NewClient(Config{UserAgent: "bookfreq-test"})

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.FetchText(cctx, srv.URL)
		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestIdem(t *testing.T) Idem {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Minute}
}

func TestIdempotencyBlocksReplay(t *testing.T) {
	idem := newTestIdem(t)
	calls := 0
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/drafts", nil)
	req.Header.Set("Idempotency-Key", "abc-123")

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, req)
	require.Equal(t, http.StatusConflict, replay.Code)
	require.Equal(t, 1, calls)
}

func TestIdempotencyKeyScopedToEndpoint(t *testing.T) {
	idem := newTestIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	a := httptest.NewRequest(http.MethodPost, "/drafts", nil)
	a.Header.Set("Idempotency-Key", "same-key")
	b := httptest.NewRequest(http.MethodPost, "/admin/discounts", nil)
	b.Header.Set("Idempotency-Key", "same-key")

	ra := httptest.NewRecorder()
	handler.ServeHTTP(ra, a)
	rb := httptest.NewRecorder()
	handler.ServeHTTP(rb, b)
	require.Equal(t, http.StatusOK, ra.Code)
	require.Equal(t, http.StatusOK, rb.Code)
}

func TestIdempotencyPassThroughWithoutHeader(t *testing.T) {
	idem := newTestIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/drafts", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestPageBounds(t *testing.T) {
	start, end := PageBounds(1, 10, 25)
	require.Equal(t, 0, start)
	require.Equal(t, 10, end)

	start, end = PageBounds(3, 10, 25)
	require.Equal(t, 20, start)
	require.Equal(t, 25, end)

	start, end = PageBounds(5, 10, 25)
	require.Equal(t, 25, start)
	require.Equal(t, 25, end)
}

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/idempotency"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/metrics"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := handlers.UserIDFromContext(r.Context())
		fmt.Fprintf(w, "%d:%t", userID, ok)
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "42", status: http.StatusOK, body: "42:true"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "garbage", header: "abc", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(handlers.HeaderUserID, tt.header)
			}
			rec := httptest.NewRecorder()

			Auth(echoUser()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "guest", header: "", status: http.StatusOK, body: "0:false"},
		{name: "user", header: "5", status: http.StatusOK, body: "5:true"},
		{name: "invalid header", header: "-1", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/holds", nil)
			if tt.header != "" {
				req.Header.Set(handlers.HeaderUserID, tt.header)
			}
			rec := httptest.NewRecorder()

			OptionalAuth(echoUser()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/holds", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusCreated, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"), "burst exhausted for the same IP")
	assert.Equal(t, http.StatusCreated, call("10.0.0.2:1000"), "other IP has its own bucket")

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusCreated, call("10.0.0.1:1003"), "one token refilled after 30s at 2/min")
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(10, 5*time.Minute)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(4 * time.Minute)
	rl.Allow("b")
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, rl.Evict())
	_, hasA := rl.visitors["a"]
	_, hasB := rl.visitors["b"]
	assert.False(t, hasA)
	assert.True(t, hasB)
}

func newIdempotencyStore(t *testing.T) *idempotency.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return idempotency.NewStore(client, time.Hour)
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	store := newIdempotencyStore(t)
	var calls int32
	handler := Auth(Idempotency(store, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		handlers.RespondJSON(w, http.StatusCreated, map[string]int32{"bookingId": n})
	})))

	send := func(userID, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/holds/abc/consume", strings.NewReader(`{}`))
		req.Header.Set(handlers.HeaderUserID, userID)
		req.Header.Set(HeaderIdempotencyKey, key)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("7", "key-1")
	second := send("7", "key-1")

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(headerIdempotencyReplayed))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	other := send("8", "key-1")
	assert.JSONEq(t, `{"bookingId":2}`, other.Body.String(), "same key from another user is a different request")
}

func TestIdempotency_DoesNotStoreServerErrors(t *testing.T) {
	store := newIdempotencyStore(t)
	var calls int32
	handler := Idempotency(store, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			handlers.RespondErrorCode(w, http.StatusServiceUnavailable, handlers.CodeTransientStore, "down")
			return
		}
		handlers.RespondJSON(w, http.StatusCreated, map[string]string{"ok": "yes"})
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/holds/abc/consume", nil)
		req.Header.Set(HeaderIdempotencyKey, "retry-me")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_WithoutKeyPassesThrough(t *testing.T) {
	store := newIdempotencyStore(t)
	var calls int32
	handler := Idempotency(store, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/holds/abc/consume", nil))
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry(), "test")
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/"+id, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/bookings/{bookingId}", "404")))
}

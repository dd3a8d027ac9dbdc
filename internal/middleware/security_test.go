package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name  string
		rate  int
		calls []string
		want  []bool
	}{
		{"within limit", 3, []string{"a", "a", "a"}, []bool{true, true, true}},
		{"over limit", 2, []string{"a", "a", "a", "a"}, []bool{true, true, false, false}},
		{"keys are independent", 1, []string{"a", "a", "b", "b"}, []bool{true, false, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.rate, time.Minute)
			got := make([]bool, 0, len(tt.calls))
			for _, key := range tt.calls {
				got = append(got, rl.Allow(key))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 40*time.Millisecond)

	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(5, 10*time.Millisecond)
	rl.Allow("idle")

	time.Sleep(30 * time.Millisecond)
	rl.Allow("active")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "idle")
	assert.Contains(t, rl.visitors, "active")
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeadersMiddleware(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/filters", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Cache-Control":          "no-store",
	}
	for header, value := range want {
		assert.Equal(t, value, rec.Header().Get(header), header)
	}
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestRateLimitMiddleware(t *testing.T) {
	limits := &RateLimitConfig{
		WriteLimiter:  NewRateLimiter(2, time.Minute),
		APILimiter:    NewRateLimiter(3, time.Minute),
		GlobalLimiter: NewRateLimiter(5, time.Minute),
	}
	wrapped := RateLimitMiddleware(limits)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(method, path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		return rec
	}

	t.Run("writes share the write budget", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/api/filters/nsfw/toggle", "1.1.1.1").Code)
		assert.Equal(t, http.StatusNoContent, send(http.MethodDelete, "/api/communities/x/join", "1.1.1.1").Code)

		rec := send(http.MethodPatch, "/api/filters", "1.1.1.1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("reads use the api budget", func(t *testing.T) {
		for range 3 {
			assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "/api/communities", "2.2.2.2").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, send(http.MethodGet, "/api/ads/stats", "2.2.2.2").Code)
		assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/api/ads/native-coffee/click", "2.2.2.2").Code)
	})

	t.Run("non-api paths use the global budget", func(t *testing.T) {
		for range 5 {
			assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "/metrics", "3.3.3.3").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, send(http.MethodGet, "/healthz", "3.3.3.3").Code)
	})
}

func TestRateLimitMiddleware_ForwardedHeaders(t *testing.T) {
	newHandler := func(trust bool) http.Handler {
		limits := &RateLimitConfig{
			WriteLimiter:      NewRateLimiter(1, time.Minute),
			APILimiter:        NewRateLimiter(1, time.Minute),
			GlobalLimiter:     NewRateLimiter(1, time.Minute),
			TrustProxyHeaders: trust,
		}
		return RateLimitMiddleware(limits)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	}
	send := func(h http.Handler, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
		req.RemoteAddr = "10.9.9.9:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("spoofed header does not reset the budget", func(t *testing.T) {
		h := newHandler(false)
		assert.Equal(t, http.StatusNoContent, send(h, "1.1.1.1"))
		assert.Equal(t, http.StatusTooManyRequests, send(h, "2.2.2.2"))
	})

	t.Run("trusted proxy keys on forwarded client", func(t *testing.T) {
		h := newHandler(true)
		assert.Equal(t, http.StatusNoContent, send(h, "1.1.1.1"))
		assert.Equal(t, http.StatusNoContent, send(h, "2.2.2.2"))
		assert.Equal(t, http.StatusTooManyRequests, send(h, "1.1.1.1"))
	})
}

func TestLimitBodyMiddleware(t *testing.T) {
	wrapped := LimitBodyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		body io.Reader
		want int
	}{
		{"small body", strings.NewReader(`{"showNSFW":true}`), http.StatusOK},
		{"exactly at limit", strings.NewReader(strings.Repeat("a", MaxBodyBytes)), http.StatusOK},
		{"over limit", strings.NewReader(strings.Repeat("a", MaxBodyBytes+1)), http.StatusRequestEntityTooLarge},
		{"no body", nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/communities", tt.body)
			if tt.body == nil {
				req.Body = nil
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		header     http.Header
		remoteAddr string
		want       string
	}{
		{"forwarded chain", http.Header{"X-Forwarded-For": {"203.0.113.50, 70.41.3.18"}}, "127.0.0.1:1", "203.0.113.50"},
		{"forwarded padded", http.Header{"X-Forwarded-For": {"  203.0.113.50  "}}, "127.0.0.1:1", "203.0.113.50"},
		{"real ip", http.Header{"X-Real-Ip": {" 198.51.100.178 "}}, "127.0.0.1:1", "198.51.100.178"},
		{"forwarded beats real ip", http.Header{"X-Forwarded-For": {"203.0.113.50"}, "X-Real-Ip": {"198.51.100.178"}}, "127.0.0.1:1", "203.0.113.50"},
		{"empty forwarded entry", http.Header{"X-Forwarded-For": {" , 70.41.3.18"}}, "192.168.1.1:8080", "192.168.1.1"},
		{"remote with port", nil, "192.168.1.1:8080", "192.168.1.1"},
		{"remote without port", nil, "192.168.1.1", "192.168.1.1"},
		{"ipv6 remote", nil, "[2001:db8::1]:443", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.header {
				req.Header[k] = v
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

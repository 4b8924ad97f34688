package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst should be denied")
	}
	// A different IP has its own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other IP should be allowed")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimit(0.001, 1)

	req := httptest.NewRequest(http.MethodPost, "/intake", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.9")

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", rec.Code)
	}
}

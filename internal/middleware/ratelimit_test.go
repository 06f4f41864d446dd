package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func errorCodeFromBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Error.Code
}

func rateLimitedHandler(rps float64, burst int) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return IPRateLimit(rps, burst)(next)
}

func doRequest(t *testing.T, h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPRateLimitAllowsWithinBurst(t *testing.T) {
	h := rateLimitedHandler(1, 3)

	for i := 0; i < 3; i++ {
		rec := doRequest(t, h, "10.0.0.1:1234")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestIPRateLimitBlocksOverBurst(t *testing.T) {
	h := rateLimitedHandler(0.001, 2)

	doRequest(t, h, "10.0.0.1:1234")
	doRequest(t, h, "10.0.0.1:1234")
	rec := doRequest(t, h, "10.0.0.1:1234")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if code := errorCodeFromBody(t, rec); code != "rate_limit_exceeded" {
		t.Errorf("error code = %q, want %q", code, "rate_limit_exceeded")
	}
}

func TestIPRateLimitPerAddress(t *testing.T) {
	h := rateLimitedHandler(0.001, 1)

	if rec := doRequest(t, h, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("first address: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := doRequest(t, h, "10.0.0.1:9999"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("same address, new port: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec := doRequest(t, h, "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Errorf("different address: status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLimiterCacheClear(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")

	if cleared := lc.clearIfExceeds(5); cleared {
		t.Error("cache cleared below the threshold")
	}
	if cleared := lc.clearIfExceeds(1); !cleared {
		t.Error("cache not cleared above the threshold")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("cache has %d entries after clear", len(lc.limiters))
	}
}

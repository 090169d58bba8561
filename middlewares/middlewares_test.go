package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/t", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	})
	return r
}

func doGet(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	r := newRouter(RateLimitMiddleware(rate.Limit(0.001), 2))

	for i := 0; i < 2; i++ {
		if w := doGet(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i+1, w.Code)
		}
	}
	if w := doGet(r, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("code after burst = %d, want 429", w.Code)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	r := newRouter(RateLimitMiddleware(rate.Limit(0.001), 1))

	if w := doGet(r, map[string]string{"X-Forwarded-For": "10.0.0.1"}); w.Code != http.StatusOK {
		t.Fatalf("first client: code = %d", w.Code)
	}
	if w := doGet(r, map[string]string{"X-Forwarded-For": "10.0.0.1"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client second request: code = %d, want 429", w.Code)
	}
	if w := doGet(r, map[string]string{"X-Forwarded-For": "10.0.0.2"}); w.Code != http.StatusOK {
		t.Fatalf("second client must have its own bucket, code = %d", w.Code)
	}
}

func TestSweepLimitersDropsIdleClients(t *testing.T) {
	now := time.Now()
	clients := map[string]*clientLimiter{
		"10.0.0.1": {lim: rate.NewLimiter(1, 1), seen: now},
		"10.0.0.2": {lim: rate.NewLimiter(1, 1), seen: now.Add(-2 * time.Hour)},
		"10.0.0.3": {lim: rate.NewLimiter(1, 1), seen: now.Add(-30 * time.Minute)},
	}

	sweepLimiters(clients, now.Add(-limiterIdleTTL))

	if _, ok := clients["10.0.0.2"]; ok {
		t.Error("idle client survived the sweep")
	}
	if len(clients) != 2 {
		t.Errorf("remaining clients = %d, want 2", len(clients))
	}
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	r := newRouter(AuthMiddleware(secret))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signedToken(t, "other", jwt.MapClaims{"sub": "u1"}), http.StatusUnauthorized},
		{"no subject", "Bearer " + signedToken(t, secret, jwt.MapClaims{"foo": "bar"}), http.StatusUnauthorized},
		{"valid sub", "Bearer " + signedToken(t, secret, jwt.MapClaims{"sub": "u1"}), http.StatusOK},
		{"userId fallback", "Bearer " + signedToken(t, secret, jwt.MapClaims{"userId": 42}), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			if w := doGet(r, headers); w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestAuthMiddlewareExposesSubject(t *testing.T) {
	const secret = "test-secret"
	r := newRouter(AuthMiddleware(secret))

	w := doGet(r, map[string]string{
		"Authorization": "Bearer " + signedToken(t, secret, jwt.MapClaims{"sub": "user-7"}),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if got := w.Body.String(); got != `{"userID":"user-7"}` {
		t.Errorf("body = %s", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	r := newRouter(RequestID())

	w := doGet(r, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id header")
	}

	w = doGet(r, map[string]string{"X-Request-ID": "given-id"})
	if got := w.Header().Get("X-Request-ID"); got != "given-id" {
		t.Errorf("request id = %q, want the caller's id echoed back", got)
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/auth"
	"github.com/ayush/travel-journal/backend/internal/logging"
)

type stubVerifier struct {
	token string
}

func (s stubVerifier) Verify(_ context.Context, raw string) (*auth.Claims, error) {
	if raw != s.token {
		return nil, apperr.Auth("Invalid access token")
	}
	return &auth.Claims{UserID: "user-1"}, nil
}

func protected() http.Handler {
	mw := RequireAuth(stubVerifier{token: "good"}, logging.Discard())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(auth.UserID(r.Context())))
	}))
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/get-user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequireAuthInjectsOwner(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/get-user", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAuthErrorBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/get-user", nil)
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Access token required", body["message"])
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(2, logging.Discard())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, logging.Discard())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, logging.Discard())
	rl.get("a")
	rl.get("b")
	rl.limiters["a"].lastSeen = time.Now().Add(-time.Hour)
	rl.Cleanup()
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "b")
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "/missing", entry.Data["path"])
}

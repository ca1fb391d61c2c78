package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

func TestRequestIDReplacesInvalidIDs(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	cases := map[string]bool{
		"abc-123":               true,
		"":                      false,
		"has space":             false,
		strings.Repeat("x", 65): false,
		strings.Repeat("y", 64): true,
	}
	for in, keep := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, in)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		got := resp.Header().Get(RequestIDHeader)
		require.NotEmpty(t, got)
		if keep {
			assert.Equal(t, in, got)
		} else {
			assert.NotEqual(t, in, got)
		}
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "middleware-test", Output: &buf})

	handler := RequestID(logg)(Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req.Header.Set(RequestIDHeader, "req-9")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, resp.Body.String(), `"request_id":"req-9"`)
	assert.Contains(t, buf.String(), "panic.recovered")
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "middleware-test", Level: logger.ParseLevel("debug"), Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusTeapot, resp.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), "request.complete")
}

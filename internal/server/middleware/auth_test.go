package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func callAuth(apiKey string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	h := Auth(apiKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	if decorate != nil {
		decorate(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthDisabledWhenKeyEmpty(t *testing.T) {
	w := callAuth("", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMissingToken(t *testing.T) {
	w := callAuth("sekret", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBearerToken(t *testing.T) {
	w := callAuth("sekret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer sekret")
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAPIKeyHeader(t *testing.T) {
	w := callAuth("sekret", func(r *http.Request) {
		r.Header.Set("X-API-Key", "sekret")
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthWrongToken(t *testing.T) {
	w := callAuth("sekret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer nope")
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

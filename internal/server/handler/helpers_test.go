package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("investment: get x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"invalid state", domain.ErrInvalidState, http.StatusConflict},
		{"lock held", domain.ErrLockHeld, http.StatusConflict},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"invalid address", domain.ErrInvalidAddress, http.StatusBadRequest},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeDomainError(w, tc.err)
			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

func TestParseListOpts(t *testing.T) {
	get := func(url string) domain.ListOpts {
		return parseListOpts(httptest.NewRequest(http.MethodGet, url, nil))
	}

	assert.Equal(t, domain.ListOpts{Limit: 50}, get("/api/investments"))
	assert.Equal(t, domain.ListOpts{Limit: 25, Offset: 100}, get("/api/investments?limit=25&offset=100"))
	assert.Equal(t, domain.ListOpts{Limit: 500}, get("/api/investments?limit=9999"))
	// Garbage falls back to the defaults.
	assert.Equal(t, domain.ListOpts{Limit: 50}, get("/api/investments?limit=abc&offset=-3"))
}

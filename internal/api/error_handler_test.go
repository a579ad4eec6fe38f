package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

func handleError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestHTTPErrorHandler_Taxonomy(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{domain.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{domain.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
		{domain.ErrTokenMalformed, http.StatusUnauthorized, "token_malformed"},
		{domain.ErrTokenNotYetValid, http.StatusUnauthorized, "token_not_yet_valid"},
		{domain.ErrAccountDeactivated, http.StatusForbidden, "account_deactivated"},
		{domain.ErrEmailUnverified, http.StatusForbidden, "email_unverified"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrUserExists, http.StatusConflict, "user_exists"},
		{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{domain.ErrPersistenceUnavailable, http.StatusServiceUnavailable, "persistence_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			rec := handleError(t, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestHTTPErrorHandler_WrappedErrorsResolve(t *testing.T) {
	rec := handleError(t, fmt.Errorf("%w: dial tcp refused", domain.ErrPersistenceUnavailable))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped outage to map to 503, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// The wrapped cause stays in the logs, not in the response.
	if resp.Error != "service temporarily unavailable" {
		t.Fatalf("expected generic message, got %q", resp.Error)
	}
}

func TestHTTPErrorHandler_RateLimited(t *testing.T) {
	rec := handleError(t, &domain.RateLimitError{RetryAfter: 90 * time.Second})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("expected Retry-After 90, got %q", got)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != "rate_limited" {
		t.Fatalf("expected rate_limited, got %q", resp.Code)
	}
}

func TestHTTPErrorHandler_RetryAfterRoundsUp(t *testing.T) {
	rec := handleError(t, &domain.RateLimitError{RetryAfter: 1500 * time.Millisecond})
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected fractional durations to round up, got %q", got)
	}
}

func TestHTTPErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	rec := handleError(t, echo.NewHTTPError(http.StatusBadRequest, "email is required"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != "bad_request" || resp.Error != "email is required" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

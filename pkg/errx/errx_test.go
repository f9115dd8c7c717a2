package errx

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewSetsHTTPStatusByType(t *testing.T) {
	tests := []struct {
		errType Type
		want    int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeBadRequest, http.StatusBadRequest},
		{TypeAuthorization, http.StatusUnauthorized},
		{TypeNotFound, http.StatusNotFound},
		{TypeConflict, http.StatusConflict},
		{TypeRateLimit, http.StatusTooManyRequests},
		{TypeExternal, http.StatusBadGateway},
		{TypeTimeout, http.StatusGatewayTimeout},
		{TypeUnavailable, http.StatusServiceUnavailable},
		{TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := New("boom", tt.errType).HTTPStatus; got != tt.want {
			t.Errorf("New(%s).HTTPStatus = %d, want %d", tt.errType, got, tt.want)
		}
	}
}

func TestWrapSetsHTTPStatus(t *testing.T) {
	wrapped := Wrap(errors.New("token is expired"), "invalid or expired token", TypeAuthorization)

	if wrapped.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d, want %d", wrapped.HTTPStatus, http.StatusUnauthorized)
	}
}

func TestWrapPreservesRegisteredStatus(t *testing.T) {
	registry := NewRegistry("TEST")
	code := registry.Register("MISSING", TypeNotFound, http.StatusNotFound, "thing missing")

	wrapped := Wrap(registry.New(code), "lookup failed", TypeInternal)

	if wrapped.HTTPStatus != http.StatusNotFound {
		t.Errorf("HTTPStatus = %d, want %d", wrapped.HTTPStatus, http.StatusNotFound)
	}
	if wrapped.Code != code {
		t.Errorf("Code = %s, want %s", wrapped.Code, code)
	}
}

func TestWrapFillsZeroStatusFromType(t *testing.T) {
	bare := &Error{Code: "LEGACY", Type: TypeInternal, Message: "no status"}

	wrapped := Wrap(bare, "still no status", TypeAuthorization)

	if wrapped.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d, want %d", wrapped.HTTPStatus, http.StatusUnauthorized)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "nothing", TypeInternal) != nil {
		t.Error("Wrap(nil, ...) should return nil")
	}
}

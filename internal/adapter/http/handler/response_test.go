package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed body", ErrMalformedBody, http.StatusBadRequest},
		{"body too large", ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
		{"missing fields", fmt.Errorf("create: %w", domain.ErrMissingFields), http.StatusBadRequest},
		{"validation", &domain.ValidationError{Field: "price", Reason: "price must not be negative"}, http.StatusExpectationFailed},
		{"missing credential", domain.ErrCredentialMissing, http.StatusForbidden},
		{"invalid credential", fmt.Errorf("%w: token has expired", domain.ErrCredentialInvalid), http.StatusUnauthorized},
		{"not found", domain.ErrListingNotFound, http.StatusNotFound},
		{"image host", &domain.UpstreamError{Op: "upload", Key: "car1", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatus(tt.err))
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusInternalServerError, errors.New("mongo: connection reset by 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":500,"error":"Internal Server Error"}`, rec.Body.String())
}

func TestWriteError_ValidationReason(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusExpectationFailed, &domain.ValidationError{Field: "price", Reason: "price must not be negative"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":417,"error":"price must not be negative"}`, rec.Body.String())
}

func TestDecodePayload(t *testing.T) {
	for _, body := range []string{"", "not json", "[1,2]", "null"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/car", strings.NewReader(body))
		_, err := decodePayload(req)
		assert.ErrorIs(t, err, ErrMalformedBody, body)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/car", strings.NewReader(`{"price": 12000}`))
	p, err := decodePayload(req)
	require.NoError(t, err)
	assert.Equal(t, "12000", fmt.Sprint(p["price"]))
}

func TestDecodePayload_BodyOverLimit(t *testing.T) {
	body := `{"model":"` + strings.Repeat("x", 256) + `"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/car", strings.NewReader(body))
	req.Body = http.MaxBytesReader(rec, req.Body, 64)

	_, err := decodePayload(req)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

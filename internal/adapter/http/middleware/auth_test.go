package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockVerifier struct{ mock.Mock }

func (m *MockVerifier) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func statusWriter(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, ""},
		{"access token header", map[string]string{"x-access-token": "abc"}, "abc"},
		{"bearer", map[string]string{"Authorization": "Bearer abc"}, "abc"},
		{"lower-case bearer", map[string]string{"Authorization": "bearer abc"}, "abc"},
		{"raw authorization", map[string]string{"Authorization": "abc"}, "abc"},
		{"access token wins", map[string]string{"x-access-token": "one", "Authorization": "Bearer two"}, "one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}

func TestJWTAuth(t *testing.T) {
	var seen *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "good").Return(&auth.Claims{UserID: "user-1"}, nil)
	verifier.On("Verify", mock.Anything, "bad").Return(nil, domain.ErrCredentialInvalid)
	verifier.On("Verify", mock.Anything, "odd").Return(nil, errors.New("something else"))

	h := JWTAuth(verifier, statusWriter, logger.NewNop())(next)

	t.Run("missing token is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, domain.ErrCredentialMissing.Error(), rec.Body.String())
		verifier.AssertNotCalled(t, "Verify", mock.Anything, "")
	})

	for _, token := range []string{"bad", "odd"} {
		t.Run("rejected token "+token, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.Header.Set("x-access-token", token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("valid token passes claims on", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		if assert.NotNil(t, seen) {
			assert.Equal(t, "user-1", seen.Identity())
		}
	})
}

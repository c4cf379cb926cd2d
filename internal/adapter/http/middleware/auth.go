package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"go.uber.org/zap"
)

const accessTokenHeader = "x-access-token"

// ErrorWriter renders an error response. The HTTP adapter passes its envelope writer.
type ErrorWriter func(w http.ResponseWriter, status int, err error)

// JWTAuth rejects requests without a credential with 403 and requests with an invalid
// one with 401. Verified claims are stored in the request context.
func JWTAuth(verifier auth.Verifier, writeError ErrorWriter, log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("JWTAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				log.Debug("JWTAuth: credential missing", zap.String("path", r.URL.Path))
				writeError(w, http.StatusForbidden, domain.ErrCredentialMissing)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Info("JWTAuth: credential rejected", zap.String("path", r.URL.Path), zap.Error(err))
				if !errors.Is(err, domain.ErrCredentialInvalid) {
					err = domain.ErrCredentialInvalid
				}
				writeError(w, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// TokenFromRequest reads the x-access-token header, falling back to Authorization
// with an optional Bearer prefix.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(accessTokenHeader)); token != "" {
		return token
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

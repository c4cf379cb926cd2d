// Package auth verifies bearer credentials and carries the decoded claims through
// request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload expected from the user service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the caller id, preferring user_id over the registered subject.
func (c *Claims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// JWTVerifier checks HMAC-signed tokens against a shared secret.
type JWTVerifier struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

type Option func(*JWTVerifier)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *JWTVerifier) { v.now = now }
}

func NewJWTVerifier(secret string, timeout time.Duration, opts ...Option) *JWTVerifier {
	v := &JWTVerifier{secret: []byte(secret), timeout: timeout, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify returns the decoded claims or an error matching domain.ErrCredentialInvalid.
// A verification that outlives the configured timeout or ctx is reported as invalid.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	type result struct {
		claims *Claims
		err    error
	}
	done := make(chan result, 1)
	go func() {
		claims, err := v.parse(token)
		done <- result{claims, err}
	}()

	select {
	case r := <-done:
		return r.claims, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: verification aborted: %v", domain.ErrCredentialInvalid, ctx.Err())
	}
}

func (v *JWTVerifier) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token has expired", domain.ErrCredentialInvalid)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
	}
	if !token.Valid {
		return nil, domain.ErrCredentialInvalid
	}
	return claims, nil
}

// Sign issues an HS256 token for claims. It backs the dev token tool and tests.
func Sign(secret string, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token, err := Sign(secret, &Claims{
		UserID: "user-1",
		Email:  "seller@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	require.NoError(t, err)
	return token
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := NewJWTVerifier(testSecret, time.Second)

	claims, err := v.Verify(context.Background(), signed(t, testSecret, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Identity())
	assert.Equal(t, "seller@example.com", claims.Email)
}

func TestJWTVerifier_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	token := signed(t, testSecret, issued.Add(time.Minute))

	v := NewJWTVerifier(testSecret, time.Second, WithClock(func() time.Time { return issued.Add(2 * time.Minute) }))
	_, err := v.Verify(context.Background(), token)

	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(testSecret, time.Second)

	noExpiry, err := Sign(testSecret, &Claims{UserID: "user-1"})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": signed(t, "other-secret", time.Now().Add(time.Hour)),
		"no expiry":    noExpiry,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
		})
	}
}

func TestJWTVerifier_CancelledContext(t *testing.T) {
	v := NewJWTVerifier(testSecret, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the parse or the cancellation may win; both must not yield claims for a bad token.
	_, err := v.Verify(ctx, "not.a.token")
	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"}})
	claims, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "sub-1", claims.Identity())

	_, ok = ClaimsFromContext(WithClaims(context.Background(), nil))
	assert.False(t, ok)
}

package auth

import (
	"testing"
	"time"

	"github.com/arjunmeena977/vendor-ecommerce/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig(secret string, ttl time.Duration) config.JWTConfig {
	return config.JWTConfig{Secret: secret, Issuer: "marketplace-test", TTL: ttl}
}

func Test_TokenManager_RoundTrip(t *testing.T) {
	// given
	manager := NewTokenManager(testJWTConfig("0123456789abcdef0123456789abcdef", time.Hour))
	userID := uuid.New()

	// when
	token, err := manager.Issue(userID)
	require.NoError(t, err)
	parsed, err := manager.Parse(token)

	// then
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func Test_TokenManager_WrongSecret(t *testing.T) {
	// given
	issuer := NewTokenManager(testJWTConfig("0123456789abcdef0123456789abcdef", time.Hour))
	verifier := NewTokenManager(testJWTConfig("another-secret-another-secret-00", time.Hour))

	// when
	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)
	_, err = verifier.Parse(token)

	// then
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_TokenManager_Expired(t *testing.T) {
	// given
	manager := NewTokenManager(testJWTConfig("0123456789abcdef0123456789abcdef", -time.Minute))

	// when
	token, err := manager.Issue(uuid.New())
	require.NoError(t, err)
	_, err = manager.Parse(token)

	// then
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_TokenManager_Garbage(t *testing.T) {
	manager := NewTokenManager(testJWTConfig("0123456789abcdef0123456789abcdef", time.Hour))

	_, err := manager.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-not-for-production"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(testSecret, time.Hour, "01ABCD", "admin@example.com", "admin")
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "01ABCD", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Empty(t, claims.Scope)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tok, err := GenerateToken(testSecret, time.Hour, "01ABCD", "user@example.com", "user")
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := GenerateToken(testSecret, -time.Minute, "01ABCD", "user@example.com", "user")
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tok)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestOwnershipCodesPerListing(t *testing.T) {
	codes := NewOwnershipCodes(testSecret, 5*time.Minute)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	code, err := codes.Generate("free:42", now)
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.True(t, codes.Verify("free:42", code, now))
	assert.True(t, codes.Verify("free:42", code, now.Add(time.Minute)), "within skew window")
	assert.False(t, codes.Verify("free:43", code, now), "code must not unlock another listing")

	wrong := "1" + code[1:]
	if wrong == code {
		wrong = "2" + code[1:]
	}
	assert.False(t, codes.Verify("free:42", wrong, now))
}

func TestOwnershipTokenScoping(t *testing.T) {
	tok, err := GenerateOwnershipToken(testSecret, 15*time.Minute, "free:42", "owner@example.com")
	require.NoError(t, err)

	claims, err := ParseOwnershipToken(testSecret, tok, "free:42")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Subject)

	_, err = ParseOwnershipToken(testSecret, tok, "free:99")
	assert.Error(t, err)

	// A plain session token must not pass as an ownership token.
	session, err := GenerateToken(testSecret, time.Hour, "01ABCD", "user@example.com", "user")
	require.NoError(t, err)
	_, err = ParseOwnershipToken(testSecret, session, "free:42")
	assert.Error(t, err)
}

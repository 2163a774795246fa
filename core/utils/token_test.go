package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken("secret", userID, " Ana@Example.com ", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "ana@example.com", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "ana@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	assert.Regexp(t, "^[0-9A-Za-z]{7}$", id)
	assert.NotEqual(t, id, GenerateID())
}

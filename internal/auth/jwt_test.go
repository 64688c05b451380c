package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaiWedekind/Portus/internal/auth"
)

func TestIssueAndValidateToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	token, err := auth.IssueAccessToken(testSecret, userID, "root", true, time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "root", claims.Username)
	assert.True(t, claims.Admin)
	assert.Equal(t, "portus", claims.Issuer)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testSecret, uuid.New(), "root", false, time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken("another-secret-another-secret!!!", token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testSecret, uuid.New(), "root", false, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := auth.ValidateToken(testSecret, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

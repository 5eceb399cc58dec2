package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "a@x.com", Role: model.RoleAdmin}
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, AccessTokenExpiry.Seconds(), claims.Remaining().Seconds(), 5)
}

func TestJWTService_RefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenID, token, err := svc.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, claims.ID)
	assert.Empty(t, claims.Role)
}

func TestJWTService_AccessTokenIsNotARefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTServiceWithTTL("test-secret", time.Nanosecond, 0)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
	assert.Equal(t, RefreshTokenExpiry, svc.RefreshTTL())
}

package auth_test

import (
	"context"
	"testing"
	"time"

	"taskBoard/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	manager := auth.NewTokenManager("secret", 24*time.Hour)
	userID := uuid.New()

	raw, issued, err := manager.Issue(userID, "google-sub")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := manager.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "google-sub", claims.GoogleID)
	assert.Equal(t, issued.ID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Expiry(), 5*time.Second)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

func TestTokenManager_Rejects(t *testing.T) {
	userID := uuid.New()
	past := time.Now().Add(-48 * time.Hour)

	expired, _, err := auth.NewTokenManager("secret", time.Hour).
		WithClock(func() time.Time { return past }).
		Issue(userID, "sub")
	require.NoError(t, err)

	otherKey, _, err := auth.NewTokenManager("other", time.Hour).Issue(userID, "sub")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": userID.String(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID.String(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "not-a-uuid",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        expired,
		"wrong key":      otherKey,
		"none algorithm": noneAlg,
		"no expiry":      noExpiry,
		"bad user id":    badUser,
		"garbage":        "not.a.token",
	}

	manager := auth.NewTokenManager("secret", time.Hour)
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := manager.Parse(raw)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()
	_, ok := auth.UserIDFromContext(ctx)
	assert.False(t, ok)

	userID := uuid.New()
	ctx = auth.WithClaims(ctx, &auth.Claims{UserID: userID.String()})

	got, ok := auth.UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	claims, ok := auth.ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userID.String(), claims.UserID)
}

package auth

import (
	"testing"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-long-enough-for-hs256"

func testAccount() *models.Account {
	return &models.Account{
		ID:          "acct-1",
		Email:       "publisher@example.com",
		Role:        models.RolePublisher,
		AccountType: models.AccountTypeUser,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, err := tm.Generate(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "publisher@example.com", claims.Email)
	assert.Equal(t, models.RolePublisher, claims.Role)
	assert.Equal(t, models.AccountTypeUser, claims.AccountType)
	assert.NotEmpty(t, claims.ID, "token should carry a jti")
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute)

	token, err := tm.Generate(testAccount())
	require.NoError(t, err)

	_, err = tm.Validate(token)
	// Specifically the expired kind, not the generic invalid kind
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("a-completely-different-signing-secret", time.Hour)

	token, err := tm.Generate(testAccount())
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := tm.Validate(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestTokenManager_CyberCafeClaims(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, err := tm.Generate(&models.Account{
		ID:          "cafe-9",
		Email:       "cafe@example.com",
		Role:        models.RoleOperator,
		AccountType: models.AccountTypeCyberCafe,
	})
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, models.AccountTypeCyberCafe, claims.AccountType)
	assert.Equal(t, models.RoleOperator, claims.Role)
}

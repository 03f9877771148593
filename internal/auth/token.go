package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation failure kinds. Callers map these to different user-facing
// messages ("session expired" vs "please log in again").
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager signs and verifies the bearer tokens issued on login.
// The signing secret is process-wide configuration; rotating it invalidates
// every outstanding token. There is no revocation list, expiry is the only
// invalidation path.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a TokenManager with the given HS256 secret and
// token lifetime.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Generate produces a signed token carrying the account identity, role and
// account type.
func (tm *TokenManager) Generate(account *models.Account) (string, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		AccountID:   account.ID,
		Email:       account.Email,
		Role:        account.Role,
		AccountType: account.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies a token and returns its claims. Expired tokens fail with
// ErrTokenExpired; every other failure is ErrTokenInvalid.
func (tm *TokenManager) Validate(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrTokenInvalid)
	}

	return claims, nil
}

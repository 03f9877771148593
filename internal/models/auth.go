package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload of issued bearer tokens: account identity,
// role, and account type on top of the registered JWT claims.
type TokenClaims struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	AccountType string `json:"account_type"`
	jwt.RegisteredClaims
}

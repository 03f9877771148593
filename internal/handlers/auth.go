package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/auth"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/services"
	pkghttp "github.com/ajeetyadav200/sarkari-job-backend/pkg/http"
)

// AuthServiceInterface defines the auth business logic used by the handler
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error)
	Me(ctx context.Context, accountID string) (*services.AccountResponse, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service     AuthServiceInterface
	ipConfig    *pkghttp.IPConfig
	tokenExpiry time.Duration
	env         string
}

func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, tokenExpiry time.Duration, env string) *AuthHandler {
	return &AuthHandler{
		service:     service,
		ipConfig:    ipConfig,
		tokenExpiry: tokenExpiry,
		env:         env,
	}
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse wraps the issued token and account projection
type LoginResponse struct {
	OK      bool                      `json:"ok"`
	Token   string                    `json:"token"`
	Account *services.AccountResponse `json:"account"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), req.Email, req.Password, ipAddress)
	if err != nil {
		writeLoginError(w, err)
		return
	}

	// Cookie and JSON body both carry the token; clients pick one transport
	auth.SetTokenCookie(w, result.Token, h.tokenExpiry, h.env)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(LoginResponse{
		OK:      true,
		Token:   result.Token,
		Account: result.Account,
	})
}

// writeLoginError maps a login failure to the wire, most specific kind first.
func writeLoginError(w http.ResponseWriter, err error) {
	var locked *models.LockedError
	var invalid *models.InvalidCredentialsError

	switch {
	case errors.As(err, &locked):
		if locked.Scope == models.LockScopeIP {
			pkghttp.WriteIPLocked(w, locked.RetryAfterHours)
		} else {
			pkghttp.WriteAccountLocked(w, locked.RetryAfterHours)
		}
	case errors.As(err, &invalid):
		pkghttp.WriteInvalidCredentials(w, invalid.AttemptsRemaining)
	case errors.Is(err, models.ErrAccountDeactivated):
		pkghttp.WriteForbidden(w, "Account is deactivated. Contact an administrator.")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Email and password are required")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	account, err := h.service.Me(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "unauthorized")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":      true,
		"account": account,
	})
}

// Logout handles POST /auth/logout. Tokens are not revocable; logout just
// clears the cookie transport.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, h.env)
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/auth"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/services"
	pkghttp "github.com/ajeetyadav200/sarkari-job-backend/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AccountHandler exposes the admin-only account management endpoints:
// creation, listing, unlock, and activation toggling.
type AccountHandler struct {
	service *services.AccountService
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccountRequest is the request body for account creation
type CreateAccountRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=120"`
	AccountType string `json:"account_type" validate:"required,oneof=user cybercafe"`
	Role        string `json:"role" validate:"required,oneof=admin assistant publisher operator"`
}

// Create handles POST /accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.service.Create(r.Context(), services.CreateAccountInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		AccountType: req.AccountType,
		Role:        req.Role,
	}, callerID(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeAccount(w, http.StatusCreated, h.service.ToResponse(account))
}

// List handles GET /accounts?type=user&limit=25&offset=0
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accountType := r.URL.Query().Get("type")
	if accountType == "" {
		accountType = models.AccountTypeUser
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	accounts, err := h.service.List(r.Context(), accountType, limit, offset)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	responses := make([]*services.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, h.service.ToResponse(account))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":       true,
		"accounts": responses,
	})
}

// Get handles GET /accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAccountError(w, err)
		return
	}

	writeAccount(w, http.StatusOK, h.service.ToResponse(account))
}

// Unlock handles POST /accounts/{id}/unlock
func (h *AccountHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Unlock(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		writeAccountError(w, err)
		return
	}

	writeAccount(w, http.StatusOK, h.service.ToResponse(account))
}

// Activate handles POST /accounts/{id}/activate
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /accounts/{id}/deactivate
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AccountHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	account, err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), active, callerID(r))
	if err != nil {
		writeAccountError(w, err)
		return
	}

	writeAccount(w, http.StatusOK, h.service.ToResponse(account))
}

// Delete handles DELETE /accounts/{id}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), callerID(r)); err != nil {
		writeAccountError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeAccount(w http.ResponseWriter, status int, account *services.AccountResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":      true,
		"account": account,
	})
}

func writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Account not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// callerID identifies the acting admin for the audit trail.
func callerID(r *http.Request) string {
	if claims := auth.ClaimsFromRequest(r); claims != nil {
		return claims.AccountID
	}
	return ""
}

package handlers_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/config"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/handlers"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/services"
	pkglogger "github.com/ajeetyadav200/sarkari-job-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccountHandler(repo services.AccountRepository) *handlers.AccountHandler {
	logger := slog.Default()
	cfg := config.LockoutConfig{MaxFailedAttempts: 3, LockoutDuration: 24 * time.Hour}
	lockout := services.NewLockoutTracker(repo, cfg, logger)
	service := services.NewAccountService(repo, lockout, logger, pkglogger.NewAuditLogger(logger))
	return handlers.NewAccountHandler(service)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testAccount(id string) *models.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte("SecurePassword123!"), bcrypt.MinCost)
	return &models.Account{
		ID:           id,
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Name:         "User One",
		AccountType:  models.AccountTypeUser,
		Role:         models.RoleAssistant,
		IsActive:     true,
	}
}

func TestCreateAccount_Success(t *testing.T) {
	repo := &services.MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, account *models.Account) (*models.Account, error) {
			account.ID = "acct1"
			return account, nil
		},
	}

	handler := newAccountHandler(repo)
	req := handlers.NewTestRequest(t, "POST", "/accounts", handlers.CreateAccountRequest{
		Email:       "new@example.com",
		Password:    "SecurePassword123!",
		Name:        "New User",
		AccountType: "user",
		Role:        "assistant",
	})
	req = handlers.WithAuthContext(req, "admin1", "admin@example.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	handler.Create(w, req)

	var resp struct {
		OK      bool                      `json:"ok"`
		Account *services.AccountResponse `json:"account"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, "new@example.com", resp.Account.Email)
	assert.True(t, resp.Account.IsActive)
}

func TestCreateAccount_ValidationFailure(t *testing.T) {
	handler := newAccountHandler(&services.MockAccountRepository{})

	req := handlers.NewTestRequest(t, "POST", "/accounts", handlers.CreateAccountRequest{
		Email:       "not-an-email",
		Password:    "SecurePassword123!",
		Name:        "New User",
		AccountType: "user",
		Role:        "assistant",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestCreateAccount_Duplicate(t *testing.T) {
	repo := &services.MockAccountRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Account, error) {
			return testAccount("acct1"), nil
		},
	}

	handler := newAccountHandler(repo)
	req := handlers.NewTestRequest(t, "POST", "/accounts", handlers.CreateAccountRequest{
		Email:       "user@example.com",
		Password:    "SecurePassword123!",
		Name:        "User One",
		AccountType: "user",
		Role:        "assistant",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusConflict, "conflict")
}

func TestListAccounts(t *testing.T) {
	repo := &services.MockAccountRepository{
		ListFunc: func(ctx context.Context, accountType string, limit, offset int) ([]*models.Account, error) {
			assert.Equal(t, models.AccountTypeUser, accountType)
			return []*models.Account{testAccount("acct1"), testAccount("acct2")}, nil
		},
	}

	handler := newAccountHandler(repo)
	req := handlers.NewTestRequest(t, "GET", "/accounts", nil)

	w := httptest.NewRecorder()
	handler.List(w, req)

	var resp struct {
		OK       bool                        `json:"ok"`
		Accounts []*services.AccountResponse `json:"accounts"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Accounts, 2)
	assert.Equal(t, "acct1", resp.Accounts[0].ID)
}

func TestListAccounts_UnknownType(t *testing.T) {
	handler := newAccountHandler(&services.MockAccountRepository{})
	req := handlers.NewTestRequest(t, "GET", "/accounts?type=robot", nil)

	w := httptest.NewRecorder()
	handler.List(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestGetAccount_NotFound(t *testing.T) {
	handler := newAccountHandler(&services.MockAccountRepository{})
	req := handlers.NewTestRequest(t, "GET", "/accounts/ghost", nil)
	req = withURLParam(req, "id", "ghost")

	w := httptest.NewRecorder()
	handler.Get(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestUnlockAccount(t *testing.T) {
	clearedID := ""
	repo := &services.MockAccountRepository{
		ClearFailedAttemptsFunc: func(ctx context.Context, id string) (*models.Account, error) {
			clearedID = id
			return testAccount(id), nil
		},
	}

	handler := newAccountHandler(repo)
	req := handlers.NewTestRequest(t, "POST", "/accounts/acct1/unlock", nil)
	req = withURLParam(req, "id", "acct1")
	req = handlers.WithAuthContext(req, "admin1", "admin@example.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	handler.Unlock(w, req)

	var resp struct {
		OK      bool                      `json:"ok"`
		Account *services.AccountResponse `json:"account"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "acct1", clearedID)
	assert.False(t, resp.Account.IsLocked)
}

func TestDeactivateAccount(t *testing.T) {
	repo := &services.MockAccountRepository{
		SetActiveFunc: func(ctx context.Context, id string, active bool) (*models.Account, error) {
			assert.False(t, active)
			account := testAccount(id)
			account.IsActive = false
			return account, nil
		},
	}

	handler := newAccountHandler(repo)
	req := handlers.NewTestRequest(t, "POST", "/accounts/acct1/deactivate", nil)
	req = withURLParam(req, "id", "acct1")
	req = handlers.WithAuthContext(req, "admin1", "admin@example.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	handler.Deactivate(w, req)

	var resp struct {
		OK      bool                      `json:"ok"`
		Account *services.AccountResponse `json:"account"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.False(t, resp.Account.IsActive)
}

func TestDeleteAccount(t *testing.T) {
	deletedID := ""
	repo := &services.MockAccountRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}

	handler := newAccountHandler(repo)
	req := handlers.NewTestRequest(t, "DELETE", "/accounts/acct1", nil)
	req = withURLParam(req, "id", "acct1")
	req = handlers.WithAuthContext(req, "admin1", "admin@example.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "acct1", deletedID)
}

package integration

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/handlers"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	pkghttp "github.com/ajeetyadav200/sarkari-job-backend/pkg/http"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	_ = testDB.Teardown(ctx)
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))
}

// resetIPAttempts clears only the address tracker, so account-level behavior
// can be observed past the shared test-client address locking first.
func resetIPAttempts(t *testing.T) {
	t.Helper()
	_, err := testDB.Pool.Exec(context.Background(), "TRUNCATE ip_login_attempts")
	require.NoError(t, err)
}

func parseError(t *testing.T, resp *http.Response) pkghttp.ErrorResponse {
	t.Helper()
	var errResp pkghttp.ErrorResponse
	require.NoError(t, ParseJSONResponse(resp, &errResp))
	return errResp
}

func TestLoginSuccess(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, testDB.DB, "user@example.com", "SecurePassword123!", models.AccountTypeUser, models.RoleAssistant)
	require.NoError(t, err)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	resp, loginResp, err := ts.Login("user@example.com", "SecurePassword123!")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, loginResp)
	assert.NotEmpty(t, loginResp.Token)
	assert.Equal(t, 3, loginResp.Account.AttemptsRemaining)

	// The token works against the authenticated surface.
	meResp, err := ts.RequestWithAuth("GET", "/auth/me", loginResp.Token, nil)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
}

func TestAccountLockoutAfterThreeFailures(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, testDB.DB, "user@example.com", "SecurePassword123!", models.AccountTypeUser, models.RoleAssistant)
	require.NoError(t, err)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	// Two wrong passwords burn down the allowance.
	for want := 2; want >= 1; want-- {
		resetIPAttempts(t)
		resp, _, err := ts.Login("user@example.com", "WrongPassword999!")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		errResp := parseError(t, resp)
		assert.Equal(t, "invalid_credentials", errResp.Error)
		require.NotNil(t, errResp.AttemptsRemaining)
		assert.Equal(t, want, *errResp.AttemptsRemaining)
	}

	// The third locks the account.
	resetIPAttempts(t)
	resp, _, err := ts.Login("user@example.com", "WrongPassword999!")
	require.NoError(t, err)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)

	errResp := parseError(t, resp)
	assert.Equal(t, "account_locked", errResp.Error)
	require.NotNil(t, errResp.RetryAfterHours)
	assert.Equal(t, 24, *errResp.RetryAfterHours)

	// Even the correct password is refused while locked.
	resetIPAttempts(t)
	resp, _, err = ts.Login("user@example.com", "SecurePassword123!")
	require.NoError(t, err)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)

	// The lock notification fired exactly once.
	var sent []SentNotification
	require.Eventually(t, func() bool {
		sent = ts.Notifier.Sent()
		return len(sent) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "user@example.com", sent[0].Email)
}

func TestIPLockoutAcrossUnknownEmails(t *testing.T) {
	resetTables(t)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	// Failures against different nonexistent emails share one address counter.
	for i := 0; i < 3; i++ {
		resp, _, err := ts.Login(fmt.Sprintf("nobody%d@example.com", i), "whatever")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		errResp := parseError(t, resp)
		assert.Equal(t, "invalid_credentials", errResp.Error)
		// Unknown emails never reveal an attempts hint.
		assert.Nil(t, errResp.AttemptsRemaining)
	}

	resp, _, err := ts.Login("nobody99@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	errResp := parseError(t, resp)
	assert.Equal(t, "too_many_attempts", errResp.Error)
}

func TestSuccessfulLoginResetsCounters(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, testDB.DB, "user@example.com", "SecurePassword123!", models.AccountTypeUser, models.RoleAssistant)
	require.NoError(t, err)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	// Two failures, then a success.
	for i := 0; i < 2; i++ {
		resp, _, err := ts.Login("user@example.com", "WrongPassword999!")
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, loginResp, err := ts.Login("user@example.com", "SecurePassword123!")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, loginResp.Account.AttemptsRemaining)

	// The reset restores the full allowance on the next failure.
	resp, _, err = ts.Login("user@example.com", "WrongPassword999!")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	errResp := parseError(t, resp)
	require.NotNil(t, errResp.AttemptsRemaining)
	assert.Equal(t, 2, *errResp.AttemptsRemaining)
}

func TestDeactivatedAccountRejectedWithoutCounting(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	account, err := SeedAccount(ctx, testDB.DB, "user@example.com", "SecurePassword123!", models.AccountTypeUser, models.RoleAssistant)
	require.NoError(t, err)

	accountRepo, _ := InitializeRepositories(testDB.DB)
	_, err = accountRepo.SetActive(ctx, account.ID, false)
	require.NoError(t, err)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	for i := 0; i < 4; i++ {
		resp, _, err := ts.Login("user@example.com", "SecurePassword123!")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	}

	// Four refusals later, neither counter has moved.
	fresh, err := accountRepo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.FailedAttempts)
}

func TestAdminUnlockRestoresAccess(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, testDB.DB, "admin@example.com", "AdminPassword123!", models.AccountTypeUser, models.RoleAdmin)
	require.NoError(t, err)
	locked, err := SeedAccount(ctx, testDB.DB, "user@example.com", "SecurePassword123!", models.AccountTypeUser, models.RoleAssistant)
	require.NoError(t, err)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	// Lock the user out.
	for i := 0; i < 3; i++ {
		resetIPAttempts(t)
		resp, _, err := ts.Login("user@example.com", "WrongPassword999!")
		require.NoError(t, err)
		resp.Body.Close()
	}

	resetIPAttempts(t)
	resp, _, err := ts.Login("user@example.com", "SecurePassword123!")
	require.NoError(t, err)
	require.Equal(t, http.StatusLocked, resp.StatusCode)
	resp.Body.Close()

	// Admin unlocks through the management endpoint.
	resetIPAttempts(t)
	adminResp, adminLogin, err := ts.Login("admin@example.com", "AdminPassword123!")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, adminResp.StatusCode)

	unlockResp, err := ts.RequestWithAuth("POST", "/accounts/"+locked.ID+"/unlock", adminLogin.Token, nil)
	require.NoError(t, err)
	defer unlockResp.Body.Close()
	require.Equal(t, http.StatusOK, unlockResp.StatusCode)

	resp, loginResp, err := ts.Login("user@example.com", "SecurePassword123!")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, loginResp.Token)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := SeedAccount(ctx, testDB.DB, "user@example.com", "SecurePassword123!", models.AccountTypeUser, models.RoleAssistant)
	require.NoError(t, err)

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	_, loginResp, err := ts.Login("user@example.com", "SecurePassword123!")
	require.NoError(t, err)
	require.NotNil(t, loginResp)

	resp, err := ts.RequestWithAuth("POST", "/accounts", loginResp.Token, handlers.CreateAccountRequest{
		Email:       "new@example.com",
		Password:    "SecurePassword123!",
		Name:        "New User",
		AccountType: models.AccountTypeUser,
		Role:        models.RoleAssistant,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

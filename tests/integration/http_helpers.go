package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/auth"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/config"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/database"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/handlers"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/routes"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/services"
	pkghttp "github.com/ajeetyadav200/sarkari-job-backend/pkg/http"
	pkglogger "github.com/ajeetyadav200/sarkari-job-backend/pkg/logger"
)

// SentNotification records an account-lock notice captured in tests
type SentNotification struct {
	Email string
	Until time.Time
}

// MockLockNotifier captures lock notifications instead of sending email
type MockLockNotifier struct {
	mu   sync.Mutex
	sent []SentNotification
}

func (m *MockLockNotifier) NotifyAccountLocked(ctx context.Context, email, name string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotification{Email: email, Until: until})
	return nil
}

func (m *MockLockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}

// TestServer runs the full HTTP stack over a test database
type TestServer struct {
	Server   *httptest.Server
	Notifier *MockLockNotifier
	Lockout  config.LockoutConfig
}

// NewTestServer wires repositories, services, handlers, and routes the same
// way main does, minus the timing delay so the suite stays fast.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.Default()
	auditLogger := pkglogger.NewAuditLogger(logger)

	lockoutCfg := config.LockoutConfig{
		MaxFailedAttempts:   3,
		LockoutDuration:     24 * time.Hour,
		IPMaxFailedAttempts: 3,
		IPLockoutDuration:   24 * time.Hour,
		AttemptRetention:    30 * 24 * time.Hour,
		RetentionInterval:   6 * time.Hour,
	}

	accountRepo, ipAttemptRepo := InitializeRepositories(db)
	lockoutTracker := services.NewLockoutTracker(accountRepo, lockoutCfg, logger)
	ipTracker := services.NewIPAttemptTracker(ipAttemptRepo, lockoutCfg, logger)
	tokenManager := auth.NewTokenManager("integration-test-secret-0123456789abcdef", 7*24*time.Hour)
	notifier := &MockLockNotifier{}

	authService := services.NewAuthService(
		accountRepo, lockoutTracker, ipTracker, tokenManager,
		nil, notifier, logger, auditLogger, lockoutCfg,
	)
	accountService := services.NewAccountService(accountRepo, lockoutTracker, logger, auditLogger)

	authHandler := handlers.NewAuthHandler(authService, &pkghttp.IPConfig{}, 7*24*time.Hour, "test")
	accountHandler := handlers.NewAccountHandler(accountService)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	routes.RegisterRoutes(router, authHandler, accountHandler, tokenManager)

	return &TestServer{
		Server:   httptest.NewServer(router),
		Notifier: notifier,
		Lockout:  lockoutCfg,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
}

// Request sends a JSON request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth sends a JSON request with a bearer token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	return ts.Request(method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// ParseJSONResponse decodes the response body into target and closes it
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// Login runs a login request and returns the parsed result
func (ts *TestServer) Login(email, password string) (*http.Response, *handlers.LoginResponse, error) {
	resp, err := ts.Request("POST", "/auth/login", handlers.LoginRequest{
		Email:    email,
		Password: password,
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return resp, nil, nil
	}

	var loginResp handlers.LoginResponse
	if err := ParseJSONResponse(resp, &loginResp); err != nil {
		return resp, nil, err
	}
	return resp, &loginResp, nil
}

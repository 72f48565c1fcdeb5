//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweetshop/internal/config"
	"sweetshop/internal/database"
	"sweetshop/internal/event"
	"sweetshop/internal/handler"
	"sweetshop/internal/middleware"
	"sweetshop/internal/repository"
	"sweetshop/internal/router"
	"sweetshop/internal/service"
)

const (
	adminEmail    = "admin@sweetshop.test"
	adminPassword = "admin-password"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newServer starts the full HTTP stack against the database named by
// DATABASE_URL, with every table emptied. It returns the server and an
// ADMIN access token.
func newServer(t *testing.T, cfg *config.Config) (*httptest.Server, string) {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, database.MigrateUp(databaseURL))

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 5, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, `TRUNCATE accounts, items, audit_entries RESTART IDENTITY`)
	require.NoError(t, err)

	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.AuthRateLimitRPM == 0 {
		cfg.AuthRateLimitRPM = 1000
	}

	accountRepo := repository.NewAccountRepository(db.Pool)
	itemRepo := repository.NewItemRepository(db.Pool)
	auditService := service.NewAuditService(repository.NewAuditRepository(db.Pool))
	bus := event.NewBus()

	authService, err := service.NewAuthService(accountRepo, "integration-secret", 30*time.Minute, "sweetshop")
	require.NoError(t, err)
	require.NoError(t, authService.EnsureAdmin(ctx, adminEmail, adminPassword))

	server := httptest.NewServer(router.New(
		cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewAuthHandler(authService),
		handler.NewSweetHandler(service.NewCatalogService(itemRepo, nil, auditService, bus)),
		handler.NewInventoryHandler(service.NewInventoryService(itemRepo, nil, auditService, bus, 5)),
		handler.NewAuditHandler(auditService),
		handler.NewHealthHandler(map[string]handler.Check{"postgres": db.Ping}),
	))
	t.Cleanup(server.Close)

	return server, login(t, server, adminEmail, adminPassword)
}

func login(t *testing.T, server *httptest.Server, email string, password string) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	require.Equal(t, "bearer", data.TokenType)

	return data.AccessToken
}

// registerUser creates a USER account and returns its access token.
func registerUser(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", map[string]string{
		"email":    email,
		"password": "user-password",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return login(t, server, email, "user-password")
}

func doJSON(t *testing.T, method string, url string, payload any, accessToken string) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if payload == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}

	return resp, body
}

func createSweet(t *testing.T, server *httptest.Server, adminToken string, name string, category string, price float64, quantity int) int64 {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/sweets", map[string]any{
		"name":     name,
		"category": category,
		"price":    price,
		"quantity": quantity,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &item))
	require.Positive(t, item.ID)
	return item.ID
}

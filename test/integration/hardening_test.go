//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"sweetshop/internal/config"
)

func TestSecurityHeadersOnResponses(t *testing.T) {
	server, adminToken := newServer(t, nil)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/sweets", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	require.Equal(t, "no-referrer", resp.Header.Get("Referrer-Policy"))
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAuthRateLimitReturns429(t *testing.T) {
	server, _ := newServer(t, &config.Config{AuthRateLimitRPM: 2})

	// The admin login performed by newServer consumed one token.
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", map[string]string{
			"email":    adminEmail,
			"password": "wrong-password",
		}, "")
		codes = append(codes, resp.StatusCode)
	}

	require.Contains(t, codes, http.StatusTooManyRequests)
}

func TestReadiness(t *testing.T) {
	server, _ := newServer(t, nil)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/health/ready", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

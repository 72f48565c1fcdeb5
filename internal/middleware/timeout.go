package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"sweetshop/internal/model"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.Failed("REQUEST_TIMEOUT", "request timed out", ""))

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}

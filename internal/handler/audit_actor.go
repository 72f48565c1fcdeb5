package handler

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"sweetshop/internal/middleware"
	"sweetshop/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: clientIP(r)}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = strconv.FormatInt(claims.AccountID, 10)
	actor.Email = claims.Email
	actor.Role = string(claims.Role)

	return actor
}

func clientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	xri := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}

	return strings.TrimSpace(r.RemoteAddr)
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sweetshop/internal/config"
	"sweetshop/internal/handler"
	"sweetshop/internal/middleware"
	"sweetshop/internal/model"
)

const maxBodyBytes = 1 << 20

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	sweetHandler *handler.SweetHandler,
	inventoryHandler *handler.InventoryHandler,
	auditHandler *handler.AuditHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	adminOnly := authMiddleware.RequireRoles(model.RoleAdmin)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(middleware.LimitBody(maxBodyBytes))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		api.Route("/sweets", func(sweets chi.Router) {
			sweets.Use(authMiddleware.RequireAuth)

			sweets.Get("/", sweetHandler.List)
			sweets.Get("/search", sweetHandler.Search)
			sweets.With(adminOnly).Post("/", sweetHandler.Create)

			sweets.Get("/{id}", sweetHandler.Get)
			sweets.With(adminOnly).Put("/{id}", sweetHandler.Update)
			sweets.With(adminOnly).Delete("/{id}", sweetHandler.Delete)

			sweets.Post("/{id}/purchase", inventoryHandler.Purchase)
			sweets.With(adminOnly).Post("/{id}/restock", inventoryHandler.Restock)
		})

		api.With(authMiddleware.RequireAuth, adminOnly).Get("/audit", auditHandler.List)
	})

	return r
}

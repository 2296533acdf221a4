package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"edushare-server/internal/authz"
	"edushare-server/internal/config"
	"edushare-server/internal/database"
	"edushare-server/internal/handler"
	"edushare-server/internal/middleware"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	User  *handler.UserHandler
	Video *handler.VideoHandler
}

func New(cfg *config.Config, db *database.DB, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	metrics := middleware.NewMetrics()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Handler)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.Health(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Expose())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", h.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Post("/logout-all", h.Auth.LogoutAll)
			auth.With(authMiddleware.RequireAuth).Put("/change-password", h.Auth.ChangePassword)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
			auth.With(authMiddleware.RequireAuth).Get("/sessions", h.Auth.Sessions)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth)
			users.With(authMiddleware.AdminOnly()).Get("/", h.User.List)
			users.With(authMiddleware.AdminOnly()).Delete("/{id}", h.User.Delete)
			users.With(authMiddleware.SuperAdminOnly()).Put("/{id}/role", h.User.UpdateRole)
		})

		api.Route("/videos", func(videos chi.Router) {
			videos.Use(authMiddleware.RequireAuth)
			videos.With(authMiddleware.RequirePermission(authz.PermVideoCreate)).Post("/", h.Video.Create)
			videos.Get("/", h.Video.List)
			videos.Get("/{id}", h.Video.Get)
			videos.With(authMiddleware.RequireOwnershipOrAdmin(h.Video.OwnerResolver())).Put("/{id}", h.Video.Update)
			videos.With(authMiddleware.RequireOwnershipOrAdmin(h.Video.OwnerResolver())).Delete("/{id}", h.Video.Delete)
			videos.With(
				authMiddleware.TeacherAndAbove(),
				authMiddleware.RequirePermission(authz.PermVideoApprove),
			).Post("/{id}/approve", h.Video.Approve)
		})
	})

	return r
}

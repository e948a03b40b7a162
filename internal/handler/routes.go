package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/msomdec/store-rating/internal/metrics"
	"github.com/msomdec/store-rating/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Role checks happen
// in the services; the mux only separates public from authenticated routes.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	users *service.UserService,
	stores *service.StoreService,
	ratings *service.RatingService,
	loginLimiter *service.KeyedLimiter,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, loginLimiter, cookieSecure)
	adminHandler := NewAdminHandler(users)
	storeHandler := NewStoreHandler(stores, ratings)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /", OptionalAuth(auth, http.HandlerFunc(HandleHome)))

	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", protected(authHandler.HandleMe))
	mux.Handle("PUT /api/auth/password", protected(authHandler.HandleChangePassword))

	mux.Handle("GET /api/admin/users", protected(adminHandler.HandleListUsers))
	mux.Handle("POST /api/admin/users", protected(adminHandler.HandleCreateUser))
	mux.Handle("GET /api/admin/dashboard", protected(adminHandler.HandleDashboard))

	mux.Handle("GET /api/stores", protected(storeHandler.HandleList))
	mux.Handle("GET /api/stores/search", protected(storeHandler.HandleSearch))
	mux.Handle("GET /api/stores/dashboard", protected(storeHandler.HandleOwnerDashboard))
	mux.Handle("POST /api/stores", protected(storeHandler.HandleCreate))
	mux.Handle("POST /api/stores/{id}/rating", protected(storeHandler.HandleRate))
}

// Middleware wraps the mux with request IDs, client IP resolution, panic
// recovery, metrics and security headers, outermost first.
func Middleware(next http.Handler) http.Handler {
	return middleware.RequestID(
		middleware.RealIP(
			middleware.Recoverer(
				metrics.Instrument(
					SecurityHeaders(next),
				),
			),
		),
	)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/msomdec/store-rating/internal/config"
	"github.com/msomdec/store-rating/internal/handler"
	"github.com/msomdec/store-rating/internal/repository/sqlite"
	"github.com/msomdec/store-rating/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	userService := service.NewUserService(db.Users(), db.Stores(), db.Ratings(), cfg.BcryptCost, cfg.RecentLimit)
	storeService := service.NewStoreService(db.Users(), db.Stores(), db.Ratings())
	ratingService := service.NewRatingService(db.Stores(), db.Ratings())

	if cfg.Admin.Email != "" {
		created, err := authService.EnsureAdmin(context.Background(), service.NewUser{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Address:  cfg.Admin.Address,
		})
		if err != nil {
			slog.Error("failed to bootstrap admin", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("bootstrap admin created", "email", cfg.Admin.Email)
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loginLimiter := service.NewKeyedLimiter(ctx, cfg.LoginRate, cfg.LoginBurst)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, userService, storeService, ratingService, loginLimiter, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Middleware(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

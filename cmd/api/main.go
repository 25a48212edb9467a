package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/carrental-backend/internal/config"
	"github.com/chachabrian/carrental-backend/internal/database"
	"github.com/chachabrian/carrental-backend/internal/handlers"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App) error {
	db, err := database.InitDB(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	cars := database.NewCarStore(db)
	bookings := database.NewBookingStore(db)

	// Redis is optional; without it there is no featured cache and the
	// hub is fed directly by this instance's bookings.
	var (
		redisClient *redis.Client
		cache       services.FeaturedCache
		notifiers   services.Notifiers
	)
	if cfg.RedisURL != "" {
		redisClient, err = services.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("Redis unavailable; continuing without cache", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			cache = services.NewCarCache(redisClient)
			notifiers = append(notifiers, services.NewRedisPublisher(redisClient))
		}
	}

	hub := services.NewHub()
	go hub.Run(ctx)
	if redisClient != nil {
		go hub.RelayFrom(ctx, redisClient)
	} else {
		notifiers = append(notifiers, hub)
	}

	var verifier services.TokenVerifier
	fbApp, err := services.InitFirebase(ctx, cfg.Firebase)
	if err != nil {
		slog.Warn("Firebase initialization failed", "error", err)
	}
	if fbApp != nil {
		fv, err := services.NewFirebaseVerifier(ctx, fbApp)
		if err != nil {
			slog.Warn("Firebase auth unavailable", "error", err)
		} else {
			verifier = fv
		}

		push, err := services.NewPushNotifier(ctx, fbApp)
		if err != nil {
			slog.Warn("Firebase messaging unavailable", "error", err)
		} else {
			notifiers = append(notifiers, push)
		}
	}
	if verifier == nil && cfg.JWTSecret != "" {
		slog.Warn("Using JWT_SECRET to verify tokens; do not use in production")
		verifier = services.NewJWTVerifier(cfg.JWTSecret)
	}
	if verifier == nil {
		slog.Warn("No identity provider configured; protected routes will return 503")
	}

	mailer := utils.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password, cfg.FrontendURL())
	if mailer.Enabled() {
		notifiers = append(notifiers, services.NewEmailNotifier(mailer))
	} else {
		slog.Info("SMTP not configured; booking emails disabled")
	}

	storage, err := services.InitStorage(cfg)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Deps{
		Catalog:     services.NewCarCatalog(cars, cache),
		Bookings:    services.NewBookingEngine(database.NewTxRunner(db), cars, bookings, notifiers, cache),
		Storage:     storage,
		Hub:         hub,
		DB:          db,
		Verifier:    verifier,
		Env:         cfg.Env,
		CORSOrigins: cfg.CORSOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

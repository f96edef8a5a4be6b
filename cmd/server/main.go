package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"masterboxer.com/social-feed/auth"
	"masterboxer.com/social-feed/config"
	"masterboxer.com/social-feed/database"
	"masterboxer.com/social-feed/events"
	"masterboxer.com/social-feed/logger"
	"masterboxer.com/social-feed/mail"
	"masterboxer.com/social-feed/metrics"
	"masterboxer.com/social-feed/middleware"
	"masterboxer.com/social-feed/routes"
	"masterboxer.com/social-feed/services"
	"masterboxer.com/social-feed/storage"
	"masterboxer.com/social-feed/store"
)

const (
	verifyRatePerMinute = 10
	shutdownTimeout     = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logg.Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logg.Fatalw("migrations failed", "error", err)
	}

	st := store.New(db)

	files, err := storage.New(ctx, cfg)
	if err != nil {
		logg.Fatalw("storage init failed", "type", cfg.StorageType, "error", err)
	}

	notifier, err := services.NewNotifier(ctx, cfg.FirebaseCredentialsPath, st, logg)
	if err != nil {
		logg.Warnw("push notifications disabled", "error", err)
		notifier = services.NopNotifier{}
	}

	publisher, err := events.New(cfg.NatsURL, logg)
	if err != nil {
		logg.Warnw("event publishing disabled", "error", err)
		publisher = events.Nop{}
	}
	defer publisher.Close()

	resolver := auth.NewResolver(cfg.JWTSecret, cfg.JWTTTL)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMin, logg)
	verifyLimiter := middleware.NewRateLimiter(verifyRatePerMinute, logg)
	loginLimiter.StartCleanup(time.Minute, 10*time.Minute, ctx.Done())
	verifyLimiter.StartCleanup(time.Minute, 10*time.Minute, ctx.Done())

	agg := services.NewAggregator(st, logg)
	m := metrics.New()

	router := routes.NewRouter(routes.Options{
		Posts:    services.NewPostService(st, agg, notifier, publisher, logg),
		Comments: services.NewCommentService(st, agg, notifier, publisher, logg),
		Users:    services.NewUserService(st),
		Auth:     services.NewAuthService(st, mail.New(cfg, logg), resolver, loginLimiter, cfg.PinTTL, logg),
		Uploads:  files,

		Resolver:    resolver,
		Metrics:     m,
		VerifyLimit: verifyLimiter.Handler,

		PageLimit:      cfg.DefaultPageLimit,
		MaxUploadBytes: cfg.RequestBodyLimit,
		UploadDir:      storage.LocalDir(files),
		Log:            logg,
	})

	origins := []string{cfg.WebsiteURL}
	if cfg.IsDevelopment() {
		origins = []string{"*"}
	}

	handler := middleware.Chain(router,
		middleware.Normalize(logg),
		middleware.Recover(logg),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.Logging(logg),
		middleware.CORS(origins...),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Infow("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalw("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Errorw("graceful shutdown failed", "error", err)
	}
	logg.Info("shutdown completed")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/app"
	"github.com/MrJamesThe3rd/subx/internal/config"
	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/database/migrations"
	subxHttp "github.com/MrJamesThe3rd/subx/internal/http"
	adminHandler "github.com/MrJamesThe3rd/subx/internal/http/admin"
	plotsHandler "github.com/MrJamesThe3rd/subx/internal/http/plots"
	purchaseHandler "github.com/MrJamesThe3rd/subx/internal/http/purchase"
	referralsHandler "github.com/MrJamesThe3rd/subx/internal/http/referrals"
	usersHandler "github.com/MrJamesThe3rd/subx/internal/http/users"
	webhookHandler "github.com/MrJamesThe3rd/subx/internal/http/webhook"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		return err
	}

	svc, err := app.New(cfg, db, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if svc.Sandboxed() {
		logger.Warn("PAYMENT_SANDBOX enabled, webhooks are verified with the public sandbox secret")
	}

	limiter := newLimiter(ctx, cfg, logger)

	var (
		plotsH     = plotsHandler.NewHandler(svc.Plots, svc.Importer, logger)
		purchaseH  = purchaseHandler.NewHandler(svc.Purchases, logger)
		webhookH   = webhookHandler.NewHandler(svc.Verifier, svc.Purchases, logger)
		usersH     = usersHandler.NewHandler(svc.Portfolios, svc.Purchases, logger)
		referralsH = referralsHandler.NewHandler(svc.Referrals, logger)
		adminH     = adminHandler.NewHandler(svc.Reconcile, svc.Purchases, logger)
	)

	router := subxHttp.New(subxHttp.Handlers{
		Plots:     plotsH,
		Purchases: purchaseH,
		Webhook:   webhookH,
		Users:     usersH,
		Referrals: referralsH,
		Admin:     adminH,
	}, subxHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		ReserveLimit:   limiter.Middleware,
		Logger:         logger.Named("http"),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	background := make(chan struct{})
	go func() {
		defer close(background)
		svc.RunBackground(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		<-background

		return err
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	<-background

	return err
}

// newLimiter returns a limiter that lets everything through when Redis is not configured
// or not reachable at startup.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) *ratelimit.Limiter {
	rlCfg := ratelimit.Config{
		Enabled:        cfg.RateLimit.Enabled,
		Capacity:       cfg.RateLimit.Capacity,
		RefillTokens:   cfg.RateLimit.RefillTokens,
		RefillInterval: cfg.RateLimit.RefillInterval,
		TTL:            cfg.RateLimit.TTL,
		Prefix:         cfg.RateLimit.Prefix,
	}

	if cfg.Redis.Addr == "" {
		return ratelimit.New(rlCfg, nil, logger)
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("rate limiting disabled", zap.Error(err))
		return ratelimit.New(rlCfg, nil, logger)
	}

	return ratelimit.New(rlCfg, client, logger.Named("ratelimit"))
}

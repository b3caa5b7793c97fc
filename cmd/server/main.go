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

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/hotseat/internal/auth"
	"github.com/DoyleJ11/hotseat/internal/config"
	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/DoyleJ11/hotseat/internal/httpapi"
	"github.com/DoyleJ11/hotseat/internal/hub"
	"github.com/DoyleJ11/hotseat/internal/logging"
	"github.com/DoyleJ11/hotseat/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The hub outlives the signal so sockets are drained before it stops.
	h := hub.NewHub(context.Background(), game.NewStore(cfg.Game, nil), log)

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:    h,
		Users:  store.NewUsers(db),
		Tokens: auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL),
		Google: auth.NewGoogleVerifier(auth.GoogleAudiences{
			Web:        cfg.Google.WebClientID,
			IOSDev:     cfg.Google.IOSClientIDDev,
			IOSProd:    cfg.Google.IOSClientIDProd,
			Android:    cfg.Google.AndroidClientID,
			Production: cfg.IsProduction(),
		}),
		Apple: auth.NewAppleVerifier(auth.AppleConfig{
			PrivateKeyPath: cfg.Apple.PrivateKeyPath,
			KeyID:          cfg.Apple.KeyID,
			TeamID:         cfg.Apple.TeamID,
			BundleID:       cfg.Apple.BundleID,
		}, nil),
		Log:          log,
		ClientOrigin: cfg.ClientOrigin,
		Dev:          cfg.Env == config.Development,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return multierr.Combine(
			srv.Shutdown(sctx),
			h.Send(sctx, hub.ShutdownHub{}),
			sqlDB.Close(),
		)
	})
	return g.Wait()
}

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/oybek/wellness/api"
	"github.com/oybek/wellness/auth"
	"github.com/oybek/wellness/config"
	"github.com/oybek/wellness/db"
	"github.com/oybek/wellness/lifecycle"
	"github.com/oybek/wellness/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log := logger.WithComponent("main")
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// run serves the API until ctx is cancelled or the listener fails. Storage
// and the identity janitor are released before it returns.
func run(ctx context.Context, cfg config.Config) error {
	log := logger.WithComponent("main")

	sessionStore, userStore, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("set up storage: %w", err)
	}
	defer closeStore()

	sessions := lifecycle.NewService(sessionStore, lifecycle.WithLogger(logger.WithComponent("lifecycle")))
	authSvc := auth.NewService(userStore, auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiration), logger.WithComponent("auth"))
	go authSvc.StartJanitor()
	defer authSvc.StopJanitor()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, err := api.NewServer(sessions, authSvc, api.Config{
		CORSOrigin:     cfg.CORSOrigin,
		AuthRateLimit:  cfg.AuthRateLimit,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger.WithComponent("api"),
		Registry:       reg,
	}).Handler()
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}

func openStores(ctx context.Context, cfg config.Config) (lifecycle.Store, auth.UserStore, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		return lifecycle.NewMemoryStore(), auth.NewMemoryUserStore(), func() {}, nil
	}

	mongoClient, err := db.Create(ctx, db.Config{Url: cfg.MongoURI, ConnTimeout: cfg.RequestTimeout})
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() { _ = mongoClient.Disconnect(context.Background()) }

	sessionStore := db.NewSessionStore(mongoClient, cfg.DatabaseName)
	userStore := db.NewUserStore(mongoClient, cfg.DatabaseName)
	if err := sessionStore.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return sessionStore, userStore, closeFn, nil
}

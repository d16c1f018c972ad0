package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"logistics-route-service/internal/adapters/events"
	"logistics-route-service/internal/adapters/gateway"
	"logistics-route-service/internal/adapters/repositories"
	"logistics-route-service/internal/api"
	"logistics-route-service/internal/clock"
	"logistics-route-service/internal/config"
	"logistics-route-service/internal/platform/logger"
	"logistics-route-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (store, gateways, events) behind ports and starts the HTTP server.
func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repositories.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	applied, err := store.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	zl.Info("schema ready", zap.String("driver", store.Driver), zap.Strings("applied", applied))

	svc := services.NewRouteService(
		store.Routes,
		gateway.NewFactory(cfg.Gateway, nil),
		events.NewLogPublisher(zl),
		clock.NewSystem(),
		zl.Named("routes"),
		services.RouteServiceConfig{
			DispatchMaxAttempts: cfg.Gateway.DispatchMaxAttempts,
			DispatchRetryDelay:  cfg.Gateway.DispatchRetryDelay,
		},
	)

	router := api.NewRouter(api.Dependencies{
		Config:  cfg,
		Service: svc,
		Store:   store.Routes,
		Log:     zl,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("version", cfg.App.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
	"github.com/goliatone/go-tenant-auth/database"
	"github.com/goliatone/go-tenant-auth/fixtures"
	"github.com/goliatone/go-tenant-auth/logging"
	"github.com/goliatone/go-tenant-auth/ratelimit"
	"github.com/goliatone/go-tenant-auth/server"
	"github.com/goliatone/go-tenant-auth/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenAndMigrate(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", "driver", cfg.Database.Driver)

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	if cfg.Seed.Enabled {
		report, err := fixtures.NewSeeder(repo).WithLogger(logger.Named("seed")).Run(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seed applied", "report", report.String())
	}

	tokens := auth.NewTokenService(
		[]byte(cfg.JWT.Secret),
		[]byte(cfg.JWT.RefreshSecret),
		auth.WithAccessTTL(cfg.JWT.ExpiresIn),
		auth.WithRefreshTTL(cfg.JWT.RefreshExpiresIn),
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithTokenLogger(logger.Named("tokens")),
	)
	logger.Info("tokens configured",
		"access_ttl", tokens.AccessTTL().String(),
		"refresh_ttl", tokens.RefreshTTL().String(),
	)

	throttle, closeThrottle, err := ratelimit.FromConfig(ctx, cfg.RateLimit.Login, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeThrottle()

	logos, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	deps := server.Wire(repo, tokens, server.WireOptions{
		Logger:      logger,
		Throttle:    throttle,
		Storage:     logos,
		PhoneRegion: cfg.Phone.DefaultRegion,
	})

	serverCfg := server.Config{
		Name:        cfg.App.Name,
		Version:     cfg.App.Version,
		Env:         cfg.App.Env,
		Development: cfg.App.IsDevelopment(),
		BodyLimit:   cfg.Server.BodyLimit,
		CORSOrigin:  cfg.Server.CORSOrigin,
		AccessLog:   true,
	}
	if cfg.Storage.Driver == config.StorageLocal {
		serverCfg.UploadsDir = cfg.Storage.LocalDir
		serverCfg.UploadsPrefix = cfg.Storage.PublicURL
	}

	srv := server.New(serverCfg, deps)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr(), "env", cfg.App.Env)
		errCh <- srv.Listen(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

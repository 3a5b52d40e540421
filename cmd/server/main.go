package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"betadmin/internal/config"
	"betadmin/internal/infra"
	"betadmin/internal/router"
	"betadmin/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async email delivery. Handlers are wired here so the pool reaches the
	// SMTP breaker without the services knowing about it.
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg, mailCB)
	dispatcher := worker.NewDispatcher(rdb)
	worker.StartWorkerPool(ctx, rdb, &worker.Handlers{Email: worker.NewEmailWorker(mailer)}, cfg.WorkerPoolSize)

	repos := router.NewRepositories(cfg, db, rdb)
	svcs := router.NewServices(cfg, db, rdb, repos, dispatcher)

	if err := svcs.Permissions.SeedCatalog(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed permission catalog")
	}
	if err := svcs.RoleDefaults.SeedIfEmpty(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed role defaults")
	}
	if cfg.SuperAdminUsername != "" && cfg.SuperAdminEmail != "" && cfg.SuperAdminPassword != "" {
		if err := svcs.Users.EnsureSuperAdmin(ctx, cfg.SuperAdminUsername, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap super admin")
		}
	}

	r := router.New(ctx, cfg, db, rdb, mailCB, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("betadmin backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}

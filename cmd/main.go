package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kkkkikiki/crowdfund/internal/config"
	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/logging"
	"github.com/kkkkikiki/crowdfund/internal/repository"
	"github.com/kkkkikiki/crowdfund/internal/seed"
	"github.com/kkkkikiki/crowdfund/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration from environment variables
	cfg, err := config.Load(ctx)
	if err != nil {
		bootLogger := logging.NewLogger(false, "info")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.NewLogger(cfg.App.IsDevelopment(), cfg.App.LogLevel)
	logger.Info().Str("environment", cfg.App.Environment).Msg("starting crowdfund ledger")

	// Open the flat-file storage
	db, err := database.NewDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing storage")
		}
	}()

	repo, err := repository.New(ctx, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load ledger")
	}

	pledgeService := service.NewPledgeService(repo, logger)

	if cfg.App.SeedDemo {
		if err := seed.NewSeeder(repo, pledgeService, time.Now, logger).Run(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	logger.Info().
		Int("campaigns", len(repo.ListCampaigns())).
		Int("pledges_success", pledgeService.CountSuccess()).
		Int("pledges_rejected", pledgeService.CountRejected()).
		Msg("ledger ready")
	for _, c := range repo.ListCampaigns() {
		logger.Debug().
			Str("campaign_id", c.ID).
			Str("raised", c.RaisedTotal.String()).
			Float64("progress", c.Progress()).
			Msg("campaign loaded")
	}
	for _, d := range repo.Verify() {
		logger.Warn().
			Str("campaign_id", d.CampaignID).
			Str("stored", d.Stored.String()).
			Str("pledged", d.Pledged.String()).
			Msg("raised total differs from pledge history")
	}

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddr(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(newRouter(db.Dir, repo), &http2.Server{}),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("serving health and metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("exited gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"blocksmith/internal/generate"
	"blocksmith/internal/http/handlers"
	"blocksmith/internal/http/httpapi"
	"blocksmith/internal/images"
	"blocksmith/internal/infra"
	"blocksmith/internal/jobs"
	"blocksmith/internal/openai"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set; generation requests will fail until configured")
	}

	client := openai.NewClient(openai.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.ProviderTimeout,
	})
	resolver := images.NewResolver(cfg.UploadBaseURL, cfg.UploadDir, logger)
	service := generate.NewService(cfg, client, resolver, logger)

	store := jobs.NewStore(cfg.JobTTL)
	runner := jobs.NewRunner(store, service.Generate, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runner.Start(ctx, cfg.JobWorkers)

	app := handlers.NewApp(cfg, service, runner, logger)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("model", cfg.Model).
			Str("api_mode", cfg.APIMode).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

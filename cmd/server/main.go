// @title           WhisprDraw Backend API
// @version         1.0.0
// @description     Backend for WhisprDraw: sketch projects, Gemini image generation and editing, project icons and saved image pairs on Supabase.

// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whisprdraw-backend/internal/config"
	"whisprdraw-backend/internal/database"
	"whisprdraw-backend/internal/fal"
	"whisprdraw-backend/internal/gemini"
	"whisprdraw-backend/internal/handlers"
	"whisprdraw-backend/internal/logging"
	"whisprdraw-backend/internal/router"
	"whisprdraw-backend/internal/services"
	"whisprdraw-backend/internal/supabase"
	"whisprdraw-backend/internal/tasks"
	"whisprdraw-backend/internal/topics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("production")
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Environment)
	ctx := logger.WithContext(context.Background())

	if applied, err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
		logger.Warn().Err(err).Msg("migration failed")
	} else if len(applied) > 0 {
		logger.Info().Strs("applied", applied).Msg("migrations completed")
	}

	// Supabase stores (PostgREST + Storage, per-request token)
	clients := supabase.NewClientFactory(cfg)
	projectStore := supabase.NewProjectStore(clients)
	pairStore := supabase.NewImagePairStore(clients)
	storage := supabase.NewStorageGateway(clients, cfg.SupabaseStorageBucket)

	generator, err := gemini.NewClient(ctx, gemini.Options{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}

	renderer := fal.NewClient(fal.Options{
		BaseURL: cfg.FalBaseURL,
		APIKey:  cfg.FalAPIKey,
		Model:   cfg.FalModel,
		Logger:  &logger,
	})
	if cfg.FalAPIKey == "" {
		logger.Warn().Msg("FAL_API_KEY not set, icon generation will fail")
	}
	logger.Info().
		Str("image_model", generator.Model()).
		Str("icon_model", renderer.Model()).
		Msg("model clients ready")

	summarizer := topics.NewSummarizer(projectStore, pairStore, topics.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Logger:  &logger,
	})

	queue, err := tasks.NewQueue(ctx, tasks.QueueConfig{
		RedisURL: cfg.RedisURL,
		Size:     cfg.TaskQueueSize,
		Workers:  cfg.TaskWorkers,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize task queue")
	}

	projectService := services.NewProjectService(projectStore, pairStore, renderer, summarizer)
	generationService := services.NewGenerationService(generator, renderer, storage, projectStore, pairStore, queue)
	queue.Start(generationService.HandleTask)

	engine := router.New(cfg, logger, router.Handlers{
		Projects:   handlers.NewProjectsHandler(projectService),
		ImagePairs: handlers.NewImagePairsHandler(projectService),
		Generate:   handlers.NewGenerateHandler(generationService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown http server")
	}
	if err := queue.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close task queue")
	}
	logger.Info().Msg("server stopped")
}

// File: cmd/worker/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"dreambees-video-pipeline/internal/config"
	"dreambees-video-pipeline/internal/domain/model"
	"dreambees-video-pipeline/internal/domain/ports/adapter"
	aiAdapters "dreambees-video-pipeline/internal/infra/adapters/ai"
	storageAdapters "dreambees-video-pipeline/internal/infra/adapters/storage"
	transcoderAdapters "dreambees-video-pipeline/internal/infra/adapters/transcoder"
	"dreambees-video-pipeline/internal/infra/logging"
	"dreambees-video-pipeline/internal/infra/metrics"
	red "dreambees-video-pipeline/internal/infra/redis"
	"dreambees-video-pipeline/internal/pipeline"
	"dreambees-video-pipeline/internal/transcode"
	"dreambees-video-pipeline/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	statusRepo := red.NewStatusRepo(redisClient)
	queue := red.NewQueue(redisClient)
	outputCache := red.NewOutputCache(redisClient)
	scriptCache := red.NewScriptCache(redisClient)

	// ---- Storage ----
	storage := storageAdapters.NewMemoryStorage(cfg.Storage.Bucket)

	// ---- AI adapters ----
	var (
		scripts     adapter.ScriptGenerator
		speech      adapter.SpeechSynthesizer
		transcriber adapter.Transcriber
	)
	if cfg.Runtime.Dev || cfg.AI.APIKey == "" {
		noop := aiAdapters.NewNoopAIAdapter()
		scripts, speech, transcriber = noop, noop, noop
		logger.Info().Msg("AI adapter: noop")
	} else {
		openai, err := aiAdapters.NewOpenAIAdapter(cfg.AI, storage, scriptCache)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		scripts, speech, transcriber = openai, openai, openai
		logger.Info().Str("base", cfg.AI.BaseURL).Str("script_model", cfg.AI.ScriptModel).
			Msg("AI adapter: openai")
	}

	// ---- Transcoding ----
	tc := transcoderAdapters.NewNoopTranscoder(storage)
	resolver := transcode.NewResolver(tc, storage, outputCache, cfg.Storage.Bucket, logger)
	urls := transcode.NewURLHandler(resolver, storage, cfg.Storage.CDNDomain,
		cfg.Transcode.OutputRetries, cfg.Transcode.OutputRetryDelay, cfg.Storage.SignedURLTTL, logger)
	manager := transcode.NewManager(tc, statusRepo, urls, cfg.Transcode.Role,
		cfg.Transcode.PollInterval, cfg.Transcode.MaxPollDuration, logger)

	// ---- Pipeline + consumers ----
	orchestrator := pipeline.NewOrchestrator(statusRepo, storage, scripts, speech, transcriber, manager, logger)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		loop := worker.NewLoop(queue, orchestrator, model.QueueVideoGeneration, cfg.Worker.IdleBackoff, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop.Run(ctx)
		}()
	}
	logger.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("video worker started")

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	wg.Wait()
	manager.Wait()
}

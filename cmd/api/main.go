package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rowanhq/leadflow/internal/api/router"
	appconfig "github.com/rowanhq/leadflow/internal/config"
	"github.com/rowanhq/leadflow/internal/crm"
	"github.com/rowanhq/leadflow/internal/dialogue"
	"github.com/rowanhq/leadflow/internal/http/handlers"
	"github.com/rowanhq/leadflow/internal/llm"
	"github.com/rowanhq/leadflow/internal/notify"
	"github.com/rowanhq/leadflow/internal/observability/metrics"
	"github.com/rowanhq/leadflow/internal/proposal"
	"github.com/rowanhq/leadflow/pkg/logging"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadflow API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	redisClient := newRedisClient(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The store is best effort; intake still works without it.
		logger.Warn("redis unreachable at startup, proposals will not persist", "addr", cfg.RedisAddr, "error", err)
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	var client llm.Client = gemini
	if cfg.BedrockModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config for bedrock fallback", "error", err)
			os.Exit(1)
		}
		bedrock := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		client = llm.NewFallbackClient(gemini, bedrock, logger.Logger)
		logger.Info("bedrock fallback enabled", "model", cfg.BedrockModelID)
	}

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(registry)
	client = llm.WithMetrics(client, apiMetrics)

	forwarder := crm.New(crm.Config{
		WebhookURL: cfg.CRMWebhookURL,
		Timeout:    cfg.CRMTimeout,
		Logger:     logger,
	})

	generator := proposal.NewGenerator(client, proposal.GeneratorConfig{
		MaxTokens: cfg.LLMMaxOutputTokens,
		Timeout:   cfg.LLMTimeout,
		Logger:    logger,
	})

	store := proposal.NewStore(redisClient, cfg.ProposalTTL)

	engine := dialogue.NewEngine(dialogue.EngineConfig{
		MaxQuestionTurns: cfg.DialogueMaxTurns,
		AckClient:        client,
		Logger:           logger,
	})

	var sender notify.EmailSender
	if s := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); s != nil {
		sender = s
	}
	notifier := notify.NewLeadNotifier(sender, cfg.NotifyEmail, cfg.PublicBaseURL, logger)

	intakeHandler := handlers.NewIntakeHandler(handlers.IntakeConfig{
		Forwarder:     forwarder,
		Generator:     generator,
		Store:         store,
		Notifier:      notifier,
		Metrics:       apiMetrics,
		Logger:        logger,
		CRMBestEffort: cfg.CRMBestEffort,
	})
	dialogueHandler := handlers.NewDialogueHandler(engine, apiMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intakeHandler,
		DialogueHandler:    dialogueHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: 5,
		RateLimitBurst:     20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

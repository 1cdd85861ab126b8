package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacesedan/oceanwatch/config"
	"github.com/spacesedan/oceanwatch/internal/alerts"
	"github.com/spacesedan/oceanwatch/internal/api"
	"github.com/spacesedan/oceanwatch/internal/clients"
	"github.com/spacesedan/oceanwatch/internal/logging"
	"github.com/spacesedan/oceanwatch/internal/monitoring"
	"github.com/spacesedan/oceanwatch/internal/nlp"
	"github.com/spacesedan/oceanwatch/internal/processing"
	"github.com/spacesedan/oceanwatch/internal/ratelimit"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	token := os.Getenv("TWITTER_BEARER_TOKEN")
	if token == "" {
		slog.Error("[Main] TWITTER_BEARER_TOKEN is required")
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	metrics := monitoring.NewMetrics()

	contextClassifier, cleanup, err := buildContextClassifier()
	if err != nil {
		slog.Error("[Main] Failed to initialize context classifier", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	classifier := nlp.NewHybridClassifier(
		contextClassifier,
		getEnvFloat("CONTEXT_THRESHOLD", nlp.DEFAULT_CONTEXT_THRESHOLD),
		getEnvInt("CLASSIFIER_CACHE_SIZE", nlp.DEFAULT_CACHE_SIZE),
		metrics,
	)

	limiter := ratelimit.NewLimiter(
		time.Duration(getEnvInt("RATE_LIMIT_INTERVAL_SECONDS", 60))*time.Second,
		clock,
	)

	twitter := clients.NewTwitterClient(token, clock, metrics)

	var publisher processing.AlertPublisher
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		p, err := alerts.NewPublisher(broker, getEnv("KAFKA_ALERTS_TOPIC", alerts.DEFAULT_ALERTS_TOPIC))
		if err != nil {
			slog.Error("[Main] Failed to initialize alerts publisher", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	} else {
		slog.Info("[Main] KAFKA_BROKER not set, alert publishing disabled")
	}

	pipeline := processing.NewPipeline(twitter, classifier, limiter, publisher, metrics, clock, processing.PipelineConfig{
		Window:     time.Duration(getEnvInt("TIME_WINDOW_HOURS", 2)) * time.Hour,
		ReplyLimit: getEnvInt("REPLY_LIMIT", processing.DEFAULT_REPLY_LIMIT),
	})

	server := api.NewServer(getEnv("HTTP_ADDR", ":8080"), pipeline, classifier)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] HTTP server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] HTTP server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("[Main] Shutdown complete")
}

// buildContextClassifier selects the stage-2 model provider. The in-process
// zero-shot pipeline is the default; OPENAI selects remote inference.
func buildContextClassifier() (nlp.ContextClassifier, func(), error) {
	labels := nlp.CandidateLabels()

	switch getEnv("CONTEXT_CLASSIFIER", "zeroshot") {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, func() {}, errors.New("OPENAI_API_KEY is required for the openai context classifier")
		}
		slog.Info("[Main] Using OpenAI context classifier")
		return nlp.NewOpenAIContextClassifier(apiKey, labels), func() {}, nil
	default:
		slog.Info("[Main] Using zero-shot context classifier")
		zs, err := nlp.NewZeroShotClassifier(labels)
		if err != nil {
			return nil, func() {}, err
		}
		return zs, zs.Close, nil
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
		slog.Warn("[Main] Ignoring invalid integer env value", slog.String("key", key))
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
			return parsed
		}
		slog.Warn("[Main] Ignoring invalid float env value", slog.String("key", key))
	}
	return defaultValue
}

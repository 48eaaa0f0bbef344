// Package main runs the standalone ingestion worker: it consumes transcript
// jobs from NATS and commits them to the vector store, transcript file, and
// timestamp locator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/VidraAI/vidra-mvp/engine/ingest"
	"github.com/VidraAI/vidra-mvp/engine/semantic"
	"github.com/VidraAI/vidra-mvp/engine/transcript"
	"github.com/VidraAI/vidra-mvp/pkg/fn"
	"github.com/VidraAI/vidra-mvp/pkg/ollama"
	"github.com/VidraAI/vidra-mvp/pkg/resilience"
)

type config struct {
	NATSURL        string
	OllamaURL      string
	EmbedModel     string
	EmbedDim       int
	VectorBackend  string
	QdrantURL      string
	Collection     string
	TranscriptPath string
}

func loadConfig() config {
	return config{
		NATSURL:        envOr("NATS_URL", nats.DefaultURL),
		OllamaURL:      envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:     envOr("EMBED_MODEL", "all-minilm"),
		EmbedDim:       envIntOr("EMBED_DIM", semantic.DefaultDim),
		VectorBackend:  envOr("VECTOR_BACKEND", "memory"),
		QdrantURL:      envOr("QDRANT_URL", "localhost:6334"),
		Collection:     envOr("QDRANT_COLLECTION", "vidra"),
		TranscriptPath: envOr("TRANSCRIPT_PATH", "data/transcript.json"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// NATS may come up after us; retry the connect with backoff.
	nc, err := fn.Retry(ctx, fn.DefaultRetry, func(_ context.Context) fn.Result[*nats.Conn] {
		return fn.FromPair(nats.Connect(cfg.NATSURL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		))
	}).Unwrap()
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	embedClient := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)

	var vectors ingest.VectorWriter
	switch cfg.VectorBackend {
	case "qdrant":
		remote, err := semantic.NewRemote(cfg.QdrantURL, cfg.Collection, embedClient)
		if err != nil {
			return fmt.Errorf("qdrant connect: %w", err)
		}
		defer remote.Close()
		if err := remote.EnsureCollection(ctx, cfg.EmbedDim); err != nil {
			return fmt.Errorf("qdrant collection: %w", err)
		}
		vectors = remote
	default:
		vectors = semantic.NewStore(embedClient, cfg.EmbedDim)
	}

	tr, err := transcript.Load(cfg.TranscriptPath)
	if err != nil {
		return err
	}
	locator := transcript.NewLocator(tr.Segments)

	sub, err := ingest.StartConsumer(nc, ingest.Deps{
		Vectors:        vectors,
		Locator:        locator,
		TranscriptPath: cfg.TranscriptPath,
		EmbedLimiter:   resilience.NewLimiter(resilience.LimiterOpts{Rate: 0.2, Burst: 1}),
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	logger.Info("ingest worker running", "subject", ingest.Subject, "backend", cfg.VectorBackend)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

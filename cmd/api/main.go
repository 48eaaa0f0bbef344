// Package main implements the Vidra API server: it processes YouTube videos
// into a queryable transcript index and answers questions about the current
// video with grounded, timestamped responses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VidraAI/vidra-mvp/engine/ingest"
	"github.com/VidraAI/vidra-mvp/engine/rag"
	"github.com/VidraAI/vidra-mvp/engine/scraper"
	"github.com/VidraAI/vidra-mvp/engine/semantic"
	"github.com/VidraAI/vidra-mvp/engine/transcript"
	"github.com/VidraAI/vidra-mvp/pkg/groq"
	"github.com/VidraAI/vidra-mvp/pkg/metrics"
	"github.com/VidraAI/vidra-mvp/pkg/mid"
	"github.com/VidraAI/vidra-mvp/pkg/ollama"
	"github.com/VidraAI/vidra-mvp/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port           string
	OllamaURL      string
	EmbedModel     string
	EmbedDim       int
	GroqURL        string
	GroqAPIKey     string
	GroqModel      string
	VectorBackend  string
	QdrantURL      string
	Collection     string
	TranscriptPath string
	ChunksPath     string
	CORSOrigin     string
}

func loadConfig() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		OllamaURL:      envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:     envOr("EMBED_MODEL", "all-minilm"),
		EmbedDim:       envIntOr("EMBED_DIM", semantic.DefaultDim),
		GroqURL:        envOr("GROQ_URL", ""),
		GroqAPIKey:     envOr("GROQ_API_KEY", ""),
		GroqModel:      envOr("GROQ_MODEL", ""),
		VectorBackend:  envOr("VECTOR_BACKEND", "memory"),
		QdrantURL:      envOr("QDRANT_URL", "localhost:6334"),
		Collection:     envOr("QDRANT_COLLECTION", "vidra"),
		TranscriptPath: envOr("TRANSCRIPT_PATH", "data/transcript.json"),
		ChunksPath:     envOr("CHUNKS_PATH", "data/chunks.json"),
		CORSOrigin:     envOr("CORS_ORIGIN", "http://localhost:3000"),
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

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

// vectorStore is the Add/Search/Replace surface shared by both backends.
type vectorStore interface {
	rag.Searcher
	ingest.VectorWriter
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedClient := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)

	var store vectorStore
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
		store = remote
	default:
		store = semantic.NewStore(embedClient, cfg.EmbedDim)
	}

	// Rehydrate the timestamp locator from the last persisted transcript.
	tr, err := transcript.Load(cfg.TranscriptPath)
	if err != nil {
		return err
	}
	locator := transcript.NewLocator(tr.Segments)
	if len(tr.Segments) > 0 {
		logger.Info("transcript rehydrated", "video_id", tr.VideoID, "segments", len(tr.Segments))
	}

	completer := &guardedCompleter{
		inner:   groq.New(cfg.GroqURL, cfg.GroqAPIKey, cfg.GroqModel),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}

	ragSvc := rag.New(store, completer, locator, rag.DefaultOptions(), logger)

	pipeline := ingest.NewPipeline(ingest.Deps{
		Vectors:        store,
		Locator:        locator,
		TranscriptPath: cfg.TranscriptPath,
		EmbedLimiter:   resilience.NewLimiter(resilience.LimiterOpts{Rate: 0.2, Burst: 1}),
		Logger:         logger,
	})

	reg := metrics.New()
	fetcher := scraper.NewFetcher(nil)
	srvState := &server{
		cfg:      cfg,
		logger:   logger,
		rag:      ragSvc,
		pipeline: pipeline,
		fetcher:  fetcher,
		queries:  reg.Counter("queries_total", "Questions answered."),
		ingests:  reg.Counter("ingests_total", "Videos processed."),
		latency:  reg.Histogram("answer_seconds", "End-to-end answer latency.", nil),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/process", srvState.handleProcess)
	mux.HandleFunc("POST /api/chat", srvState.handleChat)
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.Metrics(reg),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("vidra-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // processing a long video is slow
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "backend", cfg.VectorBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// guardedCompleter runs completions through a circuit breaker so a dead
// upstream fails fast instead of stacking timeouts.
type guardedCompleter struct {
	inner   rag.Completer
	breaker *resilience.Breaker
}

func (g *guardedCompleter) Complete(ctx context.Context, prompt string, s groq.Sampling) (string, error) {
	var out string
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.inner.Complete(ctx, prompt, s)
		return err
	})
	return out, err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

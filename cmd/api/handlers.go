package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/VidraAI/vidra-mvp/engine/domain"
	"github.com/VidraAI/vidra-mvp/engine/ingest"
	"github.com/VidraAI/vidra-mvp/engine/rag"
	"github.com/VidraAI/vidra-mvp/engine/scraper"
	"github.com/VidraAI/vidra-mvp/engine/transcript"
	"github.com/VidraAI/vidra-mvp/pkg/fn"
	"github.com/VidraAI/vidra-mvp/pkg/metrics"
)

type server struct {
	cfg      Config
	logger   *slog.Logger
	rag      *rag.Service
	pipeline fn.Stage[domain.TranscriptJob, string]
	fetcher  *scraper.Fetcher

	queries *metrics.Counter
	ingests *metrics.Counter
	latency *metrics.Histogram
}

type processRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

type processResponse struct {
	Message string             `json:"message"`
	VideoID string             `json:"video_id"`
	Chunks  []domain.ChunkMeta `json:"chunks"`
}

// handleProcess fetches a video's captions, rebuilds the engine state around
// it, and enriches every retrieval chunk with a summary and source citation.
func (s *server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	videoID, err := scraper.ExtractVideoID(req.YouTubeURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	segments, err := s.fetcher.FetchTranscript(ctx, videoID)
	if err != nil {
		s.logger.Error("transcript fetch failed", "video_id", videoID, "err", err)
		writeError(w, http.StatusBadGateway, "could not fetch transcript")
		return
	}

	job := domain.TranscriptJob{
		VideoID:    videoID,
		Source:     "youtube",
		Segments:   segments,
		ReceivedAt: time.Now().UTC(),
	}

	if _, err := s.pipeline(ctx, job).Unwrap(); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.ingests.Inc()

	chunks := ingest.ChunkSegments(segments)
	metas := make([]domain.ChunkMeta, 0, len(chunks))
	for _, c := range chunks {
		summary, source, err := s.rag.Enrich(ctx, c.Text)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		metas = append(metas, domain.ChunkMeta{
			Start:   c.Start,
			End:     c.End,
			Text:    c.Text,
			Summary: summary,
			Source:  source,
		})
	}

	if err := transcript.SaveChunks(s.cfg.ChunksPath, metas); err != nil {
		s.logger.Error("chunk metadata persist failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not persist chunks")
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Message: "Processing complete",
		VideoID: videoID,
		Chunks:  metas,
	})
}

type chatRequest struct {
	Query string `json:"query"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	started := time.Now()
	ans, err := s.rag.Answer(r.Context(), req.Query)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.queries.Inc()
	s.latency.Since(started)

	writeJSON(w, http.StatusOK, ans)
}

// writeDomainError maps pipeline errors onto HTTP statuses: caller mistakes
// are 400s, upstream trouble is a 502, everything else a 500.
func (s *server) writeDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case domain.IsUpstream(err):
		s.logger.Error("upstream failure", "err", err)
		writeError(w, http.StatusBadGateway, "upstream service unavailable")
	case errors.Is(err, domain.ErrEmptyResponse):
		s.logger.Error("empty completion", "err", err)
		writeError(w, http.StatusBadGateway, "upstream returned no content")
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

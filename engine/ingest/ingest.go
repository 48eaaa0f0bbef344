// Package ingest turns a transcript job into queryable engine state: it
// validates the job, groups caption segments into retrieval chunks, writes
// the chunks to the vector store, persists the transcript, and swaps the
// timestamp locator to the new video. Callers must let one ingestion finish
// before accepting queries; the vector store swap is the commit point.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VidraAI/vidra-mvp/engine/domain"
	"github.com/VidraAI/vidra-mvp/engine/transcript"
	"github.com/VidraAI/vidra-mvp/pkg/fn"
	"github.com/VidraAI/vidra-mvp/pkg/resilience"
)

// VectorWriter replaces a video's chunks in the vector store.
type VectorWriter interface {
	Replace(ctx context.Context, videoID string, texts []string) error
}

// Deps holds the external dependencies for the ingestion pipeline.
type Deps struct {
	Vectors        VectorWriter
	Locator        *transcript.Locator
	TranscriptPath string
	// EmbedLimiter paces vector writes; embedding is the expensive part
	// of a Replace. Optional.
	EmbedLimiter *resilience.Limiter
	Logger       *slog.Logger
}

// ChunkedJob is a validated job with its retrieval chunks attached.
type ChunkedJob struct {
	Job    domain.TranscriptJob
	Chunks []domain.Segment
}

// Validate rejects malformed jobs before any state is touched.
var Validate fn.Stage[domain.TranscriptJob, domain.TranscriptJob] = func(_ context.Context, job domain.TranscriptJob) fn.Result[domain.TranscriptJob] {
	if err := domain.ValidateJob(job); err != nil {
		return fn.Err[domain.TranscriptJob](err)
	}
	return fn.Ok(job)
}

// Chunk groups the job's segments into retrieval chunks.
var Chunk fn.Stage[domain.TranscriptJob, ChunkedJob] = func(_ context.Context, job domain.TranscriptJob) fn.Result[ChunkedJob] {
	return fn.Ok(ChunkedJob{Job: job, Chunks: ChunkSegments(job.Segments)})
}

// NewStore creates the commit stage: vector store swap, transcript persist,
// locator swap — in that order, so a failed vector write leaves the previous
// video fully queryable.
func NewStore(deps Deps) fn.Stage[ChunkedJob, string] {
	return func(ctx context.Context, cj ChunkedJob) fn.Result[string] {
		if deps.EmbedLimiter != nil {
			if err := deps.EmbedLimiter.Wait(ctx); err != nil {
				return fn.Err[string](err)
			}
		}

		texts := make([]string, len(cj.Chunks))
		for i, c := range cj.Chunks {
			texts[i] = c.Text
		}
		if err := deps.Vectors.Replace(ctx, cj.Job.VideoID, texts); err != nil {
			return fn.Err[string](fmt.Errorf("ingest: vector replace: %w", err))
		}

		if deps.TranscriptPath != "" {
			tr := domain.Transcript{VideoID: cj.Job.VideoID, Segments: cj.Job.Segments}
			if err := transcript.Save(deps.TranscriptPath, tr); err != nil {
				return fn.Err[string](fmt.Errorf("ingest: persist transcript: %w", err))
			}
		}

		if deps.Locator != nil {
			deps.Locator.Replace(cj.Job.Segments)
		}
		return fn.Ok(cj.Job.VideoID)
	}
}

// NewPipeline wires Validate, Chunk, and Store with tracing.
func NewPipeline(deps Deps) fn.Stage[domain.TranscriptJob, string] {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	logged := fn.TapStage(func(_ context.Context, job domain.TranscriptJob) {
		log.Info("ingest start", "video_id", job.VideoID, "segments", len(job.Segments))
	})

	validated := fn.Then(logged, fn.Traced("ingest.validate", Validate))
	chunked := fn.Then(validated, fn.Traced("ingest.chunk", Chunk))
	return fn.Then(chunked, fn.Traced("ingest.store", NewStore(deps)))
}

// Package rag orchestrates the retrieval-augmented answering pipeline. It
// retrieves the transcript chunks nearest a question, builds a grounded
// prompt, calls the completion service, post-processes the reply into a
// spoken answer, summary and source citation, and attaches the timestamp
// range of the best-matching transcript segment.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/VidraAI/vidra-mvp/engine/domain"
	"github.com/VidraAI/vidra-mvp/engine/semantic"
	"github.com/VidraAI/vidra-mvp/pkg/groq"
)

// Searcher abstracts vector retrieval over the current transcript.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]semantic.Hit, error)
}

// Completer abstracts the chat completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string, s groq.Sampling) (string, error)
}

// TimestampFinder locates the transcript time range for a query.
type TimestampFinder interface {
	FindTimestamps(query string) (start, end float64)
}

// Canned values returned when retrieval finds nothing. The completion
// service is not called in that case.
const (
	NoInfoResponse = "I'm sorry, I couldn't find relevant information in the provided document."
	NoInfoSummary  = "No relevant information found."
	NoSourceFound  = "No relevant source found."
)

// Sampling is fixed per call site, not user-configurable.
var (
	answerSampling  = groq.Sampling{Temperature: 0.6, MaxTokens: 1024, TopP: 0.9}
	summarySampling = groq.Sampling{Temperature: 0.6, MaxTokens: 500, TopP: 0.9}
)

// summaryPrefixLimit bounds how much of the answer is sent back for
// summarisation.
const summaryPrefixLimit = 2000

// Options configures the pipeline.
type Options struct {
	TopK int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{TopK: 5}
}

// Service runs the question-answering pipeline.
type Service struct {
	search   Searcher
	complete Completer
	locator  TimestampFinder
	opts     Options
	logger   *slog.Logger
}

// New creates a Service.
func New(search Searcher, complete Completer, locator TimestampFinder, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	return &Service{
		search:   search,
		complete: complete,
		locator:  locator,
		opts:     opts,
		logger:   logger,
	}
}

// Answer runs the full pipeline for one question. The timestamp lookup is
// independent of the answer path and runs even when retrieval is empty.
func (s *Service) Answer(ctx context.Context, query string) (domain.Answer, error) {
	s.logger.Info("rag query start", "query_len", len(query))

	res, err := s.respond(ctx, query)
	if err != nil {
		return domain.Answer{}, err
	}

	start, end := s.locator.FindTimestamps(query)
	res.Start = start
	res.End = end
	return res, nil
}

// Enrich produces the summary and source for one transcript chunk during
// processing. It runs the same retrieve-and-complete path with the chunk
// text standing in as the query.
func (s *Service) Enrich(ctx context.Context, chunkText string) (summary, source string, err error) {
	res, err := s.respond(ctx, chunkText)
	if err != nil {
		return "", "", err
	}
	return res.Summary, res.Source, nil
}

// respond is the answer path: retrieve, prompt, complete, post-process.
func (s *Service) respond(ctx context.Context, query string) (domain.Answer, error) {
	hits, err := s.search.Search(ctx, query, s.opts.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("rag: search: %w", err)
	}
	s.logger.Info("rag retrieval done", "hits", len(hits))

	if len(hits) == 0 {
		// Designed fallback, not an error: skip the completion service
		// entirely and hand back the canned object.
		return domain.Answer{
			Response: NoInfoResponse,
			Summary:  NoInfoSummary,
			Source:   NoSourceFound,
		}, nil
	}

	retrieved := make([]string, len(hits))
	for i, h := range hits {
		retrieved[i] = h.Text
	}

	raw, err := s.complete.Complete(ctx, buildPrompt(retrieved, query), answerSampling)
	if err != nil {
		return domain.Answer{}, domain.NewUpstreamError("complete", err)
	}
	if strings.TrimSpace(raw) == "" {
		return domain.Answer{}, domain.ErrEmptyResponse
	}

	// Source extraction reads the raw text: URLs must still be present.
	source := ExtractSource(raw)

	summary, err := s.summarize(ctx, raw)
	if err != nil {
		return domain.Answer{}, err
	}

	// Plain formatting applies only to the user-facing answer, never to
	// the text fed into summarisation or source extraction.
	return domain.Answer{
		Response: FormatPlain(raw),
		Summary:  summary,
		Source:   source,
	}, nil
}

// summarize issues the second, independent completion over a bounded prefix
// of the raw answer.
func (s *Service) summarize(ctx context.Context, raw string) (string, error) {
	prefix := raw
	if len(prefix) > summaryPrefixLimit {
		cut := summaryPrefixLimit
		// Back off to a rune boundary so the prompt never carries a split
		// multibyte character.
		for cut > 0 && !utf8.RuneStart(prefix[cut]) {
			cut--
		}
		prefix = prefix[:cut]
	}

	out, err := s.complete.Complete(ctx, buildSummaryPrompt(prefix), summarySampling)
	if err != nil {
		return "", domain.NewUpstreamError("summarize", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", domain.ErrEmptyResponse
	}
	return CleanSummary(out), nil
}

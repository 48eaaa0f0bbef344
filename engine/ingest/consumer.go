package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/VidraAI/vidra-mvp/engine/domain"
	"github.com/VidraAI/vidra-mvp/pkg/natsutil"
)

const (
	// Subject is the NATS subject for incoming transcript jobs.
	Subject = "engine.transcripts"
	// DLQSubject receives jobs that keep failing.
	DLQSubject = "engine.transcripts.dlq"
	// MaxRetries before a job is sent to the DLQ.
	MaxRetries = 3

	retryHeader = "X-Retry-Count"
)

// dlqMessage is published to the DLQ on repeated failure.
type dlqMessage struct {
	Job     domain.TranscriptJob `json:"job"`
	Error   string               `json:"error"`
	Retries int                  `json:"retries"`
}

// StartConsumer subscribes to transcript jobs and runs them through the
// ingestion pipeline with retry and DLQ handling. Validation failures go
// straight to the DLQ: a malformed job never succeeds on retry.
func StartConsumer(nc *nats.Conn, deps Deps) (*nats.Subscription, error) {
	pipeline := NewPipeline(deps)
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return nc.Subscribe(Subject, func(msg *nats.Msg) {
		var job domain.TranscriptJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			log.Error("ingest: unmarshal failed", "error", err)
			return
		}

		retries := 0
		if msg.Header != nil {
			if v := msg.Header.Get(retryHeader); v != "" {
				fmt.Sscanf(v, "%d", &retries)
			}
		}

		result := pipeline(context.Background(), job)
		if result.IsOk() {
			videoID, _ := result.Unwrap()
			log.Info("ingest: success", "video_id", videoID)
			return
		}

		_, pipeErr := result.Unwrap()
		retries++
		log.Error("ingest: pipeline failed",
			"error", pipeErr,
			"video_id", job.VideoID,
			"retry", retries,
		)

		var ve *domain.ValidationError
		permanent := errors.As(pipeErr, &ve)

		if permanent || retries >= MaxRetries {
			dlq := dlqMessage{Job: job, Error: pipeErr.Error(), Retries: retries}
			if err := natsutil.Publish(context.Background(), nc, DLQSubject, dlq); err != nil {
				log.Error("ingest: DLQ publish failed", "error", err)
			}
			return
		}

		retryMsg := nats.NewMsg(Subject)
		retryMsg.Data = msg.Data
		retryMsg.Header = nats.Header{}
		retryMsg.Header.Set(retryHeader, fmt.Sprintf("%d", retries))
		if err := nc.PublishMsg(retryMsg); err != nil {
			log.Error("ingest: retry publish failed", "error", err)
		}
	})
}

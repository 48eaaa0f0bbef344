// Package domain defines core types, validation, and the error taxonomy for
// the Vidra engine. It acts as the validation gate at pipeline entry points.
package domain

import "time"

// Segment is a contiguous span of transcribed speech. Segments are immutable
// once created; their order is the chronological order in the source media.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the segment in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Transcript is the ordered segment list for one processed video. It is the
// sole durable artifact the engine depends on across restarts.
type Transcript struct {
	VideoID  string    `json:"video_id,omitempty"`
	Segments []Segment `json:"segments"`
}

// TranscriptJob is an ingestion request, either posted to the API or
// published on NATS for the ingest worker.
type TranscriptJob struct {
	VideoID    string    `json:"video_id"`
	Source     string    `json:"source"`
	Segments   []Segment `json:"segments"`
	ReceivedAt time.Time `json:"received_at"`
}

// ChunkMeta is the per-chunk enrichment produced during processing: the
// chunk text plus the model-generated summary and source citation.
type ChunkMeta struct {
	Start   float64 `json:"start_time"`
	End     float64 `json:"end_time"`
	Text    string  `json:"text"`
	Summary string  `json:"summary"`
	Source  string  `json:"source"`
}

// Answer is the full result of one question against the engine.
type Answer struct {
	Response string  `json:"response"`
	Summary  string  `json:"summary"`
	Source   string  `json:"source"`
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`
}

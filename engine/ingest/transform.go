package ingest

import (
	"strings"

	"github.com/VidraAI/vidra-mvp/engine/domain"
)

// MaxChunkDuration caps how much speech one retrieval chunk covers, in
// seconds. Short chunks keep retrieval precise and timestamp hints tight.
const MaxChunkDuration = 15.0

// ChunkSegments merges consecutive caption segments into retrieval chunks no
// longer than MaxChunkDuration. A single segment that already exceeds the
// cap becomes its own chunk; its text is never split.
func ChunkSegments(segments []domain.Segment) []domain.Segment {
	var chunks []domain.Segment
	var cur *domain.Segment

	for _, seg := range segments {
		if cur == nil {
			s := seg
			cur = &s
			continue
		}
		if seg.End-cur.Start <= MaxChunkDuration {
			cur.Text = joinText(cur.Text, seg.Text)
			cur.End = seg.End
			continue
		}
		chunks = append(chunks, *cur)
		s := seg
		cur = &s
	}
	if cur != nil {
		chunks = append(chunks, *cur)
	}
	return chunks
}

func joinText(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

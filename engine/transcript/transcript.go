// Package transcript holds the verbatim timed transcript of the current
// video and answers "where in the video was this said" via lexical overlap.
// The heuristic is intentionally crude: segments are short and topically
// coherent, and a wrong hit only misplaces a UI timestamp hint.
package transcript

import (
	"strings"
	"sync"

	"github.com/VidraAI/vidra-mvp/engine/domain"
)

// Locator finds the transcript segment lexically closest to a query.
// Segments are read-only between Replace calls.
type Locator struct {
	mu       sync.RWMutex
	segments []domain.Segment
}

// NewLocator creates a Locator over the given segments (may be nil).
func NewLocator(segments []domain.Segment) *Locator {
	return &Locator{segments: segments}
}

// Replace swaps in the transcript of a newly ingested video.
func (l *Locator) Replace(segments []domain.Segment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.segments = segments
}

// Segments returns the current transcript.
func (l *Locator) Segments() []domain.Segment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.segments
}

// FindTimestamps returns the (start, end) of the segment whose lowercased
// token set overlaps the query's the most. Only a strictly higher overlap
// replaces the current best, so the first of equally scored segments wins.
// No transcript, or zero overlap everywhere, yields (0, 0).
func (l *Locator) FindTimestamps(query string) (start, end float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	queryTokens := tokenSet(query)
	var best *domain.Segment
	highest := 0

	for i := range l.segments {
		overlap := overlapCount(queryTokens, l.segments[i].Text)
		if overlap > highest {
			highest = overlap
			best = &l.segments[i]
		}
	}

	if best == nil {
		return 0.0, 0.0
	}
	return best.Start, best.End
}

// tokenSet lowercases and whitespace-splits text into a set.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = true
	}
	return set
}

// overlapCount is the size of the intersection of the query token set and
// the segment's token set.
func overlapCount(queryTokens map[string]bool, segText string) int {
	n := 0
	for tok := range tokenSet(segText) {
		if queryTokens[tok] {
			n++
		}
	}
	return n
}

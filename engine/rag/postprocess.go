package rag

import (
	"regexp"
	"strings"
)

var (
	// sourceURL matches HTTP(S) URL tokens bounded by whitespace or parens.
	sourceURL = regexp.MustCompile(`https?://[^\s()]+`)
	// anyURL is the looser match used when scrubbing URLs from plain text.
	anyURL = regexp.MustCompile(`https?://[^\s]+`)
	// markers are markdown emphasis/heading/bullet characters.
	markers = regexp.MustCompile(`[*_#>-]`)
	// newlineRuns collapses one or more newlines.
	newlineRuns = regexp.MustCompile(`\n+`)
	// thinkBlocks strips paired reasoning annotations some models emit.
	thinkBlocks = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// ExtractSource returns the first well-formed URL in text, with surrounding
// parentheses trimmed, or the NoSourceFound sentinel when there is none.
func ExtractSource(text string) string {
	if url := sourceURL.FindString(text); url != "" {
		return strings.Trim(url, "()")
	}
	return NoSourceFound
}

// CleanSummary removes residual thinking blocks and trims whitespace.
func CleanSummary(summary string) string {
	return strings.TrimSpace(thinkBlocks.ReplaceAllString(summary, ""))
}

// FormatPlain reduces a markdown-ish completion to a single plain paragraph
// suitable for speaking aloud: markers dropped, newline runs collapsed to
// spaces, URLs removed, edges trimmed.
func FormatPlain(text string) string {
	text = markers.ReplaceAllString(text, "")
	text = strings.TrimSpace(newlineRuns.ReplaceAllString(text, " "))
	text = anyURL.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Package scraper fetches timed YouTube captions. It is the engine's
// transcription source: each caption paragraph becomes a timestamped
// transcript segment.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/VidraAI/vidra-mvp/engine/domain"
)

const innertubeUA = "com.google.android.youtube/19.09.37 (Linux; U; Android 11) gzip"

var bracketNoise = regexp.MustCompile(`\[(?:Music|Applause|Laughter|Cheering|Inaudible)\]`)
var multiSpace = regexp.MustCompile(`\s+`)

// videoIDPatterns match the usual YouTube URL shapes.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/embed/|/shorts/|youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL, or
// accepts a bare ID.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("scraper: no video id in %q", raw)
}

// Fetcher retrieves caption tracks via the YouTube innertube API, rate
// limited so bulk processing stays polite.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher. A nil client falls back to a 30s-timeout
// default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// captionTrack from the innertube player response.
type captionTrack struct {
	BaseURL string `json:"baseUrl"`
	Lang    string `json:"languageCode"`
	Kind    string `json:"kind"`
}

// FetchTranscript returns the video's caption paragraphs as timed segments,
// preferring English manual captions, then English ASR, then anything.
func (f *Fetcher) FetchTranscript(ctx context.Context, videoID string) ([]domain.Segment, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tracks, err := f.fetchCaptionTracks(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("scraper: no transcript for video %s: %w", videoID, err)
	}

	var urls []string
	for _, t := range tracks {
		if t.Lang == "en" && t.Kind != "asr" {
			urls = append([]string{t.BaseURL + "&fmt=srv3"}, urls...)
		} else if t.Lang == "en" {
			urls = append(urls, t.BaseURL+"&fmt=srv3")
		}
	}
	if len(urls) == 0 {
		for _, t := range tracks {
			urls = append(urls, t.BaseURL+"&fmt=srv3")
		}
	}

	for _, u := range urls {
		segs, err := f.fetchSegmentsFromURL(ctx, u)
		if err == nil && len(segs) > 0 {
			return segs, nil
		}
	}
	return nil, fmt.Errorf("scraper: no usable caption track for video %s", videoID)
}

// fetchCaptionTracks asks the innertube player endpoint (ANDROID client) for
// caption track URLs.
func (f *Fetcher) fetchCaptionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	payload := map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":        "ANDROID",
				"clientVersion":     "19.09.37",
				"androidSdkVersion": 30,
				"hl":                "en",
				"gl":                "US",
			},
		},
		"videoId":        videoID,
		"contentCheckOk": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://www.youtube.com/youtubei/v1/player?prettyPrint=false",
		bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", innertubeUA)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Captions struct {
			PlayerCaptionsTracklistRenderer struct {
				CaptionTracks []captionTrack `json:"captionTracks"`
			} `json:"playerCaptionsTracklistRenderer"`
		} `json:"captions"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	tracks := result.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no caption tracks in player response")
	}
	return tracks, nil
}

func (f *Fetcher) fetchSegmentsFromURL(ctx context.Context, u string) ([]domain.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", innertubeUA)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK || len(body) < 50 {
		return nil, fmt.Errorf("bad response: status=%d len=%d", resp.StatusCode, len(body))
	}
	return ParseTimedText(body)
}

// timedText is the srv3 transcript XML (<timedtext><body><p t="" d="">).
type timedText struct {
	XMLName xml.Name `xml:"timedtext"`
	Body    ttBody   `xml:"body"`
}

type ttBody struct {
	Paragraphs []ttParagraph `xml:"p"`
}

type ttParagraph struct {
	Start int    `xml:"t,attr"` // milliseconds
	Dur   int    `xml:"d,attr"` // milliseconds
	Text  string `xml:",chardata"`
}

// legacyTimedText is the older format (<transcript><text start="" dur="">),
// with seconds as decimal strings.
type legacyTimedText struct {
	XMLName xml.Name      `xml:"transcript"`
	Texts   []legacyEntry `xml:"text"`
}

type legacyEntry struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// ParseTimedText decodes either caption XML format into timed segments.
// Entries that are pure noise (e.g. "[Music]") clean down to nothing and are
// dropped.
func ParseTimedText(body []byte) ([]domain.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err == nil && len(tt.Body.Paragraphs) > 0 {
		var segs []domain.Segment
		for _, p := range tt.Body.Paragraphs {
			text := CleanCaption(p.Text)
			if text == "" {
				continue
			}
			start := float64(p.Start) / 1000
			segs = append(segs, domain.Segment{
				Text:  text,
				Start: start,
				End:   start + float64(p.Dur)/1000,
			})
		}
		return segs, nil
	}

	var legacy legacyTimedText
	if err := xml.Unmarshal(body, &legacy); err == nil && len(legacy.Texts) > 0 {
		var segs []domain.Segment
		for _, e := range legacy.Texts {
			text := CleanCaption(e.Text)
			if text == "" {
				continue
			}
			start, _ := strconv.ParseFloat(e.Start, 64)
			dur, _ := strconv.ParseFloat(e.Dur, 64)
			segs = append(segs, domain.Segment{Text: text, Start: start, End: start + dur})
		}
		return segs, nil
	}

	return nil, fmt.Errorf("scraper: no text entries in transcript")
}

// CleanCaption removes bracket noise, unescapes common entities, collapses
// whitespace, and trims.
func CleanCaption(text string) string {
	text = bracketNoise.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

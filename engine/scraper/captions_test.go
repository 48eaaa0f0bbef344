package scraper

import (
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://example.com/video", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ExtractVideoID(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ExtractVideoID(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ExtractVideoID(%q) = %q, want error", tt.in, got)
		}
	}
}

func TestParseTimedText_Srv3(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<timedtext format="3">
  <body>
    <p t="0" d="4000">The sun is a star</p>
    <p t="4000" d="4000">[Music]</p>
    <p t="8000" d="2500">Stars   emit&#39;s light</p>
  </body>
</timedtext>`)

	segs, err := ParseTimedText(body)
	if err != nil {
		t.Fatalf("ParseTimedText: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2 (noise dropped)", len(segs))
	}
	if segs[0].Text != "The sun is a star" || segs[0].Start != 0 || segs[0].End != 4 {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Text != "Stars emit's light" || segs[1].Start != 8 || segs[1].End != 10.5 {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestParseTimedText_Legacy(t *testing.T) {
	body := []byte(`<transcript>
  <text start="1.5" dur="3.25">hello &amp; welcome</text>
  <text start="4.75" dur="2">second line</text>
</transcript>`)

	segs, err := ParseTimedText(body)
	if err != nil {
		t.Fatalf("ParseTimedText: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Text != "hello & welcome" || segs[0].Start != 1.5 || segs[0].End != 4.75 {
		t.Errorf("segment 0 = %+v", segs[0])
	}
}

func TestParseTimedText_Garbage(t *testing.T) {
	if _, err := ParseTimedText([]byte("<html>not captions</html>")); err == nil {
		t.Error("expected error for non-caption XML")
	}
}

func TestCleanCaption(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[Music] hello   world", "hello world"},
		{"it&#39;s &quot;fine&quot;", `it's "fine"`},
		{"a &lt;b&gt; c &amp; d", "a <b> c & d"},
		{"  [Applause]  ", ""},
	}
	for _, tt := range tests {
		if got := CleanCaption(tt.in); got != tt.want {
			t.Errorf("CleanCaption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("queries_total", "Total queries answered.")
	c.Inc()
	c.Add(2)
	if c.Value() != 3 {
		t.Errorf("counter = %d, want 3", c.Value())
	}

	g := r.Gauge("index_docs", "Documents in the index.")
	g.Set(10)
	g.Inc()
	g.Dec()
	if g.Value() != 10 {
		t.Errorf("gauge = %d, want 10", g.Value())
	}

	// Same name returns the same metric.
	if r.Counter("queries_total", "") != c {
		t.Error("counter not deduplicated by name")
	}
}

func TestHistogramBuckets(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "Latency.", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(100) // above all buckets, counted only in +Inf

	out := r.Render()
	for _, want := range []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 2`,
		`latency_seconds_bucket{le="10"} 2`,
		`latency_seconds_bucket{le="+Inf"} 3`,
		"latency_seconds_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAndHandler(t *testing.T) {
	r := New()
	r.Counter("ingests_total", "Videos ingested.").Inc()

	out := r.Render()
	if !strings.Contains(out, "# TYPE ingests_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, "# HELP ingests_total Videos ingested.") {
		t.Errorf("missing HELP line:\n%s", out)
	}
	if !strings.Contains(out, "ingests_total 1") {
		t.Errorf("missing value line:\n%s", out)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "ingests_total 1") {
		t.Errorf("handler response = %d %q", rec.Code, rec.Body.String())
	}
}

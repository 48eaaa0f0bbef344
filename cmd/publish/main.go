// Command publish fetches YouTube captions for the given video URLs and
// publishes transcript jobs to NATS for the ingest worker to index.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/VidraAI/vidra-mvp/engine/domain"
	"github.com/VidraAI/vidra-mvp/engine/ingest"
	"github.com/VidraAI/vidra-mvp/engine/scraper"
	"github.com/VidraAI/vidra-mvp/pkg/natsutil"
)

func main() {
	var (
		natsURL = flag.String("nats", envOr("NATS_URL", nats.DefaultURL), "NATS server URL")
		videos  = flag.String("videos", "", "comma-separated YouTube video URLs or IDs")
	)
	flag.Parse()

	urls := flag.Args()
	if *videos != "" {
		urls = append(urls, strings.Split(*videos, ",")...)
	}
	if len(urls) == 0 {
		log.Fatal("no videos given: pass URLs as arguments or via -videos")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("nats connect: %v", err)
	}
	defer nc.Drain()

	fetcher := scraper.NewFetcher(nil)

	published := 0
	for _, raw := range urls {
		videoID, err := scraper.ExtractVideoID(strings.TrimSpace(raw))
		if err != nil {
			log.Printf("skip %q: %v", raw, err)
			continue
		}
		segments, err := fetcher.FetchTranscript(ctx, videoID)
		if err != nil {
			log.Printf("fetch %s: %v", videoID, err)
			continue
		}
		job := domain.TranscriptJob{
			VideoID:    videoID,
			Source:     "youtube",
			Segments:   segments,
			ReceivedAt: time.Now().UTC(),
		}
		if err := natsutil.Publish(ctx, nc, ingest.Subject, job); err != nil {
			log.Printf("publish %s: %v", videoID, err)
			continue
		}
		log.Printf("published %s (%d segments)", videoID, len(segments))
		published++
	}

	log.Printf("published %d of %d videos", published, len(urls))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

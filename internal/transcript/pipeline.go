package transcript

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// defaultProviders in fixed order: free first, metered second, AI last.
var defaultProviders = []Provider{
	InnertubeProvider{},
	SupadataProvider{},
	GeminiProvider{},
}

// Get resolves a URL or bare ID and runs the provider chain. Every outcome
// is a Result, never an error: the only hard failure is an unparseable
// input, reported inside the Result so callers can map it to their own
// error taxonomy. A video with no obtainable transcript yields
// {OK: false, Source: "none"} — a normal outcome.
func Get(ctx context.Context, urlOrID string) Result {
	videoID := engine.ExtractVideoID(urlOrID)
	if videoID == "" {
		return Result{OK: false, Source: SourceNone, Err: "invalid video URL or ID"}
	}
	return fetchChain(ctx, videoID, defaultProviders)
}

// fetchChain tries providers strictly in order, one attempt each. The
// first provider to return at least one segment wins; a provider without
// credentials is skipped silently.
func fetchChain(ctx context.Context, videoID string, providers []Provider) Result {
	engine.IncrTranscript()

	cacheKey := engine.CacheKey("transcript", videoID)
	if cached, ok := engine.CacheLoadJSON[Result](ctx, cacheKey); ok && cached.OK {
		return cached
	}

	timeout := engine.Cfg.TranscriptTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	for _, p := range providers {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		segments, err := p.Fetch(pctx, videoID)
		cancel()

		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				continue
			}
			slog.Warn("transcript provider failed",
				"provider", p.Name(),
				"video_id", videoID,
				slog.Any("error", err))
			lastErr = err
			continue
		}
		if len(segments) == 0 {
			slog.Warn("transcript provider returned no segments",
				"provider", p.Name(),
				"video_id", videoID)
			continue
		}

		engine.IncrTranscriptSource(string(p.Name()))
		slog.Info("transcript fetched",
			"provider", p.Name(),
			"video_id", videoID,
			"segments", len(segments))

		result := Result{OK: true, Segments: segments, Source: p.Name()}
		engine.CacheStoreJSON(ctx, cacheKey, result)
		return result
	}

	engine.IncrTranscriptSource("none")
	result := Result{OK: false, Source: SourceNone}
	if lastErr != nil {
		result.Err = lastErr.Error()
	} else {
		result.Err = "no transcript available"
	}
	return result
}

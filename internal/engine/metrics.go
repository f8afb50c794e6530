package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ScrapeRequests       atomic.Int64
	CommentPages         atomic.Int64
	TranscriptRequests   atomic.Int64
	TranscriptInnertube  atomic.Int64
	TranscriptSupadata   atomic.Int64
	TranscriptGemini     atomic.Int64
	TranscriptMisses     atomic.Int64
	LLMCalls             atomic.Int64
	LLMErrors            atomic.Int64
	ParseRepairs         atomic.Int64
	ParseFallbacks       atomic.Int64
	HistoryWrites        atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"scrape_requests":      metrics.ScrapeRequests.Load(),
		"comment_pages":        metrics.CommentPages.Load(),
		"transcript_requests":  metrics.TranscriptRequests.Load(),
		"transcript_innertube": metrics.TranscriptInnertube.Load(),
		"transcript_supadata":  metrics.TranscriptSupadata.Load(),
		"transcript_gemini":    metrics.TranscriptGemini.Load(),
		"transcript_misses":    metrics.TranscriptMisses.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"parse_repairs":        metrics.ParseRepairs.Load(),
		"parse_fallbacks":      metrics.ParseFallbacks.Load(),
		"history_writes":       metrics.HistoryWrites.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"scrape_requests", "comment_pages",
		"transcript_requests", "transcript_innertube", "transcript_supadata",
		"transcript_gemini", "transcript_misses",
		"llm_calls", "llm_errors",
		"parse_repairs", "parse_fallbacks",
		"history_writes",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrScrape()       { metrics.ScrapeRequests.Add(1) }
func IncrCommentPage()  { metrics.CommentPages.Add(1) }
func IncrLLMCall()      { metrics.LLMCalls.Add(1) }
func IncrLLMError()     { metrics.LLMErrors.Add(1) }
func IncrParseRepair()  { metrics.ParseRepairs.Add(1) }
func IncrParseFallback() { metrics.ParseFallbacks.Add(1) }
func IncrHistoryWrite() { metrics.HistoryWrites.Add(1) }

// IncrTranscript counts one transcript pipeline request.
func IncrTranscript() { metrics.TranscriptRequests.Add(1) }

// IncrTranscriptSource counts a successful transcript fetch by provider tag.
// An empty or unknown tag counts as a miss.
func IncrTranscriptSource(source string) {
	switch source {
	case "innertube":
		metrics.TranscriptInnertube.Add(1)
	case "supadata":
		metrics.TranscriptSupadata.Add(1)
	case "gemini":
		metrics.TranscriptGemini.Add(1)
	default:
		metrics.TranscriptMisses.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

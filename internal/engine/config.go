package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey         string // YouTube Data API v3 key (comments + metadata)
	YouTubeAPIKeyFallback string // secondary key, used when the primary hits quota
	SupadataAPIKey        string // quota-metered transcript API; empty = provider skipped
	GeminiAPIKey          string // AI transcription fallback; empty = provider skipped

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	MaxComments       int // hard cap on comments fetched per video
	MaxPromptComments int // comments included in the analysis prompt

	FetchTimeout      time.Duration // per Data API call
	TranscriptTimeout time.Duration // per transcript provider attempt

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = watch-page provider uses HTTPClient
	LLMClient     *llm.Client
	DataAPILimit  *rate.Limiter // client-side quota protection for the Data API
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (scrape, transcript, analysis).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}

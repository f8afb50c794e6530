// go_tube — YouTube comment & transcript insight engine.
//
// Scrapes video metadata and comments via the YouTube Data API, fetches
// transcripts through a tiered provider chain (watch-page captions,
// Supadata, Gemini), and runs LLM content-strategy analysis with a
// repair-tolerant JSON normalizer. Serves both a REST API and MCP tools
// (analyze_video, video_transcript, analysis_history).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_tube/internal/api"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/history"
	"github.com/anatolykoptev/go_tube/internal/insightserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
	apiPort = env.Int("API_PORT", 8080)
)

func main() {
	initEngine()

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	slog.Info("starting go_tube",
		slog.String("mcp_port", mcpPort),
		slog.Int("api_port", apiPort),
	)

	go func() {
		srv := api.NewServer(store, apiPort)
		if err := srv.Start(); err != nil {
			slog.Error("http api failed", slog.Any("error", err))
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)

	insightserver.RegisterTools(server, store)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		SupadataAPIKey:        env.Str("SUPADATA_API_KEY", ""),
		GeminiAPIKey:          env.Str("GEMINI_API_KEY", ""),
		LLMAPIKey:             env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:    env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:            env.Str("LLM_API_BASE", "https://openrouter.ai/api/v1"),
		LLMModel:              env.Str("LLM_MODEL", "x-ai/grok-4.1-fast:free"),
		LLMTemperature:        env.Float("LLM_TEMPERATURE", 0.5),
		LLMMaxTokens:          env.Int("LLM_MAX_TOKENS", 32000),
		MaxComments:           env.Int("MAX_COMMENTS", 2000),
		MaxPromptComments:     env.Int("MAX_PROMPT_COMMENTS", 1500),
		FetchTimeout:          env.Duration("FETCH_TIMEOUT", 30*time.Second),
		TranscriptTimeout:     env.Duration("TRANSCRIPT_TIMEOUT", 30*time.Second),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		DataAPILimit:          rate.NewLimiter(rate.Limit(env.Float("DATA_API_RPS", 5)), 10),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, watch-page scrape uses plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 300 * time.Second}),
	)

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 6*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

func openHistory() history.Store {
	store, err := history.Open(context.Background(),
		env.Str("DATABASE_URL", ""),
		env.Str("HISTORY_DB_PATH", "gotube_history.db"))
	if err != nil {
		slog.Warn("history store init failed, history disabled", slog.Any("error", err))
		return nil
	}
	return store
}

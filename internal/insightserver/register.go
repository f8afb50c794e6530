// Package insightserver registers the video-analysis MCP tools:
// analyze_video, video_transcript, analysis_history.
package insightserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tube/internal/analysis"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/history"
	"github.com/anatolykoptev/go_tube/internal/scrape"
	"github.com/anatolykoptev/go_tube/internal/transcript"
)

// RegisterTools registers all video insight tools on the given MCP server.
// store may be nil; analysis_history then returns an empty list and
// analyze_video skips persistence.
func RegisterTools(server *mcp.Server, store history.Store) {
	registerAnalyzeVideo(server, store)
	registerVideoTranscript(server)
	registerAnalysisHistory(server, store)
}

type AnalyzeVideoInput struct {
	URL   string `json:"url" jsonschema:"YouTube video URL or 11-character video ID"`
	Model string `json:"model,omitempty" jsonschema:"optional LLM model override, e.g. openai/gpt-4o-mini"`
}

type AnalyzeVideoOutput struct {
	Success  bool             `json:"success"`
	Analysis *analysis.Report `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func registerAnalyzeVideo(server *mcp.Server, store history.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_video",
		Description: "Deep-analyze a YouTube video: scrapes metadata and up to 2000 comments, fetches the transcript when available, and runs an LLM content-strategy analysis. Returns structured JSON with sentiment, pain points, knowledge gaps, demand signals, resonance, and recommendations.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeVideoInput) (*mcp.CallToolResult, AnalyzeVideoOutput, error) {
		if input.URL == "" {
			return nil, AnalyzeVideoOutput{}, fmt.Errorf("url is required")
		}

		data, err := scrape.FetchVideoData(ctx, input.URL)
		if err != nil {
			return nil, AnalyzeVideoOutput{}, fmt.Errorf("scrape failed: %w", err)
		}

		var formatted *transcript.Formatted
		if result := transcript.Get(ctx, input.URL); result.OK {
			f := transcript.BuildFormatted(result.Segments)
			formatted = &f
		}

		report, err := analysis.Analyze(ctx, data, formatted, input.Model)
		if err != nil {
			return nil, AnalyzeVideoOutput{}, fmt.Errorf("analysis failed: %w", err)
		}

		if store != nil {
			if payload, err := json.Marshal(report); err == nil {
				rec := &history.Record{
					VideoID:       data.VideoID,
					VideoTitle:    data.Title,
					Channel:       data.ChannelName,
					VideoURL:      "https://www.youtube.com/watch?v=" + data.VideoID,
					Model:         report.Model,
					TotalComments: len(data.Comments),
					Report:        payload,
				}
				if err := store.Save(ctx, rec); err != nil {
					slog.Warn("analyze_video: save history failed", slog.Any("error", err))
				}
			}
		}

		return nil, AnalyzeVideoOutput{Success: true, Analysis: report}, nil
	})
}

type VideoTranscriptInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL or 11-character video ID"`
}

type VideoTranscriptOutput struct {
	Success    bool                  `json:"success"`
	Source     transcript.Source     `json:"source"`
	Transcript *transcript.Formatted `json:"transcript,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch a YouTube video transcript through the tiered provider chain (free watch-page captions, Supadata API, Gemini transcription). Returns timestamped segments, full text, and two-minute sections. An unavailable transcript is a normal outcome, reported with success=false.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input VideoTranscriptInput) (*mcp.CallToolResult, VideoTranscriptOutput, error) {
		if input.URL == "" {
			return nil, VideoTranscriptOutput{}, fmt.Errorf("url is required")
		}
		if engine.ExtractVideoID(input.URL) == "" {
			return nil, VideoTranscriptOutput{}, fmt.Errorf("invalid video URL or ID: %q", input.URL)
		}

		result := transcript.Get(ctx, input.URL)
		if !result.OK {
			return nil, VideoTranscriptOutput{Success: false, Source: result.Source, Error: "transcript unavailable"}, nil
		}
		formatted := transcript.BuildFormatted(result.Segments)
		return nil, VideoTranscriptOutput{Success: true, Source: result.Source, Transcript: &formatted}, nil
	})
}

type AnalysisHistoryInput struct {
	ID    string `json:"id,omitempty" jsonschema:"analysis ID to fetch in full; omit to list recent analyses"`
	Limit int    `json:"limit,omitempty" jsonschema:"max entries to list, default 20"`
}

type AnalysisHistoryOutput struct {
	Items []history.Record `json:"items,omitempty"`
	Item  *history.Record  `json:"item,omitempty"`
}

func registerAnalysisHistory(server *mcp.Server, store history.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analysis_history",
		Description: "List recent video analyses or fetch one by ID, including its full report JSON.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AnalysisHistoryInput) (*mcp.CallToolResult, AnalysisHistoryOutput, error) {
		if store == nil {
			return nil, AnalysisHistoryOutput{Items: []history.Record{}}, nil
		}
		if input.ID != "" {
			rec, err := store.Get(ctx, input.ID)
			if err != nil {
				return nil, AnalysisHistoryOutput{}, err
			}
			return nil, AnalysisHistoryOutput{Item: rec}, nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		items, err := store.List(ctx, limit)
		if err != nil {
			return nil, AnalysisHistoryOutput{}, err
		}
		return nil, AnalysisHistoryOutput{Items: items}, nil
	})
}

package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/scrape"
	"github.com/anatolykoptev/go_tube/internal/transcript"
)

// modelParams tunes output budget per model. The analysis JSON runs
// 10-20K words, so max_tokens errs high.
type modelParams struct {
	MaxTokens   int
	Temperature float64
}

var modelConfigs = map[string]modelParams{
	"x-ai/grok-4.1-fast:free":     {MaxTokens: 131072, Temperature: 0.5},
	"openai/gpt-oss-20b:free":     {MaxTokens: 32000, Temperature: 0.5},
	"z-ai/glm-4.5-air:free":       {MaxTokens: 32000, Temperature: 0.5},
	"google/gemini-3-pro-preview": {MaxTokens: 100000, Temperature: 0.5},
	"openai/gpt-5.1":              {MaxTokens: 32000, Temperature: 0.6},
	"openai/gpt-4o":               {MaxTokens: 32000, Temperature: 0.6},
	"openai/gpt-4o-mini":          {MaxTokens: 32000, Temperature: 0.6},
	"anthropic/claude-haiku-4.5":  {MaxTokens: 16384, Temperature: 0.6},
	"anthropic/claude-opus-4.5":   {MaxTokens: 32000, Temperature: 0.6},
	"anthropic/claude-sonnet-4.5": {MaxTokens: 32000, Temperature: 0.6},
	"x-ai/grok-4":                 {MaxTokens: 65000, Temperature: 0.5},
	"x-ai/grok-4-fast":            {MaxTokens: 65000, Temperature: 0.5},
	"x-ai/grok-3-mini":            {MaxTokens: 32000, Temperature: 0.5},
	"z-ai/glm-4.6":                {MaxTokens: 32000, Temperature: 0.5},
	"z-ai/glm-4.5":                {MaxTokens: 32000, Temperature: 0.5},
}

var defaultParams = modelParams{MaxTokens: 32000, Temperature: 0.5}

func paramsFor(model string) modelParams {
	if p, ok := modelConfigs[model]; ok {
		return p
	}
	return defaultParams
}

// Analyze runs the full analysis: prompt, one LLM call (no retries — a
// failed call is the caller's problem), normalization, and report
// assembly. A parse failure degrades to the neutral fallback report
// instead of an error; only missing input or a failed LLM call errors.
func Analyze(ctx context.Context, data *scrape.ScrapedData, tr *transcript.Formatted, model string) (*Report, error) {
	if data == nil || len(data.Comments) == 0 {
		return nil, fmt.Errorf("%w: no comment data to analyze", engine.ErrInvalidInput)
	}
	if model == "" {
		model = engine.Cfg.LLMModel
	}

	prompt := BuildPrompt(data, tr)
	p := paramsFor(model)

	raw, err := engine.CallLLMTuned(ctx, model, prompt, p.Temperature, p.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: llm call: %v", engine.ErrUpstream, err)
	}

	fields, stage := Normalize(raw)

	report := &Report{
		VideoID:     data.VideoID,
		VideoTitle:  data.Title,
		ChannelName: data.ChannelName,
		AnalyzedAt:  time.Now().UTC(),
		Model:       model,
		DataSources: buildDataSources(data, tr),
	}
	assembleFields(report, fields)

	if report.DataSources.CommentsAnalyzed == 0 {
		report.DataSources.CommentsAnalyzed = len(data.Comments)
	}

	slog.Info("analysis complete",
		"video_id", data.VideoID,
		"model", model,
		"parse_stage", stage,
		"comments", len(data.Comments))
	return report, nil
}

func buildDataSources(data *scrape.ScrapedData, tr *transcript.Formatted) DataSources {
	ds := DataSources{CommentsAnalyzed: len(data.Comments)}
	if tr != nil && tr.FullText != "" {
		ds.TranscriptAvailable = true
		// Untimed transcripts (AI transcription) have no duration; leave
		// it empty rather than reporting "0 minutes".
		if tr.TotalDuration > 0 {
			ds.TranscriptDuration = fmt.Sprintf("%d minutes", tr.TotalDuration/60_000)
		}
		ds.TranscriptWordCount = engine.WordCount(tr.FullText)
	}
	return ds
}

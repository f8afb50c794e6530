package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/scrape"
	"github.com/anatolykoptev/go_tube/internal/transcript"
)

func sampleData() *scrape.ScrapedData {
	return &scrape.ScrapedData{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "How to Grow Tomatoes",
		ChannelName:  "Garden Channel",
		ViewCount:    100_000,
		LikeCount:    5_000,
		CommentCount: 300,
		PublishedAt:  "2024-03-01T00:00:00Z",
		Duration:     "PT10M",
		Comments: []scrape.Comment{
			{Text: "This is amazing, thank you!", Likes: 120},
			{Text: "What soil do you use?", Likes: 45, Replies: 3},
			{Text: "Disappointed, total clickbait", Likes: 2},
		},
	}
}

func TestBuildPromptCommentOnly(t *testing.T) {
	engine.Init(engine.Config{})
	p := BuildPrompt(sampleData(), nil)

	assert.Contains(t, p, `Title: "How to Grow Tomatoes"`)
	assert.Contains(t, p, "Like/View Ratio: 5.00% (Excellent)")
	assert.Contains(t, p, "Questions in Comments: 1")
	assert.Contains(t, p, "Detected Positive Comments: ~1")
	assert.Contains(t, p, "Detected Negative Comments: ~1")
	assert.Contains(t, p, "[2] (45 likes, 3 replies) What soil do you use?")
	assert.Contains(t, p, "Since no transcript is available")
	assert.NotContains(t, p, "VIDEO TRANSCRIPT")
}

func TestBuildPromptWithTranscript(t *testing.T) {
	engine.Init(engine.Config{})
	tr := &transcript.Formatted{
		Segments:      []transcript.Segment{{Text: "welcome to the garden", Offset: 0, Duration: 3000}},
		FullText:      "welcome to the garden",
		TotalDuration: 3000,
	}
	p := BuildPrompt(sampleData(), tr)

	assert.Contains(t, p, "VIDEO TRANSCRIPT")
	assert.Contains(t, p, "[0:00] welcome to the garden")
	assert.Contains(t, p, "transcriptAvailable\": true")
}

func TestBuildPromptTopCommentsSortedByLikes(t *testing.T) {
	engine.Init(engine.Config{})
	p := BuildPrompt(sampleData(), nil)

	idx := strings.Index(p, "TOP 20 MOST-LIKED COMMENTS")
	require.Positive(t, idx)
	section := p[idx:]
	first := strings.Index(section, "[120 likes]")
	second := strings.Index(section, "[45 likes]")
	require.Positive(t, first)
	require.Positive(t, second)
	assert.Less(t, first, second)
}

func TestBuildPromptCapsComments(t *testing.T) {
	engine.Init(engine.Config{MaxPromptComments: 2})
	defer engine.Init(engine.Config{})

	p := BuildPrompt(sampleData(), nil)
	assert.Contains(t, p, "[2] ")
	assert.NotContains(t, p, "[3] ")
}

func TestChunkTranscript(t *testing.T) {
	long := strings.Repeat("word ", 150) // ~750 chars, forces a chunk break
	segments := []transcript.Segment{
		{Text: strings.TrimSpace(long), Offset: 0},
		{Text: "second chunk starts here", Offset: 125_000},
	}
	out := chunkTranscript(segments)
	assert.Contains(t, out, "[0:00]")
	assert.Contains(t, out, "[2:05] second chunk starts here")
}

func TestAnalyzeRejectsEmptyData(t *testing.T) {
	engine.Init(engine.Config{})

	_, err := Analyze(context.Background(), nil, nil, "")
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))

	_, err = Analyze(context.Background(), &scrape.ScrapedData{}, nil, "")
	assert.True(t, errors.Is(err, engine.ErrInvalidInput))
}

func TestBuildDataSources(t *testing.T) {
	data := sampleData()

	ds := buildDataSources(data, nil)
	assert.False(t, ds.TranscriptAvailable)
	assert.Empty(t, ds.TranscriptDuration)

	timed := &transcript.Formatted{
		FullText:      "welcome to the garden",
		TotalDuration: 180_000,
	}
	ds = buildDataSources(data, timed)
	assert.True(t, ds.TranscriptAvailable)
	assert.Equal(t, "3 minutes", ds.TranscriptDuration)
	assert.Equal(t, 4, ds.TranscriptWordCount)

	// A single untimed segment has no known duration.
	untimed := &transcript.Formatted{
		FullText:      "full verbatim transcription",
		TotalDuration: 0,
	}
	ds = buildDataSources(data, untimed)
	assert.True(t, ds.TranscriptAvailable)
	assert.Empty(t, ds.TranscriptDuration)
	assert.Equal(t, 3, ds.TranscriptWordCount)
}

func TestParamsFor(t *testing.T) {
	p := paramsFor("anthropic/claude-haiku-4.5")
	assert.Equal(t, 16384, p.MaxTokens)

	p = paramsFor("unknown/model")
	assert.Equal(t, defaultParams, p)
}

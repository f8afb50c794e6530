// Package analysis turns scraped video data into a content-strategy
// report: it builds the prompt, calls the LLM once, and normalizes the
// response through an escalating JSON repair chain that never fails —
// worst case the caller gets a neutral fallback report.
package analysis

import (
	"encoding/json"
	"strings"
	"time"
)

// Distribution is a sentiment percentage split. The three values are
// model-reported and not forced to sum to 100.
type Distribution struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Sentiment summarizes overall viewer sentiment.
type Sentiment struct {
	Overall         string       `json:"overall"` // positive | negative | mixed | neutral
	Score           float64      `json:"score"`   // -1.0 to 1.0
	Distribution    Distribution `json:"distribution"`
	PositiveDrivers []FlexText   `json:"positiveDrivers"`
	NegativeDrivers []FlexText   `json:"negativeDrivers"`
}

// PainPoint is a recurring viewer problem surfaced by the comments.
type PainPoint struct {
	Problem           string   `json:"problem"`
	Intensity         string   `json:"intensity"` // severe | moderate | mild
	Frequency         int      `json:"frequency"`
	SampleComments    []string `json:"sampleComments"`
	PotentialSolution string   `json:"potentialSolution"`
}

// KnowledgeGap is a topic viewers repeatedly ask about.
type KnowledgeGap struct {
	Topic                    string   `json:"topic"`
	QuestionCount            int      `json:"questionCount"`
	SampleQuestions          []string `json:"sampleQuestions"`
	SuggestedContent         string   `json:"suggestedContent"`
	RelatedTranscriptSection string   `json:"relatedTranscriptSection,omitempty"`
}

// DemandSignal is an explicit viewer request for content.
type DemandSignal struct {
	Request           string   `json:"request"`
	Frequency         int      `json:"frequency"`
	Urgency           string   `json:"urgency"` // high | medium | low
	SampleComments    []string `json:"sampleComments"`
	BusinessPotential string   `json:"businessPotential"`
}

// Myth is a misconception circulating in the comments.
type Myth struct {
	Myth                string   `json:"myth"`
	Prevalence          int      `json:"prevalence"`
	Correction          string   `json:"correction"`
	SampleComments      []string `json:"sampleComments"`
	TranscriptReference string   `json:"transcriptReference,omitempty"`
}

// ResonanceItem is one content element that landed or flopped.
type ResonanceItem struct {
	Aspect              string   `json:"aspect"`
	Evidence            []string `json:"evidence"`
	Sentiment           string   `json:"sentiment"` // positive | negative
	TranscriptTimestamp string   `json:"transcriptTimestamp,omitempty"`
}

// Resonance pairs what worked with what did not.
type Resonance struct {
	WhatWorked  []ResonanceItem `json:"whatWorked"`
	WhatFlopped []ResonanceItem `json:"whatFlopped"`
}

// HookAnalysis evaluates the video's opening. Only present when a
// transcript was available.
type HookAnalysis struct {
	HookType        string     `json:"hookType"`
	HookText        string     `json:"hookText"`
	Effectiveness   string     `json:"effectiveness"` // strong | moderate | weak
	ClarityScore    float64    `json:"clarityScore"`
	TimeToHook      float64    `json:"timeToHook"` // seconds
	CommentFeedback []string   `json:"commentFeedback"`
	Improvements    []FlexText `json:"improvements"`
}

// ScriptSection is one analyzed slice of the video script.
type ScriptSection struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Duration  float64 `json:"duration"`
	Content   string  `json:"content"`
	Purpose   string  `json:"purpose"`
	Sentiment string  `json:"sentimentInSection"`
}

// ScriptStructure evaluates the script as a whole. Transcript-only.
type ScriptStructure struct {
	TotalSections     int             `json:"totalSections"`
	Sections          []ScriptSection `json:"sections"`
	FlowScore         float64         `json:"flowScore"`
	TransitionQuality string          `json:"transitionQuality"` // smooth | adequate | choppy
	LogicalGaps       []string        `json:"logicalGaps"`
	Redundancies      []string        `json:"redundancies"`
}

// ContentGap is one promised-but-missing piece of content.
type ContentGap struct {
	Topic             string   `json:"topic"`
	ViewerExpectation string   `json:"viewerExpectation"`
	ActualCoverage    string   `json:"actualCoverage"`
	ViewerFeedback    []string `json:"viewerFeedback"`
	Recommendation    string   `json:"recommendation"`
}

// ContentGapAnalysis compares title/hook promises against delivery.
// Transcript-only.
type ContentGapAnalysis struct {
	PromisedContent   []string     `json:"promisedContent"`
	DeliveredContent  []string     `json:"deliveredContent"`
	MissingPieces     []ContentGap `json:"missingPieces"`
	UnexpectedBonuses []string     `json:"unexpectedBonuses"`
}

// DataSources records what the analysis was built from.
type DataSources struct {
	CommentsAnalyzed    int    `json:"commentsAnalyzed"`
	TranscriptAvailable bool   `json:"transcriptAvailable"`
	TranscriptDuration  string `json:"transcriptDuration,omitempty"`
	TranscriptWordCount int    `json:"transcriptWordCount,omitempty"`
}

// Report is the assembled analysis. Every slice field is non-nil after
// assembly; absence is a property of the raw model output only.
type Report struct {
	VideoID     string    `json:"videoId"`
	VideoTitle  string    `json:"videoTitle"`
	ChannelName string    `json:"channelName"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
	Model       string    `json:"model"`

	DataSources DataSources `json:"dataSourcesSummary"`

	Sentiment     Sentiment      `json:"sentiment"`
	PainPoints    []PainPoint    `json:"painPoints"`
	KnowledgeGaps []KnowledgeGap `json:"knowledgeGaps"`
	DemandSignals []DemandSignal `json:"demandSignals"`
	Myths         []Myth         `json:"myths"`
	Resonance     Resonance      `json:"resonance"`

	HookAnalysis    *HookAnalysis       `json:"hookAnalysis,omitempty"`
	ScriptStructure *ScriptStructure    `json:"scriptStructure,omitempty"`
	ContentGaps     *ContentGapAnalysis `json:"contentGaps,omitempty"`

	TopRecommendations []FlexText `json:"topRecommendations"`
	ContentIdeas       []FlexText `json:"contentIdeas"`
}

// FlexText is a free-form text item. Models return either a bare JSON
// string or an object carrying the text under a field like "driver" or
// "recommendation"; both decode to the text itself.
type FlexText string

var flexTextKeys = []string{
	"recommendation", "driver", "request", "idea", "title", "text", "description",
}

func (f *FlexText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexText(s)
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err == nil {
		for _, key := range flexTextKeys {
			if v, ok := obj[key].(string); ok && v != "" {
				*f = FlexText(v)
				return nil
			}
		}
	}
	*f = FlexText(strings.TrimSpace(string(b)))
	return nil
}

// Package transcript fetches timestamped YouTube transcripts through a
// tiered chain of providers and derives a prompt-ready formatted view.
//
// Provider order is fixed: the free Innertube watch-page scrape first,
// the quota-metered Supadata API second, Gemini AI transcription last.
// Each provider is tried at most once; the first success wins. A missing
// transcript is a normal outcome, not an error — callers proceed with
// comments only.
package transcript

// Source identifies which provider produced a transcript.
type Source string

const (
	SourceInnertube Source = "innertube"
	SourceSupadata  Source = "supadata"
	SourceGemini    Source = "gemini"
	SourceNone      Source = "none"
)

// Segment is one timestamped span of spoken text. Offsets and durations
// are integer milliseconds; providers reporting float seconds are floored
// during normalization. Immutable once created.
type Segment struct {
	Text     string `json:"text"`
	Offset   int64  `json:"offset"`   // start time, ms
	Duration int64  `json:"duration"` // ms, 0 when the provider omits it
}

// Result is the outcome of one acquisition attempt.
type Result struct {
	OK       bool      `json:"success"`
	Segments []Segment `json:"segments,omitempty"`
	Source   Source    `json:"source"`
	Err      string    `json:"error,omitempty"`
}

// Section is a fixed-duration aggregation of segments for display and
// prompt-size control.
type Section struct {
	StartTime int64  `json:"startTime"` // ms
	EndTime   int64  `json:"endTime"`   // ms
	Title     string `json:"title"`
	Content   string `json:"content"` // capped at sectionMaxRunes
	Timestamp string `json:"timestamp"`
}

// Formatted is the derived, prompt-ready view of a transcript.
// TotalDuration equals the offset+duration of the last segment, or zero
// when there are no segments.
type Formatted struct {
	Segments      []Segment `json:"segments"`
	FullText      string    `json:"fullText"`
	Sections      []Section `json:"sections"`
	TotalDuration int64     `json:"totalDuration"` // ms
}

package transcript

import (
	"strings"
	"testing"
)

func TestBuildFormattedEmpty(t *testing.T) {
	f := BuildFormatted(nil)
	if f.FullText != "" {
		t.Errorf("FullText = %q, want empty", f.FullText)
	}
	if f.TotalDuration != 0 {
		t.Errorf("TotalDuration = %d, want 0", f.TotalDuration)
	}
	if f.Segments == nil || f.Sections == nil {
		t.Error("Segments and Sections must be non-nil")
	}
	if len(f.Sections) != 0 {
		t.Errorf("got %d sections, want 0", len(f.Sections))
	}
}

func TestBuildFormattedFullText(t *testing.T) {
	segments := []Segment{
		{Text: "hello", Offset: 0, Duration: 1000},
		{Text: "world", Offset: 1000, Duration: 1000},
	}
	f := BuildFormatted(segments)
	if f.FullText != "hello world" {
		t.Errorf("FullText = %q, want %q", f.FullText, "hello world")
	}
	if f.TotalDuration != 2000 {
		t.Errorf("TotalDuration = %d, want 2000", f.TotalDuration)
	}
}

// A five-minute span of segments must yield exactly three sections:
// 0–2 min, 2–4 min, and a final partial one clamped at total duration.
func TestBuildFormattedSectionWindows(t *testing.T) {
	var segments []Segment
	for ms := int64(0); ms < 300_000; ms += 30_000 {
		segments = append(segments, Segment{Text: "chunk", Offset: ms, Duration: 30_000})
	}
	f := BuildFormatted(segments)

	if len(f.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(f.Sections))
	}

	want := []struct {
		start, end int64
		title      string
		timestamp  string
	}{
		{0, 120_000, "Section 1", "0:00"},
		{120_000, 240_000, "Section 2", "2:00"},
		{240_000, 300_000, "Section 3", "4:00"},
	}
	for i, w := range want {
		s := f.Sections[i]
		if s.StartTime != w.start || s.EndTime != w.end {
			t.Errorf("section %d: [%d,%d], want [%d,%d]", i, s.StartTime, s.EndTime, w.start, w.end)
		}
		if s.Title != w.title {
			t.Errorf("section %d: title %q, want %q", i, s.Title, w.title)
		}
		if s.Timestamp != w.timestamp {
			t.Errorf("section %d: timestamp %q, want %q", i, s.Timestamp, w.timestamp)
		}
	}
}

func TestBuildFormattedSectionGaps(t *testing.T) {
	// Segments only in the first and third windows: numbering stays dense.
	segments := []Segment{
		{Text: "a", Offset: 0, Duration: 5000},
		{Text: "b", Offset: 250_000, Duration: 5000},
	}
	f := BuildFormatted(segments)
	if len(f.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(f.Sections))
	}
	if f.Sections[1].Title != "Section 2" {
		t.Errorf("title = %q, want %q", f.Sections[1].Title, "Section 2")
	}
	if f.Sections[1].StartTime != 250_000 {
		t.Errorf("start = %d, want 250000", f.Sections[1].StartTime)
	}
	if f.Sections[1].Timestamp != "4:10" {
		t.Errorf("timestamp = %q, want %q", f.Sections[1].Timestamp, "4:10")
	}
}

// A section starting mid-window is labeled with its first segment's
// offset, not the window boundary.
func TestBuildFormattedSectionLabelFromFirstSegment(t *testing.T) {
	segments := []Segment{
		{Text: "late start", Offset: 130_000, Duration: 5000},
		{Text: "same window", Offset: 150_000, Duration: 5000},
	}
	f := BuildFormatted(segments)
	if len(f.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(f.Sections))
	}
	s := f.Sections[0]
	if s.StartTime != 130_000 {
		t.Errorf("start = %d, want 130000", s.StartTime)
	}
	if s.Timestamp != "2:10" {
		t.Errorf("timestamp = %q, want %q", s.Timestamp, "2:10")
	}
	if s.EndTime != 155_000 {
		t.Errorf("end = %d, want 155000", s.EndTime)
	}
}

func TestBuildFormattedContentTruncation(t *testing.T) {
	long := strings.Repeat("x", 600)
	f := BuildFormatted([]Segment{{Text: long, Offset: 0, Duration: 1000}})
	got := f.Sections[0].Content
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated content should end with ellipsis, got %q", got[len(got)-10:])
	}
	if n := len([]rune(got)); n > 503 {
		t.Errorf("content is %d runes, want <= 503", n)
	}
}

func TestBuildFormattedShortContentNotTruncated(t *testing.T) {
	f := BuildFormatted([]Segment{{Text: "short text", Offset: 0, Duration: 1000}})
	if f.Sections[0].Content != "short text" {
		t.Errorf("content = %q, want unmodified", f.Sections[0].Content)
	}
}

func TestBuildFormattedHourTimestamp(t *testing.T) {
	f := BuildFormatted([]Segment{{Text: "late", Offset: 3_720_000, Duration: 1000}})
	if f.Sections[0].Timestamp != "1:02:00" {
		t.Errorf("timestamp = %q, want %q", f.Sections[0].Timestamp, "1:02:00")
	}
}

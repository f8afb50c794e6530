package transcript

import (
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const (
	// sectionWindowMs is the fixed section width. Grouping windows are
	// aligned to absolute offsets (offset / sectionWindowMs); the section's
	// start and label come from its first segment.
	sectionWindowMs = 120_000

	// sectionMaxRunes caps section content; longer content is cut at a rune
	// boundary and suffixed with an ellipsis.
	sectionMaxRunes = 500
)

// BuildFormatted derives the prompt-ready view from raw segments: the
// space-joined full text, total duration, and fixed two-minute sections.
// Empty input yields an empty (non-nil) view.
func BuildFormatted(segments []Segment) Formatted {
	f := Formatted{
		Segments: segments,
		Sections: []Section{},
	}
	if len(segments) == 0 {
		f.Segments = []Segment{}
		return f
	}

	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	f.FullText = strings.Join(texts, " ")

	last := segments[len(segments)-1]
	f.TotalDuration = last.Offset + last.Duration

	f.Sections = buildSections(segments, f.TotalDuration)
	return f
}

// buildSections groups segments into fixed windows keyed by
// offset / sectionWindowMs. Windows with no segments produce no section,
// so section numbering is dense even when the timeline has gaps. A
// section starts (and is labeled) at its first segment's offset, which
// may sit anywhere inside the window.
func buildSections(segments []Segment, totalDuration int64) []Section {
	type bucket struct {
		window int64
		first  int64 // offset of the first segment in the window
		texts  []string
	}

	var buckets []bucket
	byWindow := map[int64]int{}
	for _, s := range segments {
		w := s.Offset / sectionWindowMs
		i, ok := byWindow[w]
		if !ok {
			i = len(buckets)
			byWindow[w] = i
			buckets = append(buckets, bucket{window: w, first: s.Offset})
		}
		buckets[i].texts = append(buckets[i].texts, s.Text)
	}

	sections := make([]Section, 0, len(buckets))
	for i, b := range buckets {
		end := (b.window + 1) * sectionWindowMs
		if end > totalDuration {
			end = totalDuration
		}
		content := engine.TruncateRunes(strings.Join(b.texts, " "), sectionMaxRunes, "...")
		sections = append(sections, Section{
			StartTime: b.first,
			EndTime:   end,
			Title:     "Section " + strconv.Itoa(i+1),
			Content:   content,
			Timestamp: engine.FormatTimestamp(b.first),
		})
	}
	return sections
}

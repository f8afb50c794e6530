package analysis

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Normalization stage tags, in escalation order.
const (
	StageStrict   = "strict"   // parsed after extraction/trim only
	StageRepaired = "repaired" // needed bracket closing or lenient fixes
	StageFallback = "fallback" // unparseable, neutral report substituted
)

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	braceSpanRe     = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe   = regexp.MustCompile(`//[^\n]*`)
)

// Normalize extracts and repairs the model's JSON output. It never
// returns an error: the result is the parsed top-level fields (nil when
// even repair failed) plus the stage tag saying how hard it had to work.
//
// Escalation order: fence extraction, brace-span extraction, whitespace
// and BOM trim, unmatched-bracket closing for truncated output, strict
// parse, lenient repair (trailing commas, comments, escaped single
// quotes), terminal fallback.
func Normalize(raw string) (map[string]json.RawMessage, string) {
	content := raw

	if m := fenceRe.FindStringSubmatch(content); m != nil {
		content = m[1]
	} else if m := braceSpanRe.FindString(content); m != "" {
		content = m
	}

	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "\ufeff")

	content = closeTruncated(content)

	if fields, ok := parseObject(content); ok {
		return fields, StageStrict
	}

	repaired := lenientRepair(content)
	if fields, ok := parseObject(repaired); ok {
		engine.IncrParseRepair()
		slog.Warn("analysis response needed repair", "raw_len", len(raw))
		return fields, StageRepaired
	}

	engine.IncrParseFallback()
	slog.Warn("analysis response unparseable, using fallback", "raw_len", len(raw))
	return nil, StageFallback
}

// closeTruncated appends missing closing brackets to output that was cut
// off mid-stream. Counting ignores nothing — a truncation inside a string
// literal can still defeat this, which is accepted.
func closeTruncated(s string) string {
	if s == "" || strings.HasSuffix(s, "}") || strings.HasSuffix(s, "]") {
		return s
	}
	openBraces := strings.Count(s, "{") - strings.Count(s, "}")
	openBrackets := strings.Count(s, "[") - strings.Count(s, "]")
	s += strings.Repeat("]", max(openBrackets, 0))
	s += strings.Repeat("}", max(openBraces, 0))
	return s
}

// lenientRepair fixes the malformations models actually produce:
// trailing commas, JS-style comments, and \' escapes that are invalid
// JSON.
func lenientRepair(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, `\'`, "'")
	s = blockCommentRe.ReplaceAllString(s, "")
	s = lineCommentRe.ReplaceAllString(s, "")
	return s
}

func parseObject(s string) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

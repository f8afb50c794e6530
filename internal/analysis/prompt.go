package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/scrape"
	"github.com/anatolykoptev/go_tube/internal/transcript"
)

var negativeIndicators = []string{
	"disappointed", "waste", "bad", "wrong", "hate", "dislike", "boring",
	"clickbait", "misleading",
}

var positiveIndicators = []string{
	"amazing", "great", "love", "best", "helpful", "thank", "awesome",
	"excellent", "perfect", "saved",
}

const systemContext = `You are an elite YouTube content strategist. You combine audience psychology, content strategy, and data analysis to produce insights a creator can act on immediately.

Your analysis style:
- You think like a creator who needs to make their NEXT video better
- You focus on SPECIFIC, ACTIONABLE insights, not generic advice
- You identify exact moments, phrases, and patterns that worked or failed
- You extract concrete video ideas with titles, angles, and hooks
- You are brutally honest about what is not working

Respond with ONLY valid JSON - start with { and end with }. Keep arrays to 3-5 high-quality items and sampleComments to 1-3 per item. Ensure the JSON is COMPLETE: close every array and object.`

// BuildPrompt assembles the deep-analysis prompt: metadata, precomputed
// engagement metrics, the timestamped transcript when available, and up
// to cfg.MaxPromptComments comments.
func BuildPrompt(data *scrape.ScrapedData, tr *transcript.Formatted) string {
	maxComments := engine.Cfg.MaxPromptComments
	if maxComments <= 0 {
		maxComments = 1500
	}

	var b strings.Builder
	b.WriteString(systemContext)
	b.WriteString("\n\n===========================================\nVIDEO DATA FOR ANALYSIS\n===========================================\n\n")

	fmt.Fprintf(&b, "## VIDEO METADATA\n- Title: %q\n- Channel: %s\n- Views: %d\n- Likes: %d\n- Comments: %d\n- Published: %s\n- Duration: %s\n\n",
		data.Title, data.ChannelName, data.ViewCount, data.LikeCount, data.CommentCount, data.PublishedAt, data.Duration)

	desc := data.Description
	if desc == "" {
		desc = "No description available"
	}
	b.WriteString("## VIDEO DESCRIPTION\n")
	b.WriteString(engine.TruncateRunes(desc, 3000, ""))
	b.WriteString("\n")

	writeEngagementMetrics(&b, data)

	hasTranscript := tr != nil && tr.FullText != ""
	if hasTranscript {
		writeTranscriptSection(&b, tr)
	}

	comments := data.Comments
	if len(comments) > maxComments {
		comments = comments[:maxComments]
	}
	fmt.Fprintf(&b, "\n## ALL COMMENTS (%d total)\n", len(data.Comments))
	for i, c := range comments {
		if c.Replies > 0 {
			fmt.Fprintf(&b, "[%d] (%d likes, %d replies) %s\n", i+1, c.Likes, c.Replies, c.Text)
		} else {
			fmt.Fprintf(&b, "[%d] (%d likes) %s\n", i+1, c.Likes, c.Text)
		}
	}

	b.WriteString("\n===========================================\nANALYSIS FRAMEWORK\n===========================================\n\n")
	if hasTranscript {
		b.WriteString(transcriptInstructions)
	} else {
		b.WriteString(commentOnlyInstructions)
	}
	return b.String()
}

// writeEngagementMetrics precomputes what the model is bad at: ratios,
// counts, and the top-liked comment list.
func writeEngagementMetrics(b *strings.Builder, data *scrape.ScrapedData) {
	likeToView := 0.0
	commentToView := 0.0
	if data.ViewCount > 0 {
		likeToView = float64(data.LikeCount) / float64(data.ViewCount) * 100
		commentToView = float64(data.CommentCount) / float64(data.ViewCount) * 100
	}

	var totalLikes int64
	var questions []scrape.Comment
	positive, negative := 0, 0
	for _, c := range data.Comments {
		totalLikes += c.Likes
		if strings.Contains(c.Text, "?") {
			questions = append(questions, c)
		}
		lower := strings.ToLower(c.Text)
		if containsAny(lower, positiveIndicators) {
			positive++
		}
		if containsAny(lower, negativeIndicators) {
			negative++
		}
	}
	avgLikes := 0.0
	questionPct := 0.0
	if n := len(data.Comments); n > 0 {
		avgLikes = float64(totalLikes) / float64(n)
		questionPct = float64(len(questions)) / float64(n) * 100
	}

	top := make([]scrape.Comment, len(data.Comments))
	copy(top, data.Comments)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Likes > top[j].Likes })
	if len(top) > 20 {
		top = top[:20]
	}

	b.WriteString("\n## ENGAGEMENT METRICS (Pre-calculated)\n")
	fmt.Fprintf(b, "- Like/View Ratio: %.2f%% %s\n", likeToView, rateLikeRatio(likeToView))
	fmt.Fprintf(b, "- Comment/View Ratio: %.4f%%\n", commentToView)
	fmt.Fprintf(b, "- Average Likes per Comment: %.1f\n", avgLikes)
	fmt.Fprintf(b, "- Questions in Comments: %d (%.1f%%)\n", len(questions), questionPct)
	fmt.Fprintf(b, "- Detected Positive Comments: ~%d\n", positive)
	fmt.Fprintf(b, "- Detected Negative Comments: ~%d\n", negative)

	b.WriteString("\n## TOP 20 MOST-LIKED COMMENTS (These represent what resonated most)\n")
	for i, c := range top {
		fmt.Fprintf(b, "%d. [%d likes] %q\n", i+1, c.Likes, engine.TruncateRunes(c.Text, 300, "..."))
	}

	fmt.Fprintf(b, "\n## QUESTIONS FROM VIEWERS (%d total - showing top 30)\n", len(questions))
	if len(questions) > 30 {
		questions = questions[:30]
	}
	for i, c := range questions {
		fmt.Fprintf(b, "%d. [%d likes] %q\n", i+1, c.Likes, engine.TruncateRunes(c.Text, 200, ""))
	}
}

func writeTranscriptSection(b *strings.Builder, tr *transcript.Formatted) {
	words := engine.WordCount(tr.FullText)
	minutes := tr.TotalDuration / 60_000
	seconds := (tr.TotalDuration % 60_000) / 1000
	wpm := 0
	if tr.TotalDuration > 0 {
		wpm = int(float64(words) / (float64(tr.TotalDuration) / 60_000))
	}

	b.WriteString("\n## VIDEO TRANSCRIPT (Full script with timestamps)\n")
	fmt.Fprintf(b, "Duration: %d minutes %d seconds\n", minutes, seconds)
	fmt.Fprintf(b, "Word Count: ~%d words\n", words)
	fmt.Fprintf(b, "Estimated Speaking Rate: ~%d words/minute\n\n", wpm)
	b.WriteString(chunkTranscript(tr.Segments))
	b.WriteString("\n")
}

// chunkTranscript joins segments into ~500-char chunks, each prefixed
// with the timestamp of its first segment.
func chunkTranscript(segments []transcript.Segment) string {
	var chunks []string
	var current strings.Builder
	var chunkStart int64

	for _, seg := range segments {
		if current.Len() > 500 {
			chunks = append(chunks, fmt.Sprintf("[%s] %s", engine.FormatTimestamp(chunkStart), strings.TrimSpace(current.String())))
			current.Reset()
			chunkStart = seg.Offset
		}
		current.WriteString(seg.Text)
		current.WriteString(" ")
	}
	if text := strings.TrimSpace(current.String()); text != "" {
		chunks = append(chunks, fmt.Sprintf("[%s] %s", engine.FormatTimestamp(chunkStart), text))
	}
	return strings.Join(chunks, "\n\n")
}

func rateLikeRatio(pct float64) string {
	switch {
	case pct > 4:
		return "(Excellent)"
	case pct > 2:
		return "(Good)"
	default:
		return "(Below average)"
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

const commentOnlyInstructions = `Since no transcript is available, extract maximum insight from comments alone.

Analyze with these lenses: audience avatar, emotional triggers, content gaps, viral moments, objections, desired transformation.

Return your analysis in this EXACT JSON structure:

{
  "dataSourcesSummary": {"commentsAnalyzed": <number>, "transcriptAvailable": false},
  "sentiment": {
    "overall": "<positive|negative|mixed|neutral>",
    "score": <-1.0 to 1.0>,
    "distribution": {"positive": <0-100>, "negative": <0-100>, "neutral": <0-100>},
    "positiveDrivers": ["<what viewers loved>", "..."],
    "negativeDrivers": ["<what viewers disliked>", "..."]
  },
  "painPoints": [{"problem": "<specific problem>", "intensity": "<severe|moderate|mild>", "frequency": <count>, "sampleComments": ["<exact quotes>"], "potentialSolution": "<video idea addressing this>"}],
  "knowledgeGaps": [{"topic": "<what viewers do not understand>", "questionCount": <count>, "sampleQuestions": ["<exact questions>"], "suggestedContent": "<video idea>"}],
  "demandSignals": [{"request": "<what viewers asked for>", "frequency": <count>, "urgency": "<high|medium|low>", "sampleComments": ["<exact quotes>"], "businessPotential": "<opportunity>"}],
  "myths": [{"myth": "<misconception>", "prevalence": <count>, "correction": "<the truth>", "sampleComments": ["<exact quotes>"]}],
  "resonance": {
    "whatWorked": [{"aspect": "<what resonated>", "evidence": ["<supporting comments>"], "sentiment": "positive"}],
    "whatFlopped": [{"aspect": "<what did not>", "evidence": ["<supporting comments>"], "sentiment": "negative"}]
  },
  "topRecommendations": ["<specific action>", "..."],
  "contentIdeas": ["<proposed video title and angle>", "..."]
}`

const transcriptInstructions = `You have BOTH the full transcript AND comments: correlate what was said with how viewers reacted. Map comments to transcript moments, watch for timestamp mentions ("at 3:45..."), and evaluate the hook, structure, and delivery separately.

Return your analysis in this EXACT JSON structure:

{
  "dataSourcesSummary": {"commentsAnalyzed": <number>, "transcriptAvailable": true, "transcriptDuration": "<X minutes Y seconds>", "transcriptWordCount": <number>},
  "sentiment": {
    "overall": "<positive|negative|mixed|neutral>",
    "score": <-1.0 to 1.0>,
    "distribution": {"positive": <0-100>, "negative": <0-100>, "neutral": <0-100>},
    "positiveDrivers": ["<what viewers loved>", "..."],
    "negativeDrivers": ["<what viewers disliked>", "..."]
  },
  "hookAnalysis": {"hookType": "<curiosity|pain-point|promise|story|question|statistic|contrast>", "hookText": "<exact opening words>", "effectiveness": "<strong|moderate|weak>", "clarityScore": <1-10>, "timeToHook": <seconds>, "commentFeedback": ["<comments about the intro>"], "improvements": ["<specific fixes>"]},
  "scriptStructure": {"totalSections": <number>, "sections": [{"id": <n>, "title": "<descriptive>", "startTime": "<M:SS>", "endTime": "<M:SS>", "duration": <seconds>, "content": "<summary>", "purpose": "<hook|problem|solution|proof|story|cta>", "sentimentInSection": "<positive|negative|neutral|mixed>"}], "flowScore": <1-10>, "transitionQuality": "<smooth|adequate|choppy>", "logicalGaps": ["..."], "redundancies": ["..."]},
  "contentGaps": {"promisedContent": ["<from title/hook>"], "deliveredContent": ["<actually covered>"], "missingPieces": [{"topic": "<expected>", "viewerExpectation": "<what they wanted>", "actualCoverage": "<what they got>", "viewerFeedback": ["<quotes>"], "recommendation": "<fix>"}], "unexpectedBonuses": ["..."]},
  "painPoints": [{"problem": "<specific problem>", "intensity": "<severe|moderate|mild>", "frequency": <count>, "sampleComments": ["<exact quotes>"], "potentialSolution": "<video idea>"}],
  "knowledgeGaps": [{"topic": "<confusion>", "questionCount": <count>, "sampleQuestions": ["<exact questions>"], "suggestedContent": "<video idea>", "relatedTranscriptSection": "<M:SS - quote>"}],
  "demandSignals": [{"request": "<ask>", "frequency": <count>, "urgency": "<high|medium|low>", "sampleComments": ["<quotes>"], "businessPotential": "<opportunity>"}],
  "myths": [{"myth": "<misconception>", "prevalence": <count>, "correction": "<truth>", "sampleComments": ["<quotes>"], "transcriptReference": "<M:SS>"}],
  "resonance": {
    "whatWorked": [{"aspect": "<element>", "evidence": ["<comments>"], "sentiment": "positive", "transcriptTimestamp": "<M:SS>"}],
    "whatFlopped": [{"aspect": "<element>", "evidence": ["<comments>"], "sentiment": "negative", "transcriptTimestamp": "<M:SS>"}]
  },
  "topRecommendations": ["<specific action with exact implementation>", "..."],
  "contentIdeas": ["<proposed title and angle>", "..."]
}

Include SPECIFIC timestamps and transcript quotes as evidence. Every recommendation needs exact implementation details.`

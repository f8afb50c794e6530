package analysis

import "encoding/json"

// fallbackSentiment is the neutral stand-in used when the model output
// could not be parsed at all.
func fallbackSentiment() Sentiment {
	return Sentiment{
		Overall:         "mixed",
		Score:           0,
		Distribution:    Distribution{Positive: 50, Negative: 25, Neutral: 25},
		PositiveDrivers: []FlexText{},
		NegativeDrivers: []FlexText{},
	}
}

const fallbackRecommendation = "Unable to parse AI response - try a different model"

// assembleFields decodes the parsed top-level fields into the report,
// one field at a time: a field the model got wrong is replaced by its
// default instead of poisoning the rest.
func assembleFields(r *Report, fields map[string]json.RawMessage) {
	if fields == nil {
		r.Sentiment = fallbackSentiment()
		r.TopRecommendations = []FlexText{fallbackRecommendation}
		applyDefaults(r)
		return
	}

	decodeField(fields, "sentiment", &r.Sentiment)
	decodeField(fields, "painPoints", &r.PainPoints)
	decodeField(fields, "knowledgeGaps", &r.KnowledgeGaps)
	decodeField(fields, "demandSignals", &r.DemandSignals)
	decodeField(fields, "myths", &r.Myths)
	decodeField(fields, "resonance", &r.Resonance)
	decodeField(fields, "hookAnalysis", &r.HookAnalysis)
	decodeField(fields, "scriptStructure", &r.ScriptStructure)
	decodeField(fields, "contentGaps", &r.ContentGaps)
	decodeField(fields, "topRecommendations", &r.TopRecommendations)
	decodeField(fields, "contentIdeas", &r.ContentIdeas)

	applyDefaults(r)
}

func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// applyDefaults makes every slice field non-nil so consumers never see
// JSON null where a list belongs.
func applyDefaults(r *Report) {
	if r.Sentiment.Overall == "" {
		r.Sentiment.Overall = "neutral"
	}
	if r.Sentiment.PositiveDrivers == nil {
		r.Sentiment.PositiveDrivers = []FlexText{}
	}
	if r.Sentiment.NegativeDrivers == nil {
		r.Sentiment.NegativeDrivers = []FlexText{}
	}
	if r.PainPoints == nil {
		r.PainPoints = []PainPoint{}
	}
	if r.KnowledgeGaps == nil {
		r.KnowledgeGaps = []KnowledgeGap{}
	}
	if r.DemandSignals == nil {
		r.DemandSignals = []DemandSignal{}
	}
	if r.Myths == nil {
		r.Myths = []Myth{}
	}
	if r.Resonance.WhatWorked == nil {
		r.Resonance.WhatWorked = []ResonanceItem{}
	}
	if r.Resonance.WhatFlopped == nil {
		r.Resonance.WhatFlopped = []ResonanceItem{}
	}
	if r.TopRecommendations == nil {
		r.TopRecommendations = []FlexText{}
	}
	if r.ContentIdeas == nil {
		r.ContentIdeas = []FlexText{}
	}
	for i := range r.PainPoints {
		if r.PainPoints[i].SampleComments == nil {
			r.PainPoints[i].SampleComments = []string{}
		}
	}
	for i := range r.KnowledgeGaps {
		if r.KnowledgeGaps[i].SampleQuestions == nil {
			r.KnowledgeGaps[i].SampleQuestions = []string{}
		}
	}
	for i := range r.DemandSignals {
		if r.DemandSignals[i].SampleComments == nil {
			r.DemandSignals[i].SampleComments = []string{}
		}
	}
	for i := range r.Myths {
		if r.Myths[i].SampleComments == nil {
			r.Myths[i].SampleComments = []string{}
		}
	}
}

package ingest

import (
	"math"
	"strings"
)

// Sentiment is a lexicon-based polarity estimate for a piece of text.
type Sentiment struct {
	Score      float64 `json:"sentiment_score"`
	Label      string  `json:"sentiment_label"`
	Confidence float64 `json:"confidence"`
}

var positiveWords = wordSet(`good great excellent strong growth win wins won success successful boost boosted
record rally recover recovery gain gains surged surge soar soared improve improved improvement optimism
optimistic breakthrough advance advances agreement deal peace support approve approved praise praised hope
hopeful positive profit profits thrive thriving robust upbeat milestone landmark achievement celebrate`)

var negativeWords = wordSet(`bad poor weak decline declined drop dropped fall fell crash crashed crisis fail
failed failure loss losses lose losing cut cuts layoff layoffs fraud scandal war conflict attack attacked
threat threats fear fears concern concerns warn warned warning recession slump plunge plunged negative
death deaths dead injured disaster collapse bankrupt bankruptcy lawsuit strike protest violence risk`)

func wordSet(words string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// AnalyzeSentiment scores text in [-1, 1] from a polarity lexicon.
// Neutral band is +-0.05, mirroring the usual compound-score cutoffs.
func AnalyzeSentiment(text string) Sentiment {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return Sentiment{Score: 0, Label: "neutral", Confidence: 0}
	}

	var pos, neg int
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			pos++
		} else if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	matched := pos + neg
	if matched == 0 {
		return Sentiment{Score: 0, Label: "neutral", Confidence: 0.5}
	}

	// Normalize against text length so one strong word in a long article
	// does not dominate.
	score := float64(pos-neg) / math.Sqrt(float64(len(words)))
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	label := "neutral"
	switch {
	case score >= 0.05:
		label = "positive"
	case score <= -0.05:
		label = "negative"
	}

	confidence := float64(matched) / float64(len(words))
	if confidence > 1 {
		confidence = 1
	}
	return Sentiment{Score: score, Label: label, Confidence: confidence}
}

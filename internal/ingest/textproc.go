package ingest

import (
	"regexp"
	"sort"
	"strings"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^\w\s.,!?-]`)
	wordRe       = regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]+`)
)

// CleanText normalizes raw article text: strips HTML tags and URLs,
// collapses whitespace and drops characters outside basic punctuation.
func CleanText(text string) string {
	text = htmlTagRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// stopwords is the usual english list, enough to keep frequency counting
// from electing "the" as a topic.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because
been before being below between both but by could did do does doing down during each few for from further had
has have having he her here hers herself him himself his how i if in into is it its itself just me more most
my myself no nor not now of off on once only or other our ours ourselves out over own said say says she should
so some such than that the their theirs them themselves then there these they this those through to too under
until up very was we were what when where which while who whom why will with would you your yours yourself
new news says year yearsday days one two also first last`) {
		stopwords[w] = struct{}{}
	}
}

// MainTopic picks the most frequent non-stopword term in the text as a
// rough topic label. Returns "General" when nothing qualifies.
func MainTopic(text string) string {
	counts := map[string]int{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 4 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return "General"
	}
	type freq struct {
		word  string
		count int
	}
	ranked := make([]freq, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, freq{w, c})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].count != ranked[b].count {
			return ranked[a].count > ranked[b].count
		}
		return ranked[a].word < ranked[b].word
	})
	return capitalize(ranked[0].word)
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// SummarySentences returns the first n sentences of text as a cheap
// extractive summary, used when the LLM summary is unavailable.
func SummarySentences(text string, n int) string {
	if n <= 0 {
		n = 3
	}
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
			if len(sentences) == n {
				break
			}
		}
	}
	if len(sentences) == 0 {
		if len(text) > 500 {
			return text[:500]
		}
		return text
	}
	return strings.Join(sentences, " ")
}

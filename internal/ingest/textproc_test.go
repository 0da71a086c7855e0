package ingest

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"html tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"urls", "read more at https://example.com/x?y=1 today", "read more at today"},
		{"www urls", "see www.example.com now", "see now"},
		{"whitespace", "a\n\n  b\t c", "a b c"},
		{"special chars", "price: $40 (up 5%)!", "price 40 up 5!"},
		{"keeps punctuation", "Wait, really? Yes.", "Wait, really? Yes."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMainTopic(t *testing.T) {
	text := "The election results surprised analysts. Election turnout broke records as election officials counted votes."
	if got := MainTopic(text); got != "Election" {
		t.Fatalf("MainTopic = %q, want Election", got)
	}
}

func TestMainTopicFallsBackToGeneral(t *testing.T) {
	for _, text := range []string{"", "a an the of", "is it to do"} {
		if got := MainTopic(text); got != "General" {
			t.Fatalf("MainTopic(%q) = %q, want General", text, got)
		}
	}
}

func TestMainTopicIgnoresShortAndStopWords(t *testing.T) {
	if got := MainTopic("the the the new new cat cat economy economy economy"); got != "Economy" {
		t.Fatalf("MainTopic = %q, want Economy", got)
	}
}

func TestSummarySentences(t *testing.T) {
	text := "First point. Second point. Third point. Fourth point."
	got := SummarySentences(text, 2)
	if got != "First point. Second point." {
		t.Fatalf("SummarySentences = %q", got)
	}
}

func TestSummarySentencesShortText(t *testing.T) {
	if got := SummarySentences("no terminator here", 3); got != "no terminator here" {
		t.Fatalf("SummarySentences = %q", got)
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	pos := AnalyzeSentiment("Markets rally as strong growth and record profits boost optimism.")
	if pos.Label != "positive" || pos.Score <= 0 {
		t.Fatalf("positive text scored %+v", pos)
	}
	neg := AnalyzeSentiment("Stocks crash amid recession fears, layoffs and bankruptcy warnings.")
	if neg.Label != "negative" || neg.Score >= 0 {
		t.Fatalf("negative text scored %+v", neg)
	}
	neu := AnalyzeSentiment("The committee met on Tuesday to discuss the agenda.")
	if neu.Label != "neutral" {
		t.Fatalf("neutral text scored %+v", neu)
	}
	if empty := AnalyzeSentiment(""); empty.Label != "neutral" || empty.Score != 0 {
		t.Fatalf("empty text scored %+v", empty)
	}
}

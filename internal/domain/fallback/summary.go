// Package fallback holds the local, deterministic substitutes for every
// remote capability. Nothing here performs I/O.
package fallback

import (
	"strings"
	"unicode"

	"github.com/okian/campusai/internal/domain/text"
)

// Model tags reported when a fallback produced the result.
const (
	ModelExtractive        = "fallback:extractive"
	ModelKeywordModeration = "fallback:keyword-moderation"
	ModelLexicalMatch      = "fallback:lexical-match"
	ModelTemplate          = "fallback:template"
	ModelTemplateCheckin   = "fallback:template-checkin"
)

// NoTextSummary is returned when there is nothing to summarize.
const NoTextSummary = "No text supplied."

// SplitSentences splits s after '.', '!' or '?' when followed by whitespace
// or the end of input. Empty pieces are dropped.
func SplitSentences(s string) []string {
	s = text.Collapse(s)
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var (
		out   []string
		start int
	)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if piece := strings.TrimSpace(string(runes[start : i+1])); piece != "" {
			out = append(out, piece)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

// ExtractiveSummary returns every sentence when there are at most three,
// otherwise the first, middle and last sentences joined by spaces.
func ExtractiveSummary(s string) string {
	sentences := SplitSentences(s)
	if len(sentences) <= 3 {
		return strings.Join(sentences, " ")
	}
	return strings.Join([]string{
		sentences[0],
		sentences[len(sentences)/2],
		sentences[len(sentences)-1],
	}, " ")
}

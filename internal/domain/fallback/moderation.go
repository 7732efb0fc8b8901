package fallback

import (
	"strings"
	"unicode"

	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/text"
)

// DefaultModerationThreshold flags content at or above this score.
const DefaultModerationThreshold = 0.65

// CategoryClean and CategoryToxicity are the keyword heuristic's labels.
const (
	CategoryClean    = "clean"
	CategoryToxicity = "toxicity"
)

const (
	keywordHitWeight = 0.2
	keywordHitBase   = 0.25
	keywordNoHitBase = 0.05
	monitorThreshold = 0.35
)

// toxicTerms are matched on word boundaries against folded text.
var toxicTerms = []string{
	"idiot", "stupid", "dumb", "moron", "loser", "trash", "pathetic",
	"worthless", "useless", "ugly", "shut up", "hate you", "kill you",
}

// ModerationAdvice turns a verdict into the recommendation shown to moderators.
func ModerationAdvice(flagged bool, score float64) string {
	switch {
	case flagged:
		return "Hold for moderator review before publishing."
	case score >= monitorThreshold:
		return "Publish but keep an eye on the thread; the tone is borderline."
	default:
		return "Safe to publish."
	}
}

// EmptyModeration is the verdict for blank input.
func EmptyModeration() model.ModerationResult {
	return model.ModerationResult{
		Flagged:        false,
		Score:          0,
		Categories:     []string{CategoryClean},
		Recommendation: "No content to review.",
		Model:          model.ModelEmptyInput,
		UsedFallback:   false,
	}
}

// KeywordHits counts distinct toxic terms present in s.
func KeywordHits(s string) int {
	padded := " " + wordsOnly(text.Fold(s)) + " "
	hits := 0
	for _, term := range toxicTerms {
		if strings.Contains(padded, " "+term+" ") {
			hits++
		}
	}
	return hits
}

// KeywordModeration scores s with the keyword heuristic:
// min(1, hits*0.2 + (hits>0 ? 0.25 : 0.05)), flagged at threshold.
func KeywordModeration(s string, threshold float64) model.ModerationResult {
	hits := KeywordHits(s)
	base := keywordNoHitBase
	if hits > 0 {
		base = keywordHitBase
	}
	score := model.NormalizeScore(float64(hits)*keywordHitWeight + base)
	flagged := score >= threshold
	category := CategoryClean
	if hits > 0 {
		category = CategoryToxicity
	}
	return model.ModerationResult{
		Flagged:        flagged,
		Score:          score,
		Categories:     []string{category},
		Recommendation: ModerationAdvice(flagged, score),
		Model:          ModelKeywordModeration,
		UsedFallback:   true,
	}
}

// wordsOnly replaces everything but letters and digits with single spaces.
func wordsOnly(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

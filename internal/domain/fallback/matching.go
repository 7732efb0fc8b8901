package fallback

import (
	"math"

	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/text"
)

// LexicalWeights parameterize the lexical-only ranking.
type LexicalWeights struct {
	Overlap         float64
	LocationBoost   float64
	StrongThreshold float64
}

// DefaultLexicalWeights are 0.85 overlap, +0.10 location, strong at 0.65.
var DefaultLexicalWeights = LexicalWeights{Overlap: 0.85, LocationBoost: 0.10, StrongThreshold: 0.65}

const (
	reasonLexicalStrong  = "Strong match based on your skills and interests."
	reasonLexicalPartial = "Partial match. Add more relevant skills for higher ranking."
)

// Overlap is the number of shared terms (case-insensitive, deduplicated)
// divided by the size of the larger list. Either list empty yields 0.
func Overlap(a, b []string) float64 {
	ta, tb := text.Terms(a), text.Terms(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		set[t] = struct{}{}
	}
	shared := 0
	for _, t := range ta {
		if _, ok := set[t]; ok {
			shared++
		}
	}
	return float64(shared) / math.Max(float64(len(ta)), float64(len(tb)))
}

// LocationMatches is true for remote opportunities, or when the profile's
// location is a case-insensitive substring of the opportunity's.
// An empty profile location never matches.
func LocationMatches(p model.StudentProfile, o model.Opportunity) bool {
	return o.IsRemote || text.ContainsFold(o.Location, p.Location)
}

// ProfileTerms are the profile's skills and interests.
func ProfileTerms(p model.StudentProfile) []string {
	return text.Terms(p.Skills, p.Interests)
}

// LexicalMatch ranks opportunities without any embeddings:
// min(1, overlap(profile, skills+tags+requirements)*Overlap + boost).
func LexicalMatch(p model.StudentProfile, opps []model.Opportunity, w LexicalWeights) []model.MatchResult {
	profileTerms := ProfileTerms(p)
	out := make([]model.MatchResult, 0, len(opps))
	for _, o := range opps {
		boost := 0.0
		if LocationMatches(p, o) {
			boost = w.LocationBoost
		}
		overlap := Overlap(profileTerms, text.Terms(o.Skills, o.Tags, o.Requirements))
		score := model.NormalizeScore(math.Min(1, overlap*w.Overlap+boost))
		reason := reasonLexicalPartial
		if score >= w.StrongThreshold {
			reason = reasonLexicalStrong
		}
		out = append(out, model.MatchResult{Opportunity: o, Score: score, Reason: reason})
	}
	model.SortByScore(out)
	return out
}

// Package model contains domain models passed between layers.
package model

import (
	"math"
	"sort"
	"strings"
)

// OpportunityType enumerates the listing kinds the portal publishes.
type OpportunityType string

const (
	TypeScholarship OpportunityType = "scholarship"
	TypeBursary     OpportunityType = "bursary"
	TypeGig         OpportunityType = "gig"
	TypeInternship  OpportunityType = "internship"
	TypeGrant       OpportunityType = "grant"
)

// Valid reports whether t is one of the known opportunity types.
func (t OpportunityType) Valid() bool {
	switch t {
	case TypeScholarship, TypeBursary, TypeGig, TypeInternship, TypeGrant:
		return true
	}
	return false
}

// StudentProfile is the feature bag used for matching. It carries no identity.
type StudentProfile struct {
	University string   `json:"university,omitempty"`
	Department string   `json:"department,omitempty"`
	Level      string   `json:"level,omitempty"`
	GPA        *float64 `json:"gpa,omitempty"`
	Location   string   `json:"location,omitempty"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
}

// Opportunity is a read-only listing owned by the portal's data store.
type Opportunity struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Type           OpportunityType `json:"type"`
	Organization   string          `json:"organization"`
	Description    string          `json:"description"`
	Amount         *float64        `json:"amount,omitempty"`
	Currency       string          `json:"currency,omitempty"`
	Deadline       string          `json:"deadline"`
	Requirements   []string        `json:"requirements"`
	Skills         []string        `json:"skills"`
	Location       string          `json:"location"`
	IsRemote       bool            `json:"isRemote"`
	ApplicationURL string          `json:"applicationUrl"`
	Tags           []string        `json:"tags"`
	CreatedAt      string          `json:"createdAt"`
}

// MatchResult pairs an opportunity with its relevance for one profile.
type MatchResult struct {
	Opportunity Opportunity `json:"opportunity"`
	Score       float64     `json:"score"`
	Reason      string      `json:"reason"`
}

// MatchReport is the ranked list plus how it was produced.
type MatchReport struct {
	Matches      []MatchResult `json:"matches"`
	Model        string        `json:"model"`
	UsedFallback bool          `json:"usedFallback"`
}

// SummaryResult is returned by summarization.
type SummaryResult struct {
	Summary      string `json:"summary"`
	Model        string `json:"model"`
	UsedFallback bool   `json:"usedFallback"`
}

// TranslationResult is returned by translation.
type TranslationResult struct {
	Translation  string `json:"translation"`
	Model        string `json:"model"`
	UsedFallback bool   `json:"usedFallback"`
}

// LabelScore is one class score from a classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ModerationResult is returned by moderation.
type ModerationResult struct {
	Flagged        bool     `json:"flagged"`
	Score          float64  `json:"score"`
	Categories     []string `json:"categories"`
	Recommendation string   `json:"recommendation"`
	Model          string   `json:"model"`
	UsedFallback   bool     `json:"usedFallback"`
}

// CheckinResult is returned by the wellness check-in.
type CheckinResult struct {
	Urgent       bool     `json:"urgent"`
	Response     string   `json:"response"`
	FollowUps    []string `json:"followUps"`
	Model        string   `json:"model"`
	UsedFallback bool     `json:"usedFallback"`
}

// Provenance tags used in the Model field when no remote model answered.
const (
	ModelIdentity         = "identity"
	ModelEmptyInput       = "empty-input"
	ModelSafetyEscalation = "safety-escalation"
	FallbackPrefix        = "fallback:"
)

// IsFallbackModel reports whether a model tag names a local fallback.
func IsFallbackModel(tag string) bool {
	return strings.HasPrefix(tag, FallbackPrefix)
}

// Clamp01 limits x to [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// Round3 rounds to three decimal places.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// NormalizeScore clamps to [0,1] then rounds to three decimals.
func NormalizeScore(x float64) float64 {
	return Round3(Clamp01(x))
}

// SortByScore orders matches by descending score, keeping input order for ties.
func SortByScore(matches []MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

// Package safety screens wellness check-ins for crisis language.
package safety

import (
	"strings"

	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/text"
)

// riskPhrases are matched as case-insensitive substrings of the raw message.
var riskPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"want to die",
	"self harm",
	"self-harm",
	"hurt myself",
	"cut myself",
	"no reason to live",
	"better off dead",
}

// Hotline is a crisis contact included in every escalation.
type Hotline struct {
	Name   string
	Number string
}

// Hotlines lists the contacts quoted in the crisis response.
var Hotlines = []Hotline{
	{Name: "SADAG", Number: "0800 567 567"},
	{Name: "Lifeline South Africa", Number: "0861 322 322"},
	{Name: "Emergency services", Number: "112"},
}

// FollowUps are the grounding questions asked on escalation.
var FollowUps = []string{
	"Are you safe right now?",
	"Is there someone you trust who can be with you right now?",
}

// Detect reports whether message contains any risk phrase, and which one.
func Detect(message string) (string, bool) {
	for _, phrase := range riskPhrases {
		if text.ContainsFold(message, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// CrisisResponse is the fixed urgent reply. It never depends on remote output.
func CrisisResponse() model.CheckinResult {
	return model.CheckinResult{
		Urgent: true,
		Response: "It sounds like you are going through something really painful, and you do not have to face it alone. " +
			"Please reach out now: " + hotlineText() + ". " +
			"If you are in immediate danger, call emergency services or go to your nearest campus clinic.",
		FollowUps:    append([]string(nil), FollowUps...),
		Model:        model.ModelSafetyEscalation,
		UsedFallback: false,
	}
}

func hotlineText() string {
	parts := make([]string, 0, len(Hotlines))
	for _, h := range Hotlines {
		parts = append(parts, h.Name+" "+h.Number)
	}
	return strings.Join(parts, ", ")
}

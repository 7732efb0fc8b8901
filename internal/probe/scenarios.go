package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Scenario is one request with the checks its response must pass.
type Scenario struct {
	Name   string
	Path   string
	Body   any
	Status int
	// Check validates a response body. local is true when the server has no
	// remote access, so fallback output is fully predictable.
	Check func(body []byte, local bool) error
}

// envelope holds the provenance fields shared by every capability result.
type envelope struct {
	Model        string `json:"model"`
	UsedFallback bool   `json:"usedFallback"`
}

const probeArticle = "The library extends its opening hours during exams. " +
	"Study rooms can be booked online. Printing credits are topped up weekly. " +
	"Quiet zones are enforced after 8pm. Staff are available at the help desk."

// Scenarios returns the fixed probe set.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name: "summarize", Path: "/v1/summarize", Status: http.StatusOK,
			Body: map[string]string{"text": probeArticle},
			Check: func(body []byte, local bool) error {
				var r struct {
					envelope
					Summary string `json:"summary"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				if strings.TrimSpace(r.Summary) == "" {
					return errors.New("empty summary")
				}
				want := "The library extends its opening hours during exams. " +
					"Printing credits are topped up weekly. Staff are available at the help desk."
				if local && r.Summary != want {
					return fmt.Errorf("extractive summary %q, want %q", r.Summary, want)
				}
				return checkEnvelope(r.envelope, local)
			},
		},
		{
			Name: "summarize-empty", Path: "/v1/summarize", Status: http.StatusOK,
			Body: map[string]string{"text": "   "},
			Check: func(body []byte, _ bool) error {
				var r struct {
					envelope
					Summary string `json:"summary"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				return expect(r.Model == "empty-input" && r.UsedFallback && r.Summary != "",
					"blank text must short-circuit, got %+v", r)
			},
		},
		{
			Name: "translate-identity", Path: "/v1/translate", Status: http.StatusOK,
			Body: map[string]string{"text": "Welcome to campus", "targetLanguage": "en"},
			Check: func(body []byte, _ bool) error {
				var r struct {
					envelope
					Translation string `json:"translation"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				return expect(r.Translation == "Welcome to campus" && r.Model == "identity" && !r.UsedFallback,
					"english target must be identity, got %+v", r)
			},
		},
		{
			Name: "translate-zulu", Path: "/v1/translate", Status: http.StatusOK,
			Body: map[string]string{"text": "Welcome to campus", "targetLanguage": "zu"},
			Check: func(body []byte, local bool) error {
				var r struct {
					envelope
					Translation string `json:"translation"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				if r.UsedFallback && !strings.HasPrefix(r.Translation, "[isiZulu/isiXhosa preview] ") {
					return fmt.Errorf("fallback translation %q lacks preview prefix", r.Translation)
				}
				return checkEnvelope(r.envelope, local)
			},
		},
		{
			Name: "moderate", Path: "/v1/moderate", Status: http.StatusOK,
			Body: map[string]string{"text": "You are an idiot and your idea is stupid"},
			Check: func(body []byte, local bool) error {
				var r struct {
					envelope
					Flagged    bool     `json:"flagged"`
					Score      float64  `json:"score"`
					Categories []string `json:"categories"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				if err := checkScore(r.Score); err != nil {
					return err
				}
				if len(r.Categories) == 0 {
					return errors.New("no categories")
				}
				if local && (!r.Flagged || r.Score != 0.65) {
					return fmt.Errorf("keyword moderation got flagged=%v score=%v", r.Flagged, r.Score)
				}
				return checkEnvelope(r.envelope, local)
			},
		},
		{
			Name: "moderate-empty", Path: "/v1/moderate", Status: http.StatusOK,
			Body: map[string]string{"text": ""},
			Check: func(body []byte, _ bool) error {
				var r struct {
					envelope
					Flagged bool `json:"flagged"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				return expect(!r.Flagged && r.Model == "empty-input" && !r.UsedFallback,
					"blank moderation must be clean, got %+v", r)
			},
		},
		{
			Name: "match", Path: "/v1/opportunities/match", Status: http.StatusOK,
			Body: matchBody(),
			Check: func(body []byte, local bool) error {
				var r struct {
					envelope
					Matches []struct {
						Opportunity struct {
							ID string `json:"id"`
						} `json:"opportunity"`
						Score  float64 `json:"score"`
						Reason string  `json:"reason"`
					} `json:"matches"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				if len(r.Matches) != 3 {
					return fmt.Errorf("got %d matches, want 3", len(r.Matches))
				}
				for i, m := range r.Matches {
					if err := checkScore(m.Score); err != nil {
						return err
					}
					if i > 0 && m.Score > r.Matches[i-1].Score {
						return fmt.Errorf("matches not sorted at %d", i)
					}
				}
				if local && (r.Matches[0].Opportunity.ID != "web-intern" || r.Matches[0].Score != 0.95) {
					return fmt.Errorf("lexical top match %s=%v, want web-intern=0.95",
						r.Matches[0].Opportunity.ID, r.Matches[0].Score)
				}
				return checkEnvelope(r.envelope, local)
			},
		},
		{
			Name: "checkin", Path: "/v1/checkin", Status: http.StatusOK,
			Body: map[string]string{"message": "Assignments are piling up this week", "mood": "stressed"},
			Check: func(body []byte, local bool) error {
				var r struct {
					envelope
					Urgent    bool     `json:"urgent"`
					Response  string   `json:"response"`
					FollowUps []string `json:"followUps"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				if r.Urgent || len(r.FollowUps) != 2 || r.Response == "" {
					return fmt.Errorf("unexpected check-in reply %+v", r)
				}
				return checkEnvelope(r.envelope, local)
			},
		},
		{
			Name: "checkin-crisis", Path: "/v1/checkin", Status: http.StatusOK,
			Body: map[string]string{"message": "I don't see a reason to go on, I want to die", "mood": "hopeless"},
			Check: func(body []byte, _ bool) error {
				var r struct {
					envelope
					Urgent bool `json:"urgent"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				return expect(r.Urgent && r.Model == "safety-escalation" && !r.UsedFallback,
					"crisis language must escalate, got %+v", r)
			},
		},
		{
			Name: "bad-request", Path: "/v1/summarize", Status: http.StatusBadRequest,
			Body: map[string]string{"content": "wrong field"},
			Check: func(body []byte, _ bool) error {
				var r struct {
					Code string `json:"code"`
				}
				if err := decode(body, &r); err != nil {
					return err
				}
				return expect(r.Code == "bad_request", "error code %q", r.Code)
			},
		},
	}
}

func matchBody() map[string]any {
	return map[string]any{
		"profile": map[string]any{
			"department": "Computer Science",
			"location":   "Johannesburg",
			"skills":     []string{"React", "TypeScript"},
			"interests":  []string{"web"},
		},
		"opportunities": []map[string]any{
			{"id": "bursary", "title": "Engineering bursary", "type": "bursary", "skills": []string{"mathematics"}, "location": "Durban"},
			{"id": "web-intern", "title": "Frontend intern", "type": "internship", "skills": []string{"react", "typescript"}, "tags": []string{"web"}, "isRemote": true},
			{"id": "tutor", "title": "Maths tutor", "type": "gig", "skills": []string{"teaching"}, "location": "Johannesburg North"},
		},
	}
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	return nil
}

func checkEnvelope(e envelope, local bool) error {
	if e.Model == "" {
		return errors.New("missing model")
	}
	if local && !e.UsedFallback {
		return fmt.Errorf("model %q answered without remote access but usedFallback=false", e.Model)
	}
	return nil
}

func checkScore(s float64) error {
	return expect(s >= 0 && s <= 1, "score %v outside [0,1]", s)
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf(format, args...)
}

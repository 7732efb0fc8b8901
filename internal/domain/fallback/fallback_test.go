package fallback_test

import (
	"strings"
	"testing"

	"github.com/okian/campusai/internal/domain/fallback"
	"github.com/okian/campusai/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractiveSummary(t *testing.T) {
	Convey("Given prose to summarize locally", t, func() {
		Convey("When it has three sentences or fewer", func() {
			So(fallback.ExtractiveSummary("One. Two!  Three?"), ShouldEqual, "One. Two! Three?")
		})

		Convey("When it has more than three sentences", func() {
			in := "First point. Second point. Third point. Fourth point. Fifth point."
			So(fallback.ExtractiveSummary(in), ShouldEqual, "First point. Third point. Fifth point.")
		})

		Convey("Then decimals and abbreviations without trailing space do not split", func() {
			So(fallback.SplitSentences("Fees rose 2.5 percent. Done"), ShouldResemble,
				[]string{"Fees rose 2.5 percent.", "Done"})
		})

		Convey("And blank input has no sentences", func() {
			So(fallback.SplitSentences("   "), ShouldBeEmpty)
			So(fallback.ExtractiveSummary(""), ShouldEqual, "")
		})

		Convey("And the result is stable across calls", func() {
			in := "A. B. C. D. E. F."
			So(fallback.ExtractiveSummary(in), ShouldEqual, fallback.ExtractiveSummary(in))
			So(fallback.ExtractiveSummary(in), ShouldEqual, "A. D. F.")
		})
	})
}

func TestKeywordModeration(t *testing.T) {
	Convey("Given the keyword heuristic", t, func() {
		Convey("When the text is clean", func() {
			res := fallback.KeywordModeration("Great lecture today, thanks!", fallback.DefaultModerationThreshold)
			So(res.Flagged, ShouldBeFalse)
			So(res.Score, ShouldEqual, 0.05)
			So(res.Categories, ShouldResemble, []string{"clean"})
			So(res.Model, ShouldEqual, fallback.ModelKeywordModeration)
			So(res.UsedFallback, ShouldBeTrue)
			So(res.Recommendation, ShouldEqual, "Safe to publish.")
		})

		Convey("When one term appears", func() {
			res := fallback.KeywordModeration("That was a STUPID question", fallback.DefaultModerationThreshold)
			So(res.Score, ShouldEqual, 0.45)
			So(res.Flagged, ShouldBeFalse)
			So(res.Categories, ShouldResemble, []string{"toxicity"})
			So(res.Recommendation, ShouldStartWith, "Publish but keep an eye")
		})

		Convey("When two terms appear the post is flagged", func() {
			res := fallback.KeywordModeration("You idiot, you are useless.", fallback.DefaultModerationThreshold)
			So(res.Score, ShouldEqual, 0.65)
			So(res.Flagged, ShouldBeTrue)
			So(res.Recommendation, ShouldStartWith, "Hold for moderator review")
		})

		Convey("Then terms only match on word boundaries", func() {
			So(fallback.KeywordHits("dumbbell trashcan"), ShouldEqual, 0)
			So(fallback.KeywordHits("shut   up!"), ShouldEqual, 1)
		})

		Convey("And many hits are capped at 1", func() {
			res := fallback.KeywordModeration("idiot stupid dumb moron loser trash", fallback.DefaultModerationThreshold)
			So(res.Score, ShouldEqual, 1.0)
		})
	})
}

func TestEmptyModeration(t *testing.T) {
	Convey("Given blank content", t, func() {
		res := fallback.EmptyModeration()
		So(res.Flagged, ShouldBeFalse)
		So(res.Categories, ShouldResemble, []string{"clean"})
		So(res.Model, ShouldEqual, model.ModelEmptyInput)
		So(res.UsedFallback, ShouldBeFalse)
	})
}

func TestTemplateTranslation(t *testing.T) {
	Convey("Given a target language", t, func() {
		So(fallback.TemplateTranslation("Hello", "xh"), ShouldEqual, "[isiZulu/isiXhosa preview] Hello")
		So(fallback.TemplateTranslation("Hello", "TN"), ShouldEqual, "[Sesotho/Setswana preview] Hello")
		So(fallback.TemplateTranslation("Hello", "af"), ShouldEqual, "[Afrikaans preview] Hello")
		So(fallback.TemplateTranslation("Hello", "de"), ShouldEqual, "[Translation preview: de] Hello")
	})
}

func TestTemplateCheckin(t *testing.T) {
	Convey("Given a stated mood", t, func() {
		res := fallback.TemplateCheckin("  Anxious ")
		So(res.Response, ShouldContainSubstring, "feeling anxious")
		So(res.FollowUps, ShouldHaveLength, 2)
		So(res.Urgent, ShouldBeFalse)
		So(res.UsedFallback, ShouldBeTrue)
		So(res.Model, ShouldEqual, fallback.ModelTemplateCheckin)

		Convey("When no mood is given it says unsure", func() {
			So(fallback.TemplateCheckin("").Response, ShouldContainSubstring, "feeling unsure")
		})

		Convey("Then follow-ups are copies", func() {
			res.FollowUps[0] = "changed"
			So(fallback.TemplateCheckin("ok").FollowUps[0], ShouldEqual, fallback.CheckinFollowUps[0])
		})
	})

	Convey("Given a blank check-in", t, func() {
		res := fallback.EmptyCheckin()
		So(res.Model, ShouldEqual, model.ModelEmptyInput)
		So(res.UsedFallback, ShouldBeTrue)
		So(strings.TrimSpace(res.Response), ShouldNotBeEmpty)
	})
}

func TestOverlap(t *testing.T) {
	Convey("Given two tag lists", t, func() {
		So(fallback.Overlap([]string{"React", "TypeScript"}, []string{"react", "typescript", "css", "html"}), ShouldEqual, 0.5)
		So(fallback.Overlap([]string{"Go", "go"}, []string{"GO"}), ShouldEqual, 1.0)
		So(fallback.Overlap(nil, []string{"x"}), ShouldEqual, 0.0)
		So(fallback.Overlap([]string{"x"}, nil), ShouldEqual, 0.0)
	})
}

func TestLexicalMatch(t *testing.T) {
	Convey("Given a profile and opportunities", t, func() {
		profile := model.StudentProfile{
			Location:  "Cape Town",
			Skills:    []string{"React", "TypeScript"},
			Interests: []string{"web"},
		}
		opps := []model.Opportunity{
			{ID: "far", Location: "Johannesburg", Skills: []string{"accounting"}},
			{ID: "close", Location: "Cape Town CBD", Skills: []string{"react", "typescript"}, Tags: []string{"web"}},
			{ID: "remote", IsRemote: true, Skills: []string{"python"}},
		}

		results := fallback.LexicalMatch(profile, opps, fallback.DefaultLexicalWeights)

		Convey("Then results are ranked by descending score", func() {
			So(results, ShouldHaveLength, 3)
			So(results[0].Opportunity.ID, ShouldEqual, "close")
			So(results[0].Score, ShouldEqual, 0.95)
			So(results[0].Reason, ShouldStartWith, "Strong match")
			So(results[1].Opportunity.ID, ShouldEqual, "remote")
			So(results[1].Score, ShouldEqual, 0.1)
			So(results[2].Opportunity.ID, ShouldEqual, "far")
			So(results[2].Score, ShouldEqual, 0.0)
			So(results[2].Reason, ShouldStartWith, "Partial match")
		})

		Convey("And an empty profile location only boosts remote listings", func() {
			p := profile
			p.Location = ""
			So(fallback.LocationMatches(p, opps[1]), ShouldBeFalse)
			So(fallback.LocationMatches(p, opps[2]), ShouldBeTrue)
		})

		Convey("And no opportunities yields an empty slice", func() {
			So(fallback.LexicalMatch(profile, nil, fallback.DefaultLexicalWeights), ShouldBeEmpty)
		})
	})
}

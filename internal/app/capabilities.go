package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/campusai/internal/domain/fallback"
	"github.com/okian/campusai/internal/domain/ladder"
	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/registry"
	"github.com/okian/campusai/internal/domain/safety"
	"github.com/okian/campusai/internal/domain/text"
	"github.com/okian/campusai/pkg/logger"
	"github.com/okian/campusai/pkg/metrics"
)

const (
	categoryMinScore = 0.2
	maxCategories    = 3
)

var toxicLabel = regexp.MustCompile(`(?i)toxic|insult|threat|obscene|hate|harass|abuse`)

// checkinParams are the generation settings for wellness replies.
var checkinParams = map[string]any{
	"max_new_tokens": 160,
	"temperature":    0.7,
	"top_p":          0.9,
	"do_sample":      true,
}

// Summarize condenses input. The primary model is tried, then each
// secondary model, then an extractive summary of the input itself.
func (s *Service) Summarize(ctx context.Context, input string) model.SummaryResult {
	t := text.Normalize(input)
	if text.IsBlank(t) {
		s.fastPath(ctx, registry.Summarization, model.ModelEmptyInput)
		return model.SummaryResult{Summary: fallback.NoTextSummary, Model: model.ModelEmptyInput, UsedFallback: true}
	}

	rungs := remoteRungs(s.registry.Candidates(registry.Summarization), func(ctx context.Context, id string) (string, error) {
		return s.remote.Summarize(ctx, id, t)
	})
	summary, out := ladder.Climb(ctx, rungs, ladder.Final[string]{
		Name:    fallback.ModelExtractive,
		Produce: func() string { return fallback.ExtractiveSummary(t) },
	})
	s.settled(ctx, registry.Summarization, out, "")
	return model.SummaryResult{Summary: summary, Model: out.Step, UsedFallback: out.Fallback}
}

// Translate renders input in targetLanguage. English or a blank target
// returns the input unchanged.
func (s *Service) Translate(ctx context.Context, input, targetLanguage string) model.TranslationResult {
	lang := strings.ToLower(strings.TrimSpace(targetLanguage))
	if lang == "" || lang == registry.SourceLanguage {
		s.fastPath(ctx, registry.Translation, model.ModelIdentity)
		return model.TranslationResult{Translation: input, Model: model.ModelIdentity, UsedFallback: false}
	}
	t := text.Normalize(input)
	if text.IsBlank(t) {
		s.fastPath(ctx, registry.Translation, model.ModelEmptyInput)
		return model.TranslationResult{Translation: "", Model: model.ModelEmptyInput, UsedFallback: false}
	}

	var (
		rungs  []ladder.Rung[string]
		reason string
	)
	if locale, ok := registry.TranslationLocale(lang); ok {
		rungs = remoteRungs([]string{s.registry.Primary(registry.Translation)}, func(ctx context.Context, id string) (string, error) {
			return s.remote.Translate(ctx, id, t, registry.SourceLocale, locale)
		})
	} else {
		reason = reasonUnsupported
	}
	translation, out := ladder.Climb(ctx, rungs, ladder.Final[string]{
		Name:    fallback.ModelTemplate,
		Produce: func() string { return fallback.TemplateTranslation(t, lang) },
	})
	s.settled(ctx, registry.Translation, out, reason)
	return model.TranslationResult{Translation: translation, Model: out.Step, UsedFallback: out.Fallback}
}

// Moderate scores input for toxicity and recommends an action.
func (s *Service) Moderate(ctx context.Context, input string) model.ModerationResult {
	t := text.Normalize(input)
	if text.IsBlank(t) {
		s.fastPath(ctx, registry.Moderation, model.ModelEmptyInput)
		return fallback.EmptyModeration()
	}

	rungs := remoteRungs([]string{s.registry.Primary(registry.Moderation)}, func(ctx context.Context, id string) (model.ModerationResult, error) {
		scores, err := s.remote.Classify(ctx, id, t)
		if err != nil {
			return model.ModerationResult{}, err
		}
		return s.verdict(id, scores), nil
	})
	res, out := ladder.Climb(ctx, rungs, ladder.Final[model.ModerationResult]{
		Name:    fallback.ModelKeywordModeration,
		Produce: func() model.ModerationResult { return fallback.KeywordModeration(t, s.moderationThreshold) },
	})
	s.settled(ctx, registry.Moderation, out, "")
	return res
}

// verdict turns classifier scores (sorted descending, non-empty) into a result.
func (s *Service) verdict(modelID string, scores []model.LabelScore) model.ModerationResult {
	effective := scores[0]
	for _, ls := range scores {
		if toxicLabel.MatchString(ls.Label) {
			effective = ls
			break
		}
	}
	score := model.NormalizeScore(effective.Score)
	flagged := score >= s.moderationThreshold

	categories := make([]string, 0, maxCategories)
	for _, ls := range scores {
		if len(categories) == maxCategories {
			break
		}
		if ls.Score >= categoryMinScore {
			categories = append(categories, ls.Label)
		}
	}
	if len(categories) == 0 {
		categories = append(categories, scores[0].Label)
	}

	return model.ModerationResult{
		Flagged:        flagged,
		Score:          score,
		Categories:     categories,
		Recommendation: fallback.ModerationAdvice(flagged, score),
		Model:          modelID,
		UsedFallback:   false,
	}
}

// RankOpportunities orders opportunities by relevance to profile.
func (s *Service) RankOpportunities(ctx context.Context, profile model.StudentProfile, opportunities []model.Opportunity) model.MatchReport {
	if len(opportunities) == 0 {
		s.fastPath(ctx, registry.Embeddings, model.ModelEmptyInput)
		return model.MatchReport{Matches: []model.MatchResult{}, Model: model.ModelEmptyInput, UsedFallback: false}
	}

	matches, out := s.matcher.Rank(ctx, profile, opportunities)
	s.settled(ctx, registry.Embeddings, out, "")
	tag := s.registry.Primary(registry.Embeddings)
	if out.Fallback {
		tag = fallback.ModelLexicalMatch
	}
	return model.MatchReport{Matches: matches, Model: tag, UsedFallback: out.Fallback}
}

// CheckIn replies to a wellness check-in. Crisis language always gets the
// fixed escalation response and never reaches a remote model.
func (s *Service) CheckIn(ctx context.Context, message, mood string) model.CheckinResult {
	if phrase, risky := safety.Detect(message); risky {
		s.safetyEscalations.Add(1)
		metrics.RecordSafetyEscalation()
		s.fastPath(ctx, registry.Checkin, model.ModelSafetyEscalation)
		s.logger.Warn(ctx, "check-in escalated to crisis response", logger.String("phrase", phrase))
		return safety.CrisisResponse()
	}

	t := text.Normalize(message)
	if text.IsBlank(t) {
		s.fastPath(ctx, registry.Checkin, model.ModelEmptyInput)
		return fallback.EmptyCheckin()
	}

	prompt := checkinPrompt(t, mood)
	rungs := remoteRungs([]string{s.registry.Primary(registry.Checkin)}, func(ctx context.Context, id string) (model.CheckinResult, error) {
		reply, err := s.remote.Generate(ctx, id, prompt, checkinParams)
		if err != nil {
			return model.CheckinResult{}, err
		}
		return model.CheckinResult{
			Urgent:       false,
			Response:     reply,
			FollowUps:    append([]string(nil), fallback.CheckinFollowUps...),
			Model:        id,
			UsedFallback: false,
		}, nil
	})
	res, out := ladder.Climb(ctx, rungs, ladder.Final[model.CheckinResult]{
		Name:    fallback.ModelTemplateCheckin,
		Produce: func() model.CheckinResult { return fallback.TemplateCheckin(mood) },
	})
	s.settled(ctx, registry.Checkin, out, "")
	return res
}

func checkinPrompt(message, mood string) string {
	return fmt.Sprintf("You are a warm, supportive university wellness assistant. "+
		"A student says they are feeling %s. Their message: %q. "+
		"Reply in two or three short, kind sentences with one practical suggestion. "+
		"Do not diagnose or give medical advice.", fallback.Mood(mood), message)
}

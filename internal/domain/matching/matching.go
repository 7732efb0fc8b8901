// Package matching ranks opportunities against a student profile by blending
// embedding similarity with tag overlap and a location boost.
package matching

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/campusai/internal/domain/fallback"
	"github.com/okian/campusai/internal/domain/ladder"
	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/internal/domain/text"
	"github.com/okian/campusai/pkg/logger"
	"github.com/okian/campusai/pkg/metrics"
)

// Default blend configuration.
const (
	defaultSemanticWeight  = 0.65
	defaultLexicalWeight   = 0.25
	defaultLocationBoost   = 0.10
	defaultStrongThreshold = 0.7
	defaultConcurrency     = 8
)

const (
	reasonStrong   = "Strong semantic fit between your profile and this opportunity."
	reasonModerate = "Moderate fit. Add more relevant skills for higher ranking."
)

// Step names reported by Rank.
const (
	StepSemantic = "semantic"
	StepLexical  = "lexical"
)

// Embedder turns text into a vector. Implementations may call the network.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Weights parameterize the semantic blend.
type Weights struct {
	Semantic        float64
	Lexical         float64
	LocationBoost   float64
	StrongThreshold float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides the semantic blend. Negative values are ignored.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.Semantic >= 0 {
			e.weights.Semantic = w.Semantic
		}
		if w.Lexical >= 0 {
			e.weights.Lexical = w.Lexical
		}
		if w.LocationBoost >= 0 {
			e.weights.LocationBoost = w.LocationBoost
			e.lexical.LocationBoost = w.LocationBoost
		}
		if w.StrongThreshold > 0 {
			e.weights.StrongThreshold = w.StrongThreshold
		}
	}
}

// WithLexicalWeights overrides the lexical-only fallback parameters.
func WithLexicalWeights(w fallback.LexicalWeights) Option {
	return func(e *Engine) {
		if w.Overlap > 0 {
			e.lexical.Overlap = w.Overlap
		}
		if w.StrongThreshold > 0 {
			e.lexical.StrongThreshold = w.StrongThreshold
		}
		if w.LocationBoost >= 0 {
			e.lexical.LocationBoost = w.LocationBoost
		}
	}
}

// WithConcurrency bounds the number of embedding calls in flight.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine ranks opportunities. It holds no per-call state.
type Engine struct {
	embedder    Embedder
	weights     Weights
	lexical     fallback.LexicalWeights
	concurrency int
	log         logger.Logger
}

// NewEngine returns an Engine. A nil embedder always ranks lexically.
func NewEngine(embedder Embedder, opts ...Option) *Engine {
	e := &Engine{
		embedder: embedder,
		weights: Weights{
			Semantic:        defaultSemanticWeight,
			Lexical:         defaultLexicalWeight,
			LocationBoost:   defaultLocationBoost,
			StrongThreshold: defaultStrongThreshold,
		},
		lexical:     fallback.DefaultLexicalWeights,
		concurrency: defaultConcurrency,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank scores every opportunity for p and sorts by descending score.
// Any embedding failure switches the whole ranking to the lexical fallback;
// the returned Outcome says which path produced the result.
func (e *Engine) Rank(ctx context.Context, p model.StudentProfile, opps []model.Opportunity) ([]model.MatchResult, ladder.Outcome) {
	if len(opps) == 0 {
		return []model.MatchResult{}, ladder.Outcome{Step: StepSemantic}
	}
	metrics.RecordMatchCandidates(len(opps))

	var rungs []ladder.Rung[[]model.MatchResult]
	if e.embedder != nil {
		rungs = append(rungs, ladder.Rung[[]model.MatchResult]{
			Name: StepSemantic,
			Try: func(ctx context.Context) ([]model.MatchResult, error) {
				return e.semantic(ctx, p, opps)
			},
		})
	}
	results, out := ladder.Climb(ctx, rungs, ladder.Final[[]model.MatchResult]{
		Name: StepLexical,
		Produce: func() []model.MatchResult {
			return fallback.LexicalMatch(p, opps, e.lexical)
		},
	})
	if err := out.LastFailure(); err != nil {
		e.log.Debug(ctx, "semantic ranking failed, using lexical overlap",
			logger.Int("opportunities", len(opps)),
			logger.Error(err))
	}
	return results, out
}

func (e *Engine) semantic(ctx context.Context, p model.StudentProfile, opps []model.Opportunity) ([]model.MatchResult, error) {
	vectors, err := e.embedAll(ctx, p, opps)
	if err != nil {
		return nil, err
	}
	profileVec := vectors[0]
	profileTerms := fallback.ProfileTerms(p)

	out := make([]model.MatchResult, 0, len(opps))
	for i, o := range opps {
		semantic := math.Max(0, Cosine(profileVec, vectors[i+1]))
		lexical := fallback.Overlap(profileTerms, text.Terms(o.Skills, o.Tags))
		boost := 0.0
		if fallback.LocationMatches(p, o) {
			boost = e.weights.LocationBoost
		}
		score := model.NormalizeScore(math.Min(1,
			semantic*e.weights.Semantic+lexical*e.weights.Lexical+boost))
		reason := reasonModerate
		if score >= e.weights.StrongThreshold {
			reason = reasonStrong
		}
		out = append(out, model.MatchResult{Opportunity: o, Score: score, Reason: reason})
	}
	model.SortByScore(out)
	return out, nil
}

// embedAll returns the profile vector at index 0 followed by one vector per
// opportunity. The first error cancels the remaining calls.
func (e *Engine) embedAll(ctx context.Context, p model.StudentProfile, opps []model.Opportunity) ([][]float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordEmbeddingBatchDuration(float64(time.Since(start).Milliseconds()))
	}()

	inputs := make([]string, 0, len(opps)+1)
	inputs = append(inputs, ProfileText(p))
	for _, o := range opps {
		inputs = append(inputs, OpportunityText(o))
	}

	vectors := make([][]float64, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			v, err := e.embedder.Embed(gctx, in)
			if err != nil {
				return err
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector has zero magnitude.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ProfileText is the text embedded for a profile: university, department,
// level, location, skills, interests and GPA, in that order.
func ProfileText(p model.StudentProfile) string {
	gpa := ""
	if p.GPA != nil {
		gpa = "GPA: " + strconv.FormatFloat(*p.GPA, 'f', -1, 64)
	}
	return joinParts(
		p.University,
		p.Department,
		p.Level,
		p.Location,
		"Skills: "+strings.Join(p.Skills, ", "),
		"Interests: "+strings.Join(p.Interests, ", "),
		gpa,
	)
}

// OpportunityText is the text embedded for an opportunity.
func OpportunityText(o model.Opportunity) string {
	return joinParts(
		o.Title,
		string(o.Type),
		o.Organization,
		o.Description,
		"Skills: "+strings.Join(o.Skills, ", "),
		"Tags: "+strings.Join(o.Tags, ", "),
		"Requirements: "+strings.Join(o.Requirements, ", "),
		o.Location,
	)
}

func joinParts(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		p = text.Collapse(p)
		if p == "" || strings.HasSuffix(p, ":") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ". ")
}

package scoring

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultMaxValue is the top of the rating scale.
	DefaultMaxValue = 5.0
	// DefaultMinimalRate is the pass threshold used when an operator has not set one.
	DefaultMinimalRate = 60.0
)

// Question is the minimal view of a template question needed for scoring.
type Question struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Resolved is the single effective score of one question.
type Resolved struct {
	QuestionID string  `json:"question_id"`
	Value      float64 `json:"value"`
}

// Evaluation is the aggregated outcome of an interview.
type Evaluation struct {
	TotalScore  float64 `json:"total_score"`
	Passed      bool    `json:"passed"`
	MinimalRate float64 `json:"minimal_rate"`
	Overridden  bool    `json:"overridden"`             // passed was set by an operator
	ScoreDigest string  `json:"score_digest,omitempty"` // resolved score set TotalScore was derived from
}

// QuestionStatus reports whether a template question has a resolved score.
type QuestionStatus struct {
	QuestionID string   `json:"question_id"`
	Weight     float64  `json:"weight"`
	Scored     bool     `json:"scored"`
	Value      *float64 `json:"value,omitempty"`
}

// Result is the outcome of Compute.
type Result struct {
	Evaluation
	AllScored   bool             `json:"all_scored"`
	Computed    bool             `json:"computed"` // false when no template question was scored
	ScoredCount int              `json:"scored_count"`
	Questions   []QuestionStatus `json:"questions"`
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	MaxValue   float64
	Resolution Resolution
}

func WithMaxValue(v float64) Option      { return func(c *config) { c.MaxValue = v } }
func WithResolution(r Resolution) Option { return func(c *config) { c.Resolution = r } }

// Engine aggregates per-question ratings into a weighted percentage.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	maxValue   float64
	resolution Resolution
	resolver   Resolver
}

// New builds an Engine. The defaults are a 0..5 scale and the average resolution policy.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{
		MaxValue:   DefaultMaxValue,
		Resolution: ResolveAverage,
	}
	for _, o := range opts {
		o(cfg)
	}
	if !(cfg.MaxValue > 0) || math.IsInf(cfg.MaxValue, 0) {
		return nil, errors.Errorf("max value must be positive, got %v", cfg.MaxValue)
	}
	r, ok := resolvers[cfg.Resolution]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownResolution, "%q", cfg.Resolution)
	}
	return &Engine{maxValue: cfg.MaxValue, resolution: cfg.Resolution, resolver: r}, nil
}

func (e *Engine) MaxValue() float64      { return e.maxValue }
func (e *Engine) Resolution() Resolution { return e.resolution }

// ValidateValue rejects ratings outside [0, MaxValue].
func (e *Engine) ValidateValue(v float64) error {
	return validateValue(v, e.maxValue)
}

// Compute derives the evaluation of an interview from its template questions and
// resolved scores.
//
// Only scored questions contribute to the weighted mean; unscored ones are left out
// of both sums. When no template question is scored the prior evaluation is returned
// unchanged with Computed=false. A manual override on prior survives as long as the
// resolved score set and the minimal rate are the same ones it was made against.
func (e *Engine) Compute(questions []Question, scores []Resolved, minimalRate float64, prior *Evaluation) (Result, error) {
	if err := ValidateMinimalRate(minimalRate); err != nil {
		return Result{}, err
	}
	for _, q := range questions {
		if err := ValidateWeight(q.Weight); err != nil {
			return Result{}, errors.Wrapf(err, "question %s", q.ID)
		}
	}
	values := make(map[string]float64, len(scores))
	for _, s := range scores {
		if err := e.ValidateValue(s.Value); err != nil {
			return Result{}, errors.Wrapf(err, "question %s", s.QuestionID)
		}
		if _, dup := values[s.QuestionID]; dup {
			return Result{}, errors.Wrapf(ErrDuplicateScore, "question %s", s.QuestionID)
		}
		values[s.QuestionID] = s.Value
	}

	res := Result{
		AllScored: len(questions) > 0,
		Questions: make([]QuestionStatus, 0, len(questions)),
	}
	seen := make(map[string]struct{}, len(questions))
	counted := make([]Resolved, 0, len(values))
	var numerator, denominator float64
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}

		st := QuestionStatus{QuestionID: q.ID, Weight: q.Weight}
		if v, ok := values[q.ID]; ok {
			st.Scored = true
			st.Value = &v
			numerator += v * q.Weight
			denominator += q.Weight
			counted = append(counted, Resolved{QuestionID: q.ID, Value: v})
			res.ScoredCount++
		} else {
			res.AllScored = false
		}
		res.Questions = append(res.Questions, st)
	}

	if denominator == 0 {
		if prior != nil {
			res.Evaluation = *prior
		} else {
			res.Evaluation = Evaluation{MinimalRate: minimalRate}
		}
		return res, nil
	}

	total := Round1(numerator / (denominator * e.maxValue) * 100)
	ev := Evaluation{
		TotalScore:  total,
		Passed:      total >= minimalRate,
		MinimalRate: minimalRate,
		ScoreDigest: Digest(counted),
	}
	if prior != nil && prior.Overridden && prior.ScoreDigest == ev.ScoreDigest && prior.MinimalRate == minimalRate {
		ev.Passed = prior.Passed
		ev.Overridden = true
	}
	res.Evaluation = ev
	res.Computed = true
	return res, nil
}

// WithMinimalRate re-derives passed for a new threshold without touching TotalScore.
// A real rate change drops any manual override; the current rate leaves prior as is.
func WithMinimalRate(prior Evaluation, rate float64) (Evaluation, error) {
	if err := ValidateMinimalRate(rate); err != nil {
		return prior, err
	}
	if rate == prior.MinimalRate {
		return prior, nil
	}
	prior.MinimalRate = rate
	prior.Passed = prior.TotalScore >= rate
	prior.Overridden = false
	return prior, nil
}

// Override sets passed by hand.
func Override(prior Evaluation, passed bool) Evaluation {
	prior.Passed = passed
	prior.Overridden = true
	return prior
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

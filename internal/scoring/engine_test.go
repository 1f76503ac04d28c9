package scoring

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func abcTemplate() []Question {
	return []Question{
		{ID: "A", Weight: 2},
		{ID: "B", Weight: 1},
		{ID: "C", Weight: 3},
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	e := newEngine(t)

	res, err := e.Compute(abcTemplate(), []Resolved{
		{QuestionID: "A", Value: 4},
		{QuestionID: "B", Value: 5},
		{QuestionID: "C", Value: 3},
	}, 60, nil)
	require.NoError(t, err)

	assert.Equal(t, 73.3, res.TotalScore)
	assert.True(t, res.Passed)
	assert.True(t, res.AllScored)
	assert.True(t, res.Computed)
	assert.Equal(t, 3, res.ScoredCount)
	assert.Equal(t, 60.0, res.MinimalRate)
}

func TestCompute_PartialScoresExcludeUnanswered(t *testing.T) {
	e := newEngine(t)

	res, err := e.Compute(abcTemplate(), []Resolved{
		{QuestionID: "A", Value: 4},
		{QuestionID: "B", Value: 5},
	}, 60, nil)
	require.NoError(t, err)

	assert.Equal(t, 86.7, res.TotalScore)
	assert.False(t, res.AllScored)
	require.Len(t, res.Questions, 3)
	assert.True(t, res.Questions[0].Scored)
	assert.True(t, res.Questions[1].Scored)
	assert.False(t, res.Questions[2].Scored)
	assert.Nil(t, res.Questions[2].Value)
	require.NotNil(t, res.Questions[0].Value)
	assert.Equal(t, 4.0, *res.Questions[0].Value)
}

func TestCompute_MatchesFormula(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name    string
		weights []float64
		values  []float64
	}{
		{name: "uniform weights", weights: []float64{1, 1, 1, 1}, values: []float64{1, 2, 3, 4}},
		{name: "fractional weights", weights: []float64{0.5, 1.5, 2.25}, values: []float64{5, 0, 2.5}},
		{name: "single question", weights: []float64{7}, values: []float64{3.5}},
		{name: "heavy tail", weights: []float64{10, 0.1, 0.1}, values: []float64{1, 5, 5}},
	}
	ids := []string{"q1", "q2", "q3", "q4"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var qs []Question
			var ss []Resolved
			var num, den float64
			for i, w := range tt.weights {
				qs = append(qs, Question{ID: ids[i], Weight: w})
				ss = append(ss, Resolved{QuestionID: ids[i], Value: tt.values[i]})
				num += tt.values[i] * w
				den += w
			}
			want := math.Round(100*num/(5*den)*10) / 10

			res, err := e.Compute(qs, ss, 60, nil)
			require.NoError(t, err)
			assert.InDelta(t, want, res.TotalScore, 1e-9)
			assert.True(t, res.AllScored)
		})
	}
}

func TestCompute_EmptyScoresKeepPrior(t *testing.T) {
	e := newEngine(t)
	prior := &Evaluation{TotalScore: 42.5, Passed: false, MinimalRate: 60, ScoreDigest: "abc"}

	res, err := e.Compute(abcTemplate(), nil, 60, prior)
	require.NoError(t, err)

	assert.False(t, res.Computed)
	assert.False(t, res.AllScored)
	assert.Equal(t, *prior, res.Evaluation)
}

func TestCompute_EmptyScoresWithoutPrior(t *testing.T) {
	e := newEngine(t)

	res, err := e.Compute(abcTemplate(), nil, 70, nil)
	require.NoError(t, err)

	assert.False(t, res.Computed)
	assert.Equal(t, Evaluation{MinimalRate: 70}, res.Evaluation)
}

func TestCompute_ForeignScoresIgnored(t *testing.T) {
	e := newEngine(t)
	prior := &Evaluation{TotalScore: 10}

	res, err := e.Compute(abcTemplate(), []Resolved{{QuestionID: "Z", Value: 5}}, 60, prior)
	require.NoError(t, err)

	assert.False(t, res.Computed)
	assert.Equal(t, 10.0, res.TotalScore)
	assert.Equal(t, 0, res.ScoredCount)
}

func TestCompute_SingleQuestionExtremes(t *testing.T) {
	e := newEngine(t)
	q := []Question{{ID: "only", Weight: 3.7}}

	top, err := e.Compute(q, []Resolved{{QuestionID: "only", Value: 5}}, 60, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, top.TotalScore)

	bottom, err := e.Compute(q, []Resolved{{QuestionID: "only", Value: 0}}, 60, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, bottom.TotalScore)
	assert.False(t, bottom.Passed)
}

func TestCompute_Monotonic(t *testing.T) {
	e := newEngine(t)
	prev := -1.0
	for v := 0.0; v <= 5; v += 0.25 {
		res, err := e.Compute(abcTemplate(), []Resolved{
			{QuestionID: "A", Value: 2},
			{QuestionID: "B", Value: v},
			{QuestionID: "C", Value: 4},
		}, 60, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.TotalScore, prev, "value %v", v)
		prev = res.TotalScore
	}
}

func TestCompute_WeightScaleInvariance(t *testing.T) {
	e := newEngine(t)
	scores := []Resolved{
		{QuestionID: "A", Value: 4},
		{QuestionID: "B", Value: 5},
		{QuestionID: "C", Value: 3},
	}
	base, err := e.Compute(abcTemplate(), scores, 60, nil)
	require.NoError(t, err)

	for _, k := range []float64{0.5, 2, 10, 1000} {
		scaled := abcTemplate()
		for i := range scaled {
			scaled[i].Weight *= k
		}
		res, err := e.Compute(scaled, scores, 60, nil)
		require.NoError(t, err)
		assert.Equal(t, base.TotalScore, res.TotalScore, "scale %v", k)
	}
}

func TestCompute_ThresholdInclusive(t *testing.T) {
	e := newEngine(t)
	q := []Question{{ID: "A", Weight: 1}}

	res, err := e.Compute(q, []Resolved{{QuestionID: "A", Value: 3}}, 60, nil)
	require.NoError(t, err)
	assert.Equal(t, 60.0, res.TotalScore)
	assert.True(t, res.Passed)

	res, err = e.Compute(abcTemplate(), []Resolved{
		{QuestionID: "A", Value: 4},
		{QuestionID: "B", Value: 5},
		{QuestionID: "C", Value: 3},
	}, 73.3, nil)
	require.NoError(t, err)
	assert.True(t, res.Passed)

	res, err = e.Compute(abcTemplate(), []Resolved{
		{QuestionID: "A", Value: 4},
		{QuestionID: "B", Value: 5},
		{QuestionID: "C", Value: 3},
	}, 73.4, nil)
	require.NoError(t, err)
	assert.False(t, res.Passed)
}

func TestCompute_OverrideSurvivesUnchangedScores(t *testing.T) {
	e := newEngine(t)
	scores := []Resolved{{QuestionID: "A", Value: 1}, {QuestionID: "B", Value: 1}}

	first, err := e.Compute(abcTemplate(), scores, 60, nil)
	require.NoError(t, err)
	require.False(t, first.Passed)

	overridden := Override(first.Evaluation, true)

	again, err := e.Compute(abcTemplate(), scores, 60, &overridden)
	require.NoError(t, err)
	assert.True(t, again.Passed)
	assert.True(t, again.Overridden)
	assert.Equal(t, first.TotalScore, again.TotalScore)
}

func TestCompute_OverrideDroppedOnScoreChange(t *testing.T) {
	e := newEngine(t)
	scores := []Resolved{{QuestionID: "A", Value: 1}}

	first, err := e.Compute(abcTemplate(), scores, 60, nil)
	require.NoError(t, err)
	overridden := Override(first.Evaluation, true)

	changed, err := e.Compute(abcTemplate(), append(scores, Resolved{QuestionID: "B", Value: 1}), 60, &overridden)
	require.NoError(t, err)
	assert.False(t, changed.Passed)
	assert.False(t, changed.Overridden)
}

func TestCompute_OverrideDroppedOnRateChange(t *testing.T) {
	e := newEngine(t)
	scores := []Resolved{{QuestionID: "A", Value: 1}}

	first, err := e.Compute(abcTemplate(), scores, 60, nil)
	require.NoError(t, err)
	overridden := Override(first.Evaluation, true)

	res, err := e.Compute(abcTemplate(), scores, 50, &overridden)
	require.NoError(t, err)
	assert.False(t, res.Overridden)
	assert.False(t, res.Passed)
}

func TestCompute_Deterministic(t *testing.T) {
	e := newEngine(t)
	scores := []Resolved{{QuestionID: "C", Value: 2}, {QuestionID: "A", Value: 4.5}}
	reversed := []Resolved{scores[1], scores[0]}

	a, err := e.Compute(abcTemplate(), scores, 60, nil)
	require.NoError(t, err)
	b, err := e.Compute(abcTemplate(), reversed, 60, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Evaluation, b.Evaluation)
}

func TestCompute_RejectsInvalidInput(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name      string
		questions []Question
		scores    []Resolved
		rate      float64
		want      error
	}{
		{
			name:      "zero weight",
			questions: []Question{{ID: "A", Weight: 0}},
			rate:      60,
			want:      ErrInvalidWeight,
		},
		{
			name:      "negative weight",
			questions: []Question{{ID: "A", Weight: -1}},
			rate:      60,
			want:      ErrInvalidWeight,
		},
		{
			name:      "NaN weight",
			questions: []Question{{ID: "A", Weight: math.NaN()}},
			rate:      60,
			want:      ErrInvalidWeight,
		},
		{
			name:      "value above scale",
			questions: abcTemplate(),
			scores:    []Resolved{{QuestionID: "A", Value: 5.5}},
			rate:      60,
			want:      ErrInvalidScoreValue,
		},
		{
			name:      "negative value",
			questions: abcTemplate(),
			scores:    []Resolved{{QuestionID: "A", Value: -0.1}},
			rate:      60,
			want:      ErrInvalidScoreValue,
		},
		{
			name:      "duplicate resolved score",
			questions: abcTemplate(),
			scores:    []Resolved{{QuestionID: "A", Value: 1}, {QuestionID: "A", Value: 2}},
			rate:      60,
			want:      ErrDuplicateScore,
		},
		{
			name:      "rate above 100",
			questions: abcTemplate(),
			rate:      101,
			want:      ErrInvalidMinimalRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compute(tt.questions, tt.scores, tt.rate, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCompute_EmptyTemplateIsNotAllScored(t *testing.T) {
	e := newEngine(t)

	res, err := e.Compute(nil, nil, 60, nil)
	require.NoError(t, err)
	assert.False(t, res.AllScored)
	assert.Empty(t, res.Questions)
}

func TestCompute_CustomScale(t *testing.T) {
	e := newEngine(t, WithMaxValue(10))

	res, err := e.Compute([]Question{{ID: "A", Weight: 1}}, []Resolved{{QuestionID: "A", Value: 7}}, 60, nil)
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.TotalScore)

	_, err = e.Compute([]Question{{ID: "A", Weight: 1}}, []Resolved{{QuestionID: "A", Value: 11}}, 60, nil)
	assert.True(t, errors.Is(err, ErrInvalidScoreValue))
}

func TestWithMinimalRate(t *testing.T) {
	prior := Evaluation{TotalScore: 55, Passed: true, MinimalRate: 60, Overridden: true, ScoreDigest: "d"}

	got, err := WithMinimalRate(prior, 50)
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.TotalScore)
	assert.True(t, got.Passed)
	assert.False(t, got.Overridden)
	assert.Equal(t, "d", got.ScoreDigest)

	got, err = WithMinimalRate(prior, 55.1)
	require.NoError(t, err)
	assert.False(t, got.Passed)

	got, err = WithMinimalRate(prior, 60)
	require.NoError(t, err)
	assert.Equal(t, prior, got, "same rate keeps the override")

	_, err = WithMinimalRate(prior, -1)
	assert.True(t, errors.Is(err, ErrInvalidMinimalRate))
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{73.333, 73.3},
		{86.666, 86.7},
		{12.25, 12.3},
		{0.05, 0.1},
		{99.95, 100},
		{-12.25, -12.3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round1(tt.in), "Round1(%v)", tt.in)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(WithResolution("median"))
	assert.True(t, errors.Is(err, ErrUnknownResolution))

	_, err = New(WithMaxValue(0))
	assert.Error(t, err)
}

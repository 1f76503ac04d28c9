package interview

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/interview-console/internal/events"
	"github.com/mind-engage/interview-console/internal/scoring"
)

type recorded struct {
	typ, key string
}

type captureRecorder struct{ got []recorded }

func (c *captureRecorder) Record(_ context.Context, typ, key string, _ any) error {
	c.got = append(c.got, recorded{typ, key})
	return nil
}

func (c *captureRecorder) types() []string {
	out := make([]string, 0, len(c.got))
	for _, r := range c.got {
		out = append(out, r.typ)
	}
	return out
}

func newEvaluator(t *testing.T, f fixture) (*Evaluator, *captureRecorder) {
	t.Helper()
	engine, err := scoring.New(scoring.WithResolution(scoring.ResolveAverage))
	require.NoError(t, err)
	rec := &captureRecorder{}
	return NewEvaluator(f.store, engine, rec, nil, scoring.DefaultMinimalRate), rec
}

func score(f fixture, who Interviewer, q string, v float64) Score {
	return Score{InterviewID: f.interview.ID, QuestionID: f.qid(q), InterviewerID: who.ID, Value: v}
}

func TestEvaluator_RecordScoreRecomputesDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, rec := newEvaluator(t, f)

	var res scoring.Result
	for _, s := range []Score{score(f, f.alice, "A", 4), score(f, f.alice, "B", 5)} {
		_, r, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
		res = r
	}
	assert.Equal(t, 86.7, res.TotalScore)
	assert.False(t, res.AllScored)

	_, res, err := ev.RecordScore(ctx, score(f, f.alice, "C", 3))
	require.NoError(t, err)
	assert.Equal(t, 73.3, res.TotalScore)
	assert.True(t, res.Passed)
	assert.True(t, res.AllScored)

	draft, err := f.store.GetDraft(ctx, f.interview.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Evaluation, *draft)

	in, err := f.store.GetInterview(ctx, f.interview.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, in.Status)
	assert.Equal(t, []string{events.TypeScoreRecorded, events.TypeScoreRecorded, events.TypeScoreRecorded}, rec.types())
}

func TestEvaluator_RecordScoreRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)

	outsider, err := f.store.CreateInterviewer(ctx, Interviewer{Name: "Eve", Email: "eve@example.com"})
	require.NoError(t, err)
	foreign, err := f.store.CreateQuestion(ctx, Question{Text: "Unrelated"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		score Score
		field string
	}{
		{"value above scale", score(f, f.alice, "A", 5.5), "value"},
		{"negative value", score(f, f.alice, "A", -1), "value"},
		{"question outside template", Score{InterviewID: f.interview.ID, QuestionID: foreign.ID, InterviewerID: f.alice.ID, Value: 3}, "question_id"},
		{"interviewer not on panel", score(f, outsider, "A", 3), "interviewer_id"},
		{"missing interviewer", score(f, Interviewer{}, "A", 3), "interviewer_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ev.RecordScore(ctx, tt.score)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, _, err = ev.RecordScore(ctx, Score{InterviewID: "missing", QuestionID: f.qid("A"), InterviewerID: f.alice.ID, Value: 1})
	assert.True(t, errors.Is(err, ErrNotFound))

	scores, err := f.store.ListScores(ctx, f.interview.ID)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestEvaluator_OverrideSurvivesUntilScoresChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)

	for _, s := range []Score{score(f, f.alice, "A", 4), score(f, f.alice, "B", 5), score(f, f.alice, "C", 3)} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}

	got, err := ev.OverridePassed(ctx, f.interview.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Passed)
	assert.True(t, got.Overridden)

	// same value again leaves the resolved set unchanged
	_, res, err := ev.RecordScore(ctx, score(f, f.alice, "A", 4))
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.True(t, res.Overridden)

	cur, err := ev.Evaluate(ctx, f.interview.ID, "")
	require.NoError(t, err)
	assert.False(t, cur.Passed)

	_, res, err = ev.RecordScore(ctx, score(f, f.alice, "A", 5))
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.TotalScore)
	assert.True(t, res.Passed)
	assert.False(t, res.Overridden)
}

func TestEvaluator_MultipleInterviewers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)

	for _, s := range []Score{
		score(f, f.alice, "A", 5), score(f, f.alice, "B", 5), score(f, f.alice, "C", 3),
		score(f, f.bob, "A", 1),
	} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}

	res, err := ev.Evaluate(ctx, f.interview.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 66.7, res.TotalScore, "A resolves to the mean of 5 and 1")

	bobs, err := ev.Evaluate(ctx, f.interview.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, bobs.TotalScore)
	assert.False(t, bobs.Passed)
	assert.Equal(t, 1, bobs.ScoredCount)

	draft, err := f.store.GetDraft(ctx, f.interview.ID)
	require.NoError(t, err)
	assert.Equal(t, 66.7, draft.TotalScore, "per-interviewer view is not persisted")
}

func TestEvaluator_SetMinimalRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, rec := newEvaluator(t, f)

	got, err := ev.SetMinimalRate(ctx, f.interview.ID, 75)
	require.NoError(t, err)
	assert.Equal(t, scoring.Evaluation{MinimalRate: 75}, got)

	for _, s := range []Score{score(f, f.alice, "A", 4), score(f, f.alice, "B", 5), score(f, f.alice, "C", 3)} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}
	res, err := ev.Evaluate(ctx, f.interview.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 75.0, res.MinimalRate, "draft rate is kept across score writes")
	assert.False(t, res.Passed)

	_, err = ev.OverridePassed(ctx, f.interview.ID, true)
	require.NoError(t, err)
	got, err = ev.SetMinimalRate(ctx, f.interview.ID, 73.3)
	require.NoError(t, err)
	assert.Equal(t, 73.3, got.TotalScore)
	assert.True(t, got.Passed)
	assert.False(t, got.Overridden, "rate change clears the override")

	_, err = ev.OverridePassed(ctx, f.interview.ID, false)
	require.NoError(t, err)
	got, err = ev.SetMinimalRate(ctx, f.interview.ID, 73.3)
	require.NoError(t, err)
	assert.False(t, got.Passed, "re-sending the current rate keeps the override")
	assert.True(t, got.Overridden)
	res, err = ev.Evaluate(ctx, f.interview.ID, "")
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.True(t, res.Overridden)

	_, err = ev.SetMinimalRate(ctx, f.interview.ID, 101)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.True(t, errors.Is(err, scoring.ErrInvalidMinimalRate))

	assert.Contains(t, rec.types(), events.TypeRateChanged)
	assert.Contains(t, rec.types(), events.TypePassedOverridden)
}

func TestEvaluator_SaveSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, rec := newEvaluator(t, f)

	_, err := ev.SaveSnapshot(ctx, f.interview.ID, SnapshotRequest{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "nothing scored yet")

	for _, s := range []Score{score(f, f.alice, "A", 2), score(f, f.alice, "B", 2), score(f, f.alice, "C", 2)} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}

	bogus, yes := 99.0, true
	snap, err := ev.SaveSnapshot(ctx, f.interview.ID, SnapshotRequest{TotalScore: &bogus, Passed: &yes})
	require.NoError(t, err)
	assert.Equal(t, 40.0, snap.TotalScore, "total is derived from stored scores")
	assert.True(t, snap.Passed)
	assert.True(t, snap.Overridden)

	agreeing := false
	rate := 30.0
	snap2, err := ev.SaveSnapshot(ctx, f.interview.ID, SnapshotRequest{MinimalRate: &rate, Passed: &agreeing})
	require.NoError(t, err)
	assert.Equal(t, 30.0, snap2.MinimalRate)
	assert.False(t, snap2.Passed)
	assert.True(t, snap2.Overridden, "passed=false disagrees with 40 >= 30")

	in, err := f.store.GetInterview(ctx, f.interview.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEvaluated, in.Status)
	require.Len(t, in.Evaluations, 2)
	assert.Equal(t, snap2.ID, in.Evaluations[0].ID)
	assert.Equal(t, events.TypeEvaluationSaved, rec.types()[len(rec.types())-1])
}

func TestEvaluator_OverrideKeptAtSameRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)
	for _, s := range []Score{score(f, f.alice, "A", 1), score(f, f.alice, "B", 1), score(f, f.alice, "C", 1)} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}

	got, err := ev.OverridePassed(ctx, f.interview.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.TotalScore)
	assert.True(t, got.Passed)

	got, err = ev.SetMinimalRate(ctx, f.interview.ID, scoring.DefaultMinimalRate)
	require.NoError(t, err)
	assert.True(t, got.Passed)
	assert.True(t, got.Overridden)
}

func TestEvaluator_StaleDraftIsRecomputed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)
	for _, s := range []Score{score(f, f.alice, "A", 4), score(f, f.alice, "B", 5), score(f, f.alice, "C", 3)} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}
	// a draft written from an older score set
	require.NoError(t, f.store.SaveDraft(ctx, f.interview.ID, scoring.Evaluation{
		TotalScore: 10, MinimalRate: 60, ScoreDigest: "older",
	}))

	got, err := ev.SetMinimalRate(ctx, f.interview.ID, 70)
	require.NoError(t, err)
	assert.Equal(t, 73.3, got.TotalScore)
	assert.True(t, got.Passed)

	require.NoError(t, f.store.SaveDraft(ctx, f.interview.ID, scoring.Evaluation{
		TotalScore: 10, MinimalRate: 70, ScoreDigest: "older",
	}))
	got, err = ev.OverridePassed(ctx, f.interview.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 73.3, got.TotalScore)
	assert.False(t, got.Passed)
	assert.True(t, got.Overridden)
}

func TestEvaluator_ConcurrentScoresAllCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for _, s := range []Score{score(f, f.alice, "A", 4), score(f, f.bob, "B", 5), score(f, f.alice, "C", 3)} {
		wg.Add(1)
		go func(s Score) {
			defer wg.Done()
			_, _, err := ev.RecordScore(ctx, s)
			errs <- err
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	draft, err := f.store.GetDraft(ctx, f.interview.ID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, 73.3, draft.TotalScore)
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, string, string, any) error {
	return errors.New("event log unavailable")
}

func TestEvaluator_EventFailureDoesNotFailWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine, err := scoring.New()
	require.NoError(t, err)
	ev := NewEvaluator(f.store, engine, failingRecorder{}, nil, scoring.DefaultMinimalRate)

	for _, s := range []Score{score(f, f.alice, "A", 4), score(f, f.alice, "B", 5), score(f, f.alice, "C", 3)} {
		_, _, err := ev.RecordScore(ctx, s)
		require.NoError(t, err)
	}
	_, err = ev.SetMinimalRate(ctx, f.interview.ID, 70)
	require.NoError(t, err)
	_, err = ev.OverridePassed(ctx, f.interview.ID, false)
	require.NoError(t, err)

	snap, err := ev.SaveSnapshot(ctx, f.interview.ID, SnapshotRequest{})
	require.NoError(t, err)
	assert.Equal(t, 73.3, snap.TotalScore)

	history, err := f.store.ListEvaluations(ctx, f.interview.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestEvaluator_OverrideNeedsEvaluation(t *testing.T) {
	f := newFixture(t)
	ev, _ := newEvaluator(t, f)
	_, err := ev.OverridePassed(context.Background(), f.interview.ID, true)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

package interview

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/mind-engage/interview-console/internal/events"
	"github.com/mind-engage/interview-console/internal/logging"
	"github.com/mind-engage/interview-console/internal/scoring"
)

// EventRecorder is the sink for domain events; *events.Recorder satisfies it.
type EventRecorder interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string, any) error { return nil }

// Evaluator keeps the stored evaluation of every interview in step with its scores.
// A draft is recomputed on every score write and on rate changes; manual overrides
// survive until the score set or the rate moves. Writes to one interview's draft
// are serialized within the process.
type Evaluator struct {
	store       Store
	engine      *scoring.Engine
	events      EventRecorder
	log         *zap.Logger
	defaultRate float64

	locks sync.Map // interview id -> *sync.Mutex
}

func NewEvaluator(store Store, engine *scoring.Engine, rec EventRecorder, log *zap.Logger, defaultRate float64) *Evaluator {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{store: store, engine: engine, events: rec, log: log, defaultRate: defaultRate}
}

func (e *Evaluator) Engine() *scoring.Engine { return e.engine }

func (e *Evaluator) lock(interviewID string) func() {
	m, _ := e.locks.LoadOrStore(interviewID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// record appends a domain event. The write it describes is already stored,
// so a failure is logged rather than returned.
func (e *Evaluator) record(ctx context.Context, typ, interviewID string, payload any) {
	if err := e.events.Record(ctx, typ, interviewID, payload); err != nil {
		logging.With(ctx, e.log).Error("record event failed",
			zap.String("type", typ), zap.String("interview_id", interviewID), zap.Error(err))
	}
}

// SnapshotRequest is the body of a saved evaluation. All fields are optional;
// the total is always re-derived from the stored scores.
type SnapshotRequest struct {
	TotalScore  *float64 `json:"total_score"`
	Passed      *bool    `json:"passed"`
	MinimalRate *float64 `json:"minimal_rate"`
}

func (e *Evaluator) templateQuestions(ctx context.Context, in Interview) ([]scoring.Question, []string, error) {
	tpl, err := e.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	qs, err := e.store.GetQuestions(ctx, tpl.Questions)
	if err != nil {
		return nil, nil, err
	}
	out := make([]scoring.Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, scoring.Question{ID: q.ID, Weight: q.Weight})
	}
	return out, tpl.Questions, nil
}

// compute evaluates the interview from its stored scores. rate < 0 means "keep
// the draft's rate, or the default when there is no draft".
func (e *Evaluator) compute(ctx context.Context, in Interview, interviewerID string, rate float64) (scoring.Result, *scoring.Evaluation, error) {
	questions, _, err := e.templateQuestions(ctx, in)
	if err != nil {
		return scoring.Result{}, nil, err
	}
	scores, err := e.store.ListScores(ctx, in.ID)
	if err != nil {
		return scoring.Result{}, nil, err
	}
	rows := make([]scoring.ScoreRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, s.Row())
	}

	prior, err := e.store.GetDraft(ctx, in.ID)
	if err != nil {
		return scoring.Result{}, nil, err
	}
	if rate < 0 {
		rate = e.defaultRate
		if prior != nil {
			rate = prior.MinimalRate
		}
	}

	basis := prior
	if interviewerID != "" {
		rows = scoring.ForInterviewer(rows, interviewerID)
		basis = nil
	}
	resolved, err := e.engine.Resolve(rows)
	if err != nil {
		return scoring.Result{}, nil, err
	}
	res, err := e.engine.Compute(questions, resolved, rate, basis)
	if err != nil {
		return scoring.Result{}, nil, invalidWrap("evaluation", "cannot compute", err)
	}
	return res, prior, nil
}

// RecordScore validates and stores one interviewer's rating, then recomputes the draft.
func (e *Evaluator) RecordScore(ctx context.Context, s Score) (Score, scoring.Result, error) {
	if s.QuestionID == "" {
		return Score{}, scoring.Result{}, invalid("question_id", "required")
	}
	if s.InterviewerID == "" {
		return Score{}, scoring.Result{}, invalid("interviewer_id", "required")
	}
	if err := e.engine.ValidateValue(s.Value); err != nil {
		return Score{}, scoring.Result{}, invalidWrap("value", "out of range", err)
	}

	in, err := e.store.GetInterview(ctx, s.InterviewID)
	if err != nil {
		return Score{}, scoring.Result{}, err
	}
	_, ids, err := e.templateQuestions(ctx, in)
	if err != nil {
		return Score{}, scoring.Result{}, err
	}
	if !contains(ids, s.QuestionID) {
		return Score{}, scoring.Result{}, invalid("question_id", "not part of the interview template")
	}
	if len(in.InterviewerIDs) > 0 && !contains(in.InterviewerIDs, s.InterviewerID) {
		return Score{}, scoring.Result{}, invalid("interviewer_id", "not assigned to this interview")
	}

	unlock := e.lock(in.ID)
	defer unlock()

	saved, err := e.store.UpsertScore(ctx, s)
	if err != nil {
		return Score{}, scoring.Result{}, err
	}
	if in.Status == StatusScheduled {
		if err := e.store.SetInterviewStatus(ctx, in.ID, StatusInProgress); err != nil {
			return Score{}, scoring.Result{}, err
		}
	}

	res, _, err := e.compute(ctx, in, "", -1)
	if err != nil {
		return Score{}, scoring.Result{}, err
	}
	if res.Computed {
		if err := e.store.SaveDraft(ctx, in.ID, res.Evaluation); err != nil {
			return Score{}, scoring.Result{}, err
		}
	}

	e.record(ctx, events.TypeScoreRecorded, in.ID, map[string]any{
		"question_id":    saved.QuestionID,
		"interviewer_id": saved.InterviewerID,
		"value":          saved.Value,
		"total_score":    res.TotalScore,
		"passed":         res.Passed,
	})
	logging.With(ctx, e.log).Info("score recorded",
		zap.String("interview_id", in.ID),
		zap.String("question_id", saved.QuestionID),
		zap.Float64("value", saved.Value),
		zap.Float64("total_score", res.TotalScore))
	return saved, res, nil
}

// Evaluate returns the current evaluation. With interviewerID set, only that
// interviewer's scores count and nothing is persisted.
func (e *Evaluator) Evaluate(ctx context.Context, interviewID, interviewerID string) (scoring.Result, error) {
	in, err := e.store.GetInterview(ctx, interviewID)
	if err != nil {
		return scoring.Result{}, err
	}
	res, _, err := e.compute(ctx, in, interviewerID, -1)
	return res, err
}

// SetMinimalRate moves the threshold and re-derives passed. The total comes from
// the stored draft while it matches the current scores, otherwise it is recomputed.
// Re-sending the current rate keeps a manual override.
func (e *Evaluator) SetMinimalRate(ctx context.Context, interviewID string, rate float64) (scoring.Evaluation, error) {
	if err := scoring.ValidateMinimalRate(rate); err != nil {
		return scoring.Evaluation{}, invalidWrap("minimal_rate", "out of range", err)
	}
	in, err := e.store.GetInterview(ctx, interviewID)
	if err != nil {
		return scoring.Evaluation{}, err
	}
	unlock := e.lock(in.ID)
	defer unlock()

	res, prior, err := e.compute(ctx, in, "", rate)
	if err != nil {
		return scoring.Evaluation{}, err
	}
	ev := scoring.Evaluation{MinimalRate: rate}
	switch {
	case res.Computed && prior != nil && prior.ScoreDigest == res.ScoreDigest:
		ev, err = scoring.WithMinimalRate(*prior, rate)
	case res.Computed:
		ev = res.Evaluation
	case prior != nil && prior.ScoreDigest != "":
		ev, err = scoring.WithMinimalRate(*prior, rate)
	}
	if err != nil {
		return scoring.Evaluation{}, invalidWrap("minimal_rate", "out of range", err)
	}
	if err := e.store.SaveDraft(ctx, interviewID, ev); err != nil {
		return scoring.Evaluation{}, err
	}
	e.record(ctx, events.TypeRateChanged, interviewID, ev)
	logging.With(ctx, e.log).Info("minimal rate changed",
		zap.String("interview_id", interviewID), zap.Float64("minimal_rate", rate), zap.Bool("passed", ev.Passed))
	return ev, nil
}

// OverridePassed records an operator's verdict on the evaluation of the current scores.
func (e *Evaluator) OverridePassed(ctx context.Context, interviewID string, passed bool) (scoring.Evaluation, error) {
	in, err := e.store.GetInterview(ctx, interviewID)
	if err != nil {
		return scoring.Evaluation{}, err
	}
	unlock := e.lock(in.ID)
	defer unlock()

	res, _, err := e.compute(ctx, in, "", -1)
	if err != nil {
		return scoring.Evaluation{}, err
	}
	if !res.Computed {
		return scoring.Evaluation{}, invalid("passed", "no evaluation has been computed yet")
	}
	ev := scoring.Override(res.Evaluation, passed)
	if err := e.store.SaveDraft(ctx, interviewID, ev); err != nil {
		return scoring.Evaluation{}, err
	}
	e.record(ctx, events.TypePassedOverridden, interviewID, ev)
	logging.With(ctx, e.log).Info("evaluation overridden",
		zap.String("interview_id", interviewID), zap.Bool("passed", passed), zap.Float64("total_score", ev.TotalScore))
	return ev, nil
}

// SaveSnapshot persists the current evaluation into the interview's history.
// A posted passed that disagrees with the threshold verdict becomes an override.
func (e *Evaluator) SaveSnapshot(ctx context.Context, interviewID string, req SnapshotRequest) (EvaluationRecord, error) {
	in, err := e.store.GetInterview(ctx, interviewID)
	if err != nil {
		return EvaluationRecord{}, err
	}
	rate := -1.0
	if req.MinimalRate != nil {
		if err := scoring.ValidateMinimalRate(*req.MinimalRate); err != nil {
			return EvaluationRecord{}, invalidWrap("minimal_rate", "out of range", err)
		}
		rate = *req.MinimalRate
	}
	unlock := e.lock(in.ID)
	defer unlock()

	res, _, err := e.compute(ctx, in, "", rate)
	if err != nil {
		return EvaluationRecord{}, err
	}
	if !res.Computed {
		return EvaluationRecord{}, invalid("scores", "no template question has been scored")
	}

	ev := res.Evaluation
	if req.Passed != nil && *req.Passed != ev.Passed {
		ev = scoring.Override(ev, *req.Passed)
	}
	if req.TotalScore != nil && math.Abs(*req.TotalScore-ev.TotalScore) >= 0.05 {
		logging.With(ctx, e.log).Warn("posted total differs from stored scores",
			zap.String("interview_id", interviewID),
			zap.Float64("posted", *req.TotalScore),
			zap.Float64("derived", ev.TotalScore))
	}

	if err := e.store.SaveDraft(ctx, interviewID, ev); err != nil {
		return EvaluationRecord{}, err
	}
	rec, err := e.store.AddEvaluation(ctx, interviewID, ev)
	if err != nil {
		return EvaluationRecord{}, err
	}
	if err := e.store.SetInterviewStatus(ctx, interviewID, StatusEvaluated); err != nil {
		return EvaluationRecord{}, err
	}
	e.record(ctx, events.TypeEvaluationSaved, interviewID, rec)
	logging.With(ctx, e.log).Info("evaluation saved",
		zap.String("interview_id", interviewID),
		zap.Float64("total_score", rec.TotalScore),
		zap.Bool("passed", rec.Passed),
		zap.Bool("overridden", rec.Overridden))
	return rec, nil
}

// SaveFeedback stores the interview's feedback and logs the change.
func (e *Evaluator) SaveFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	saved, err := e.store.SaveFeedback(ctx, f)
	if err != nil {
		return Feedback{}, err
	}
	e.record(ctx, events.TypeFeedbackSaved, f.InterviewID, map[string]any{
		"phrases": saved.PredefinedPhraseIDs,
	})
	return saved, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

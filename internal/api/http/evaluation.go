package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/interview-console/internal/auth/middleware"
	"github.com/mind-engage/interview-console/internal/interview"
	"github.com/mind-engage/interview-console/internal/rbac"
)

func ListScoresHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.GetInterview(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.ListScores(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// POST /api/interviews/{id}/scores {question_id, value, comment, interviewer_id}
//
// interviewer_id defaults to the caller. Scoring on behalf of someone else
// needs score:write_any.
func RecordScoreHandler(ev *interview.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID    string   `json:"question_id"`
			Value         *float64 `json:"value"`
			Comment       string   `json:"comment"`
			InterviewerID string   `json:"interviewer_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Value == nil {
			writeError(w, r, &interview.ValidationError{Field: "value", Message: "required"})
			return
		}

		p := authmw.PrincipalFromContext(r.Context())
		if req.InterviewerID == "" {
			req.InterviewerID = p.Subject
		}
		if p.Subject != "" && req.InterviewerID != p.Subject && !rbac.Default().Has(p.Role, rbac.PermScoreWriteAny) {
			respondError(w, http.StatusForbidden, "cannot score on behalf of another interviewer")
			return
		}

		saved, res, err := ev.RecordScore(r.Context(), interview.Score{
			InterviewID:   chi.URLParam(r, "id"),
			QuestionID:    req.QuestionID,
			InterviewerID: req.InterviewerID,
			Value:         *req.Value,
			Comment:       req.Comment,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"score": saved, "evaluation": res})
	}
}

// GET /api/interviews/{id}/evaluation[?interviewer_id=]
func GetEvaluationHandler(ev *interview.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := ev.Evaluate(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("interviewer_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// PUT /api/interviews/{id}/evaluation/minimal-rate {minimal_rate}
func SetMinimalRateHandler(ev *interview.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MinimalRate *float64 `json:"minimal_rate"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.MinimalRate == nil {
			writeError(w, r, &interview.ValidationError{Field: "minimal_rate", Message: "required"})
			return
		}
		out, err := ev.SetMinimalRate(r.Context(), chi.URLParam(r, "id"), *req.MinimalRate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// PUT /api/interviews/{id}/evaluation/passed {passed}
func OverridePassedHandler(ev *interview.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Passed *bool `json:"passed"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Passed == nil {
			writeError(w, r, &interview.ValidationError{Field: "passed", Message: "required"})
			return
		}
		out, err := ev.OverridePassed(r.Context(), chi.URLParam(r, "id"), *req.Passed)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// POST /api/interviews/{id}/evaluations {total_score, passed, minimal_rate}
func SaveEvaluationHandler(ev *interview.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req interview.SnapshotRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		rec, err := ev.SaveSnapshot(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, rec)
	}
}

func ListEvaluationsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.GetInterview(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.ListEvaluations(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

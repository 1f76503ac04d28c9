package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authmw "github.com/mind-engage/interview-console/internal/auth/middleware"
	"github.com/mind-engage/interview-console/internal/cache"
	"github.com/mind-engage/interview-console/internal/events"
	"github.com/mind-engage/interview-console/internal/interview"
	"github.com/mind-engage/interview-console/internal/logging"
)

func ListInterviewsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, err := parseDate(q.Get("start_date"), false)
		if err != nil {
			writeError(w, r, err)
			return
		}
		end, err := parseDate(q.Get("end_date"), true)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.ListInterviews(r.Context(), interview.InterviewFilter{
			CandidateID: q.Get("candidate_id"),
			Position:    q.Get("position"),
			Status:      q.Get("status"),
			TemplateID:  q.Get("template_id"),
			StartDate:   start,
			EndDate:     end,
			Limit:       queryInt(r, "limit", 50),
			Offset:      queryInt(r, "offset", 0),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func CreateInterviewHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CandidateID    string   `json:"candidate_id"`
			CandidateName  string   `json:"candidate_name"`
			Position       string   `json:"position"`
			InterviewDate  string   `json:"interview_date"`
			TemplateID     string   `json:"template_id"`
			InterviewerIDs []string `json:"interviewer_ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		date, err := parseDate(req.InterviewDate, false)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.CreateInterview(r.Context(), interview.Interview{
			TemplateID:     req.TemplateID,
			CandidateID:    req.CandidateID,
			CandidateName:  req.CandidateName,
			Position:       req.Position,
			InterviewDate:  date,
			InterviewerIDs: req.InterviewerIDs,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

func GetInterviewHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.GetInterview(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func DeleteInterviewHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteInterview(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- interviewers & phrases ----

func ListInterviewersHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListInterviewers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// POST /api/interviews/interviewers {name, email, role, password?}
func CreateInterviewerHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Role     string `json:"role"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		iv := interview.Interviewer{Name: req.Name, Email: req.Email, Role: req.Role}
		if req.Password != "" {
			hash, err := authmw.HashPassword(req.Password)
			if err != nil {
				writeError(w, r, err)
				return
			}
			iv.PasswordHash = hash
		}
		out, err := store.CreateInterviewer(r.Context(), iv)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

func ListPhrasesHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListPhrases(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func CreatePhraseHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p interview.Phrase
		if err := decodeJSON(r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.CreatePhrase(r.Context(), p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

// POST /api/interviews/{id}/feedback {text, predefined_phrase_ids}
func SaveFeedbackHandler(ev *interview.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f interview.Feedback
		if err := decodeJSON(r, &f); err != nil {
			writeError(w, r, err)
			return
		}
		f.InterviewID = chi.URLParam(r, "id")
		out, err := ev.SaveFeedback(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// EventLister reads an interview's event log; *events.Recorder satisfies it.
type EventLister interface {
	List(ctx context.Context, key string, after int64, limit int) ([]events.Event, error)
}

// GET /api/interviews/{id}/events?after=<seq>
func ListEventsHandler(store interview.Store, ev EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.GetInterview(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := ev.List(r.Context(), id, int64(queryInt(r, "after", 0)), queryInt(r, "limit", 100))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

const statsKey = "dashboard:stats"

// GET /api/dashboard/stats; served from the cache when it holds a copy.
func DashboardStatsHandler(store interview.Store, c cache.Cache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.FromContext(r.Context())
		if b, err := c.Get(r.Context(), statsKey); err != nil {
			log.Warn("stats cache read failed", zap.Error(err))
		} else if b != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(b)
			return
		}

		out, err := store.Stats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := c.Set(r.Context(), statsKey, out, ttl); err != nil {
			log.Warn("stats cache write failed", zap.Error(err))
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// dropStatsOnWrite evicts the cached stats after every successful write.
func dropStatsOnWrite(c cache.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() < http.StatusBadRequest {
				if err := c.Delete(r.Context(), statsKey); err != nil {
					logging.FromContext(r.Context()).Warn("stats cache eviction failed", zap.Error(err))
				}
			}
		})
	}
}

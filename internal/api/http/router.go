package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	authmw "github.com/mind-engage/interview-console/internal/auth/middleware"
	"github.com/mind-engage/interview-console/internal/cache"
	"github.com/mind-engage/interview-console/internal/config"
	"github.com/mind-engage/interview-console/internal/interview"
	"github.com/mind-engage/interview-console/internal/logging"
	"github.com/mind-engage/interview-console/internal/rbac"
)

type Deps struct {
	Config    config.Config
	DB        *sql.DB // readiness probe
	Store     interview.Store
	Evaluator *interview.Evaluator
	Events    EventLister
	Cache     cache.Cache // dashboard stats; nil disables
	Auth      *authmw.AuthService
	Log       *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.Dummy()
	}
	timeout := d.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Requests(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.Config.AuthEnabled && d.Config.EnableLocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(d.Auth, authmw.FirstOf(
			interviewerAccounts(d.Store),
			authmw.StaticAccount(d.Config.AdminUser, d.Config.AdminPassHash, "admin"),
		)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.DB.PingContext(ctx); err != nil {
				respondError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(pr chi.Router) {
		if d.Config.AuthEnabled {
			pr.Use(authmw.JWTMiddleware(d.Auth), authmw.AttachRole(interviewerRoles(d.Store), false))
		} else {
			pr.Use(authmw.Anonymous("admin"))
		}
		pr.Use(dropStatsOnWrite(d.Cache))
		mountAPI(pr, d)
	})
	return r
}

func mountAPI(pr chi.Router, d Deps) {
	store, ev := d.Store, d.Evaluator
	guard := func(perm string) chi.Router { return pr.With(rbac.Require(perm)) }

	// questions and their dictionaries; static segments win over {id}
	guard(rbac.PermQuestionView).Get("/questions", ListQuestionsHandler(store))
	guard(rbac.PermQuestionWrite).Post("/questions", CreateQuestionHandler(store))
	for _, kind := range []interview.DictKind{interview.DictUnits, interview.DictDifficulties, interview.DictLevels, interview.DictGroups} {
		guard(rbac.PermQuestionView).Get("/questions/"+string(kind), ListDictionaryHandler(store, kind))
		guard(rbac.PermDictionaryEdit).Post("/questions/"+string(kind), CreateDictionaryEntryHandler(store, kind))
	}
	guard(rbac.PermQuestionView).Get("/questions/{id}", GetQuestionHandler(store))
	guard(rbac.PermQuestionWrite).Put("/questions/{id}", UpdateQuestionHandler(store))
	guard(rbac.PermQuestionWrite).Delete("/questions/{id}", DeleteQuestionHandler(store))

	guard(rbac.PermTemplateView).Get("/templates", ListTemplatesHandler(store))
	guard(rbac.PermTemplateWrite).Post("/templates", CreateTemplateHandler(store))
	guard(rbac.PermTemplateView).Get("/templates/{id}", GetTemplateHandler(store))
	guard(rbac.PermTemplateWrite).Put("/templates/{id}", UpdateTemplateHandler(store))
	guard(rbac.PermTemplateWrite).Delete("/templates/{id}", DeleteTemplateHandler(store))
	guard(rbac.PermTemplateView).Get("/templates/{id}/questions", TemplateQuestionsHandler(store))
	guard(rbac.PermTemplateWrite).Post("/templates/{id}/questions", SetTemplateQuestionsHandler(store))
	guard(rbac.PermTemplateWrite).Post("/templates/{id}/clone", CloneTemplateHandler(store))

	guard(rbac.PermInterviewView).Get("/interviews", ListInterviewsHandler(store))
	guard(rbac.PermInterviewWrite).Post("/interviews", CreateInterviewHandler(store))
	guard(rbac.PermInterviewView).Get("/interviews/interviewers", ListInterviewersHandler(store))
	guard(rbac.PermInterviewerAdd).Post("/interviews/interviewers", CreateInterviewerHandler(store))
	guard(rbac.PermInterviewerAdd).Put("/interviews/interviewers/{id}/role", UpdateInterviewerRoleHandler(store))
	pr.Post("/interviews/interviewers/me/password", ChangePasswordHandler(store))
	guard(rbac.PermInterviewView).Get("/interviews/phrases", ListPhrasesHandler(store))
	guard(rbac.PermPhraseWrite).Post("/interviews/phrases", CreatePhraseHandler(store))
	guard(rbac.PermInterviewView).Get("/interviews/{id}", GetInterviewHandler(store))
	guard(rbac.PermInterviewWrite).Delete("/interviews/{id}", DeleteInterviewHandler(store))

	guard(rbac.PermInterviewView).Get("/interviews/{id}/scores", ListScoresHandler(store))
	pr.With(rbac.RequireAny(rbac.PermScoreWrite, rbac.PermScoreWriteAny)).
		Post("/interviews/{id}/scores", RecordScoreHandler(ev))
	guard(rbac.PermEvaluationView).Get("/interviews/{id}/evaluation", GetEvaluationHandler(ev))
	guard(rbac.PermEvaluationEdit).Put("/interviews/{id}/evaluation/minimal-rate", SetMinimalRateHandler(ev))
	guard(rbac.PermEvaluationEdit).Put("/interviews/{id}/evaluation/passed", OverridePassedHandler(ev))
	guard(rbac.PermEvaluationView).Get("/interviews/{id}/evaluations", ListEvaluationsHandler(store))
	guard(rbac.PermEvaluationEdit).Post("/interviews/{id}/evaluations", SaveEvaluationHandler(ev))
	guard(rbac.PermFeedbackWrite).Post("/interviews/{id}/feedback", SaveFeedbackHandler(ev))
	if d.Events != nil {
		guard(rbac.PermInterviewView).Get("/interviews/{id}/events", ListEventsHandler(store, d.Events))
	}

	guard(rbac.PermDashboardView).Get("/dashboard/stats", DashboardStatsHandler(store, d.Cache, d.Config.StatsCacheTTL))
}

func interviewerAccounts(store interview.Store) authmw.AccountLookup {
	return func(ctx context.Context, username string) (authmw.Account, bool, error) {
		iv, err := store.FindInterviewerByEmail(ctx, username)
		if errors.Is(err, interview.ErrNotFound) {
			return authmw.Account{}, false, nil
		}
		if err != nil {
			return authmw.Account{}, false, err
		}
		return authmw.Account{Subject: iv.ID, Role: iv.Role, PasswordHash: iv.PasswordHash}, true, nil
	}
}

func interviewerRoles(store interview.Store) authmw.RoleLookup {
	return func(ctx context.Context, sub string) (string, bool, error) {
		iv, err := store.GetInterviewer(ctx, sub)
		if errors.Is(err, interview.ErrNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return iv.Role, true, nil
	}
}

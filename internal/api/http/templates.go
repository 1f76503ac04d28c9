package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/interview-console/internal/interview"
)

func ListTemplatesHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListTemplates(r.Context(), interview.TemplateFilter{
			Q:        strings.TrimSpace(r.URL.Query().Get("q")),
			Position: strings.TrimSpace(r.URL.Query().Get("position")),
			Limit:    queryInt(r, "limit", 50),
			Offset:   queryInt(r, "offset", 0),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func CreateTemplateHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t interview.Template
		if err := decodeJSON(r, &t); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.CreateTemplate(r.Context(), t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

func GetTemplateHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// UpdateTemplateHandler changes name, description and position; a non-nil
// questions list also replaces the question set.
func UpdateTemplateHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t interview.Template
		if err := decodeJSON(r, &t); err != nil {
			writeError(w, r, err)
			return
		}
		t.ID = chi.URLParam(r, "id")
		out, err := store.UpdateTemplate(r.Context(), t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if t.Questions != nil {
			if out, err = store.SetTemplateQuestions(r.Context(), t.ID, t.Questions); err != nil {
				writeError(w, r, err)
				return
			}
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func DeleteTemplateHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/templates/{id}/questions {questions:[id...]}
func SetTemplateQuestionsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Questions []string `json:"questions"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.SetTemplateQuestions(r.Context(), chi.URLParam(r, "id"), req.Questions)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /api/templates/{id}/questions returns full questions in template order.
func TemplateQuestionsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tpl, err := store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		qs, err := store.GetQuestions(r.Context(), tpl.Questions)
		if err != nil {
			writeError(w, r, err)
			return
		}
		match := interview.QuestionPredicate(questionFilter(r), queryFloat(r, "min_weight"))
		respondJSON(w, http.StatusOK, interview.Filter(qs, match))
	}
}

// POST /api/templates/{id}/clone {name, position}
func CloneTemplateHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Position string `json:"position"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.CloneTemplate(r.Context(), chi.URLParam(r, "id"), req.Name, req.Position)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

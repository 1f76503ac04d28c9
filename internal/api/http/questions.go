package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/interview-console/internal/interview"
)

func questionFilter(r *http.Request) interview.QuestionFilter {
	q := r.URL.Query()
	return interview.QuestionFilter{
		TextSearch:   strings.TrimSpace(q.Get("text_search")),
		UnitID:       q.Get("unit_id"),
		DifficultyID: q.Get("difficulty_id"),
		LevelID:      q.Get("level_id"),
		GroupID:      q.Get("group_id"),
		Limit:        queryInt(r, "limit", 50),
		Offset:       queryInt(r, "offset", 0),
	}
}

func ListQuestionsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListQuestions(r.Context(), questionFilter(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func CreateQuestionHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q interview.Question
		if err := decodeJSON(r, &q); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.CreateQuestion(r.Context(), q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

func GetQuestionHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.GetQuestion(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func UpdateQuestionHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q interview.Question
		if err := decodeJSON(r, &q); err != nil {
			writeError(w, r, err)
			return
		}
		q.ID = chi.URLParam(r, "id")
		out, err := store.UpdateQuestion(r.Context(), q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func DeleteQuestionHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- dictionaries: units, difficulties, seniority levels, groups ----

func ListDictionaryHandler(store interview.Store, kind interview.DictKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListDictionary(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func CreateDictionaryEntryHandler(store interview.Store, kind interview.DictKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e interview.DictEntry
		if err := decodeJSON(r, &e); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.CreateDictionaryEntry(r.Context(), kind, e)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, out)
	}
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/interview-console/internal/auth/middleware"
	"github.com/mind-engage/interview-console/internal/interview"
)

// POST /api/interviews/interviewers/me/password {old_password, new_password}
func ChangePasswordHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if len(req.NewPassword) < 8 {
			writeError(w, r, &interview.ValidationError{Field: "new_password", Message: "at least 8 characters"})
			return
		}

		iv, err := store.GetInterviewer(r.Context(), sub)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if iv.PasswordHash != "" &&
			bcrypt.CompareHashAndPassword([]byte(iv.PasswordHash), []byte(req.OldPassword)) != nil {
			respondError(w, http.StatusForbidden, "incorrect old password")
			return
		}

		hash, err := authmw.HashPassword(req.NewPassword)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.SetInterviewerPassword(r.Context(), sub, hash); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PUT /api/interviews/interviewers/{id}/role {role}
func UpdateInterviewerRoleHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role string `json:"role"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := store.SetInterviewerRole(r.Context(), chi.URLParam(r, "id"), req.Role)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

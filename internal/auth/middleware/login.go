package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Account is what a login lookup returns for a username.
type Account struct {
	Subject      string
	Role         string
	PasswordHash string // bcrypt; empty disables password login
}

// AccountLookup resolves a username. It returns ok=false for unknown users.
type AccountLookup func(ctx context.Context, username string) (acct Account, ok bool, err error)

// StaticAccount accepts a single configured user, typically the bootstrap admin.
func StaticAccount(username, passHash, role string) AccountLookup {
	return func(_ context.Context, u string) (Account, bool, error) {
		if username == "" || passHash == "" || u != username {
			return Account{}, false, nil
		}
		return Account{Subject: username, Role: role, PasswordHash: passHash}, true, nil
	}
}

// FirstOf tries each lookup in order.
func FirstOf(lookups ...AccountLookup) AccountLookup {
	return func(ctx context.Context, u string) (Account, bool, error) {
		for _, l := range lookups {
			acct, ok, err := l(ctx, u)
			if err != nil || ok {
				return acct, ok, err
			}
		}
		return Account{}, false, nil
	}
}

// HashPassword returns a bcrypt hash for storage.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, lookup AccountLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		acct, ok, err := lookup(r.Context(), req.Username)
		if err != nil {
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		if !ok || acct.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)) != nil {
			unauthorized(w, "invalid credentials")
			return
		}
		tok, err := a.IssueJWT(acct.Subject, acct.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": tok,
			"token_type":   "Bearer",
			"role":         acct.Role,
		})
	}
}

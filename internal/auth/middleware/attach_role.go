package auth

import (
	"context"
	"net/http"

	"github.com/mind-engage/interview-console/internal/rbac"
)

// RoleLookup returns the stored role of a subject; found=false when the
// subject has no record.
type RoleLookup func(ctx context.Context, sub string) (role string, found bool, err error)

// AttachRole replaces the token's role with the stored one so role changes
// apply before the token expires. Subjects without a record keep their claim
// role only when it is admin (the bootstrap account) or allowClaimFallback is set.
func AttachRole(lookup RoleLookup, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			role, found, err := lookup(ctx, sub)
			switch {
			case err == nil && found && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case err == nil && !found && (claimRole == "admin" || (allowClaimFallback && claimRole != "")):
				next.ServeHTTP(w, r)
			case err != nil && allowClaimFallback && claimRole != "":
				next.ServeHTTP(w, r)
			default:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			}
		})
	}
}

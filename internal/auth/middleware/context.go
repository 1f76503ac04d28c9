package auth

import (
	"context"

	"github.com/mind-engage/interview-console/internal/rbac"
)

type subjectKey struct{}

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFromContext returns the interviewer id of the caller, or "" when anonymous.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}

func PrincipalFromContext(ctx context.Context) Principal {
	return Principal{Subject: SubjectFromContext(ctx), Role: rbac.RoleFromContext(ctx)}
}

package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role, perm string
		want       bool
	}{
		{"viewer", PermInterviewView, true},
		{"viewer", PermDashboardView, true},
		{"viewer", PermScoreWrite, false},
		{"interviewer", PermScoreWrite, true},
		{"interviewer", PermEvaluationEdit, true},
		{"interviewer", PermScoreWriteAny, false},
		{"interviewer", PermQuestionWrite, false},
		{"admin", PermScoreWriteAny, true},
		{"ghost", PermQuestionView, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Has(tt.role, tt.perm), "%s %s", tt.role, tt.perm)
	}

	assert.True(t, c.Any("interviewer", PermQuestionWrite, PermScoreWrite))
	assert.False(t, c.All("interviewer", PermQuestionWrite, PermScoreWrite))
	assert.Equal(t, []string{"admin", "interviewer", "viewer"}, c.Roles())
	assert.True(t, c.Known("viewer"))
}

func TestMatchPerm(t *testing.T) {
	assert.True(t, matchPerm("score:*", "score:write_any"))
	assert.True(t, matchPerm("*:view", "template:view"))
	assert.False(t, matchPerm("*:view", "template:write"))
	assert.False(t, matchPerm("score:write", "score:write_any"))
}

func TestRequire(t *testing.T) {
	h := Require(PermQuestionWrite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		"admin":       http.StatusNoContent,
		"interviewer": http.StatusForbidden,
		"":            http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/questions", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

package rbac

const (
	PermQuestionView   = "question:view"
	PermQuestionWrite  = "question:write"
	PermDictionaryEdit = "dictionary:write"
	PermTemplateView   = "template:view"
	PermTemplateWrite  = "template:write"
	PermInterviewView  = "interview:view"
	PermInterviewWrite = "interview:write"
	PermInterviewerAdd = "interviewer:write"
	PermPhraseWrite    = "phrase:write"
	PermScoreWrite     = "score:write"
	PermScoreWriteAny  = "score:write_any" // score on behalf of another interviewer
	PermEvaluationView = "evaluation:view"
	PermEvaluationEdit = "evaluation:write"
	PermFeedbackWrite  = "feedback:write"
	PermDashboardView  = "dashboard:view"
)

// RolePermissions is the default policy. Wildcards match by prefix.
var RolePermissions = map[string][]string{
	"viewer": {
		"*:view",
	},
	"interviewer": {
		"*:view",
		PermInterviewWrite,
		PermScoreWrite,
		PermEvaluationEdit,
		PermFeedbackWrite,
	},
	"admin": {
		"*", // everything
	},
}

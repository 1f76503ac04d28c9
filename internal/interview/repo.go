package interview

import (
	"context"
	"time"

	"github.com/mind-engage/interview-console/internal/scoring"
)

type QuestionFilter struct {
	TextSearch   string
	UnitID       string
	DifficultyID string
	LevelID      string
	GroupID      string
	Limit        int
	Offset       int
}

type TemplateFilter struct {
	Q        string // name substring
	Position string
	Limit    int
	Offset   int
}

type InterviewFilter struct {
	CandidateID string
	Position    string
	Status      string
	TemplateID  string
	StartDate   time.Time // inclusive, zero = unbounded
	EndDate     time.Time // inclusive, zero = unbounded
	Limit       int
	Offset      int
}

// Store is the resource store behind the console.
type Store interface {
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	GetQuestions(ctx context.Context, ids []string) ([]Question, error) // input order; ErrNotFound if any is missing
	ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	ListDictionary(ctx context.Context, kind DictKind) ([]DictEntry, error)
	CreateDictionaryEntry(ctx context.Context, kind DictKind, e DictEntry) (DictEntry, error)

	CreateTemplate(ctx context.Context, t Template) (Template, error)
	UpdateTemplate(ctx context.Context, t Template) (Template, error)
	GetTemplate(ctx context.Context, id string) (Template, error)
	ListTemplates(ctx context.Context, f TemplateFilter) ([]Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	SetTemplateQuestions(ctx context.Context, id string, questionIDs []string) (Template, error)
	CloneTemplate(ctx context.Context, id, name, position string) (Template, error)

	CreateInterviewer(ctx context.Context, iv Interviewer) (Interviewer, error)
	GetInterviewer(ctx context.Context, id string) (Interviewer, error)
	FindInterviewerByEmail(ctx context.Context, email string) (Interviewer, error)
	ListInterviewers(ctx context.Context) ([]Interviewer, error)
	SetInterviewerRole(ctx context.Context, id, role string) (Interviewer, error)
	SetInterviewerPassword(ctx context.Context, id, hash string) error

	CreatePhrase(ctx context.Context, p Phrase) (Phrase, error)
	ListPhrases(ctx context.Context) ([]Phrase, error)

	CreateInterview(ctx context.Context, in Interview) (Interview, error)
	GetInterview(ctx context.Context, id string) (Interview, error)
	ListInterviews(ctx context.Context, f InterviewFilter) ([]Interview, error)
	DeleteInterview(ctx context.Context, id string) error
	SetInterviewStatus(ctx context.Context, id, status string) error

	UpsertScore(ctx context.Context, s Score) (Score, error)
	ListScores(ctx context.Context, interviewID string) ([]Score, error) // oldest first

	GetDraft(ctx context.Context, interviewID string) (*scoring.Evaluation, error) // nil when none
	SaveDraft(ctx context.Context, interviewID string, ev scoring.Evaluation) error
	AddEvaluation(ctx context.Context, interviewID string, ev scoring.Evaluation) (EvaluationRecord, error)
	ListEvaluations(ctx context.Context, interviewID string) ([]EvaluationRecord, error) // newest first

	SaveFeedback(ctx context.Context, f Feedback) (Feedback, error)
	GetFeedback(ctx context.Context, interviewID string) (*Feedback, error) // nil when none

	Stats(ctx context.Context) (Stats, error)
}

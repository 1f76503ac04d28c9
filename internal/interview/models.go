package interview

import (
	"time"

	"github.com/mind-engage/interview-console/internal/scoring"
)

type Question struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Weight        float64 `json:"weight"`
	DocsReference string  `json:"docs_reference,omitempty"`
	UnitID        string  `json:"unit_id,omitempty"`
	DifficultyID  string  `json:"difficulty_id,omitempty"`
	LevelID       string  `json:"level_id,omitempty"`
	GroupID       string  `json:"group_id,omitempty"`
	CreatedAt     int64   `json:"created_at,omitempty"`
}

// Template is a reusable, ordered set of questions bound to a position.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Position    string   `json:"position"`
	Questions   []string `json:"questions"` // ordered question ids
	CreatedAt   int64    `json:"created_at,omitempty"`
}

// DictKind names one of the question classification dictionaries.
type DictKind string

const (
	DictUnits        DictKind = "units"
	DictDifficulties DictKind = "difficulties"
	DictLevels       DictKind = "seniority-levels"
	DictGroups       DictKind = "groups"
)

func (k DictKind) Valid() bool {
	switch k {
	case DictUnits, DictDifficulties, DictLevels, DictGroups:
		return true
	}
	return false
}

type DictEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"` // groups only
}

type Interviewer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusEvaluated  = "evaluated"
)

type Interview struct {
	ID             string             `json:"id"`
	TemplateID     string             `json:"template_id"`
	CandidateID    string             `json:"candidate_id,omitempty"`
	CandidateName  string             `json:"candidate_name"`
	Position       string             `json:"position"`
	InterviewDate  time.Time          `json:"interview_date"`
	Status         string             `json:"status"`
	InterviewerIDs []string           `json:"interviewer_ids"`
	Interviewers   []Interviewer      `json:"interviewers,omitempty"`
	Evaluations    []EvaluationRecord `json:"evaluations,omitempty"` // newest first
	Feedback       *Feedback          `json:"feedback,omitempty"`
	CreatedAt      int64              `json:"created_at,omitempty"`
}

// Score is one interviewer's rating of one question within an interview.
type Score struct {
	ID            string  `json:"id"`
	InterviewID   string  `json:"interview_id"`
	QuestionID    string  `json:"question_id"`
	InterviewerID string  `json:"interviewer_id"`
	Value         float64 `json:"value"`
	Comment       string  `json:"comment,omitempty"`
	UpdatedAt     int64   `json:"updated_at"` // unix nanos
}

func (s Score) Row() scoring.ScoreRow {
	return scoring.ScoreRow{
		QuestionID:    s.QuestionID,
		InterviewerID: s.InterviewerID,
		Value:         s.Value,
		RecordedAt:    time.Unix(0, s.UpdatedAt).UTC(),
	}
}

// EvaluationRecord is a persisted evaluation snapshot.
type EvaluationRecord struct {
	ID          string `json:"id"`
	InterviewID string `json:"interview_id"`
	scoring.Evaluation
	CreatedAt int64 `json:"created_at"`
}

const (
	PhrasePositive = "positive"
	PhraseNegative = "negative"
	PhraseNeutral  = "neutral"
)

// Phrase is a canned feedback snippet.
type Phrase struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

type Feedback struct {
	InterviewID         string   `json:"interview_id"`
	Text                string   `json:"text"`
	PredefinedPhraseIDs []string `json:"predefined_phrase_ids"`
	Phrases             []Phrase `json:"phrases,omitempty"`
	UpdatedAt           int64    `json:"updated_at,omitempty"`
}

type Stats struct {
	Questions          int            `json:"questions"`
	Templates          int            `json:"templates"`
	Interviews         int            `json:"interviews"`
	InterviewsByStatus map[string]int `json:"interviews_by_status"`
	Evaluated          int            `json:"evaluated"`
	Passed             int            `json:"passed"`
	PassRate           float64        `json:"pass_rate"` // percent of evaluated interviews whose latest snapshot passed
}

package scoring

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Resolution names the policy that turns several interviewers' ratings of one
// question into a single effective value.
type Resolution string

const (
	ResolveFirst   Resolution = "first"   // first row in input order
	ResolveLatest  Resolution = "latest"  // most recently recorded row
	ResolveAverage Resolution = "average" // arithmetic mean across interviewers
	ResolveHighest Resolution = "highest"
	ResolveLowest  Resolution = "lowest"
)

// ParseResolution maps a config string to a Resolution.
func ParseResolution(s string) (Resolution, error) {
	r := Resolution(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := resolvers[r]; !ok {
		return "", errors.Wrapf(ErrUnknownResolution, "%q", s)
	}
	return r, nil
}

// ScoreRow is one interviewer's rating of one question.
type ScoreRow struct {
	QuestionID    string    `json:"question_id"`
	InterviewerID string    `json:"interviewer_id,omitempty"`
	Value         float64   `json:"value"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Resolver picks the effective value from the rows of a single question.
// rows is never empty and keeps input order.
type Resolver interface {
	Resolve(rows []ScoreRow) float64
}

var resolvers = map[Resolution]Resolver{
	ResolveFirst:   firstResolver{},
	ResolveLatest:  latestResolver{},
	ResolveAverage: averageResolver{},
	ResolveHighest: highestResolver{},
	ResolveLowest:  lowestResolver{},
}

// Resolve groups rows by question and applies the engine's policy.
// Output order follows the first appearance of each question.
func (e *Engine) Resolve(rows []ScoreRow) ([]Resolved, error) {
	order := make([]string, 0, len(rows))
	groups := make(map[string][]ScoreRow, len(rows))
	for _, r := range rows {
		if err := e.ValidateValue(r.Value); err != nil {
			return nil, errors.Wrapf(err, "question %s", r.QuestionID)
		}
		if _, ok := groups[r.QuestionID]; !ok {
			order = append(order, r.QuestionID)
		}
		groups[r.QuestionID] = append(groups[r.QuestionID], r)
	}
	out := make([]Resolved, 0, len(order))
	for _, id := range order {
		out = append(out, Resolved{QuestionID: id, Value: e.resolver.Resolve(groups[id])})
	}
	return out, nil
}

// ForInterviewer keeps only the rows recorded by one interviewer.
func ForInterviewer(rows []ScoreRow, interviewerID string) []ScoreRow {
	out := make([]ScoreRow, 0, len(rows))
	for _, r := range rows {
		if r.InterviewerID == interviewerID {
			out = append(out, r)
		}
	}
	return out
}

type firstResolver struct{}

func (firstResolver) Resolve(rows []ScoreRow) float64 { return rows[0].Value }

type latestResolver struct{}

func (latestResolver) Resolve(rows []ScoreRow) float64 {
	best := rows[0]
	for _, r := range rows[1:] {
		if !r.RecordedAt.Before(best.RecordedAt) {
			best = r
		}
	}
	return best.Value
}

type averageResolver struct{}

func (averageResolver) Resolve(rows []ScoreRow) float64 {
	sum := 0.0
	for _, r := range rows {
		sum += r.Value
	}
	return sum / float64(len(rows))
}

type highestResolver struct{}

func (highestResolver) Resolve(rows []ScoreRow) float64 {
	v := rows[0].Value
	for _, r := range rows[1:] {
		if r.Value > v {
			v = r.Value
		}
	}
	return v
}

type lowestResolver struct{}

func (lowestResolver) Resolve(rows []ScoreRow) float64 {
	v := rows[0].Value
	for _, r := range rows[1:] {
		if r.Value < v {
			v = r.Value
		}
	}
	return v
}

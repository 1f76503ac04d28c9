package scoring

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Input is a self-contained evaluation request, as read by the evaluate command.
type Input struct {
	Questions   []Question  `json:"questions"`
	Scores      []ScoreRow  `json:"scores"`
	MinimalRate *float64    `json:"minimal_rate,omitempty"`
	Prior       *Evaluation `json:"prior,omitempty"`
}

// DecodeInput reads an Input document.
func DecodeInput(r io.Reader) (Input, error) {
	var in Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return Input{}, errors.Wrap(err, "decode evaluation input")
	}
	return in, nil
}

// Evaluate resolves the raw rows of in and computes the result.
// fallbackRate applies when in carries no minimal rate.
func (e *Engine) Evaluate(in Input, fallbackRate float64) (Result, error) {
	rate := fallbackRate
	if in.MinimalRate != nil {
		rate = *in.MinimalRate
	}
	resolved, err := e.Resolve(in.Scores)
	if err != nil {
		return Result{}, err
	}
	return e.Compute(in.Questions, resolved, rate, in.Prior)
}

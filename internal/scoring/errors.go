package scoring

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrInvalidWeight      = errors.New("weight must be a positive finite number")
	ErrInvalidScoreValue  = errors.New("score value is out of range")
	ErrInvalidMinimalRate = errors.New("minimal rate must be within [0, 100]")
	ErrDuplicateScore     = errors.New("more than one resolved score for a question")
	ErrUnknownResolution  = errors.New("unknown score resolution policy")
)

// ValidateWeight rejects zero, negative and non-finite weights.
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return errors.Wrapf(ErrInvalidWeight, "got %v", w)
	}
	return nil
}

// ValidateValue checks a rating against the default 0..5 scale.
func ValidateValue(v float64) error {
	return validateValue(v, DefaultMaxValue)
}

func validateValue(v, max float64) error {
	if math.IsNaN(v) || v < 0 || v > max {
		return errors.Wrapf(ErrInvalidScoreValue, "got %v, want [0, %v]", v, max)
	}
	return nil
}

func ValidateMinimalRate(r float64) error {
	if math.IsNaN(r) || r < 0 || r > 100 {
		return errors.Wrapf(ErrInvalidMinimalRate, "got %v", r)
	}
	return nil
}

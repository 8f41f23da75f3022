package scoring

import (
	"fmt"
	"math"
)

// Band boundaries. Both are inclusive to Ambiguous.
const (
	LowThreshold  = 0.4
	HighThreshold = 0.6
)

// InvariantViolationError reports a probability outside [0, 1] handed to
// Classify. It indicates a broken model contract, not bad input.
type InvariantViolationError struct {
	Probability float64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: probability %v outside [0, 1]", e.Probability)
}

// Classify maps a fraud probability to a risk band:
//
//	p < 0.4         NoFraud
//	0.4 <= p <= 0.6 Ambiguous
//	p > 0.6         Fraud
func Classify(p float64) (RiskBand, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, &InvariantViolationError{Probability: p}
	}
	switch {
	case p < LowThreshold:
		return NoFraud, nil
	case p <= HighThreshold:
		return Ambiguous, nil
	default:
		return Fraud, nil
	}
}

package scoring

import "fmt"

// RiskBand is the actionable classification of a fraud probability.
type RiskBand int

const (
	NoFraud RiskBand = iota
	// Ambiguous flags an application for manual review; it is not a
	// decision.
	Ambiguous
	Fraud
)

func (b RiskBand) String() string {
	switch b {
	case NoFraud:
		return "no_fraud"
	case Ambiguous:
		return "ambiguous"
	case Fraud:
		return "fraud"
	default:
		return fmt.Sprintf("RiskBand(%d)", int(b))
	}
}

// Label is the human-readable band name.
func (b RiskBand) Label() string {
	switch b {
	case NoFraud:
		return "No Fraud Detected"
	case Ambiguous:
		return "Likely Fraud"
	case Fraud:
		return "Fraud Detected"
	default:
		return b.String()
	}
}

// Level is the alert level a front-end should render the band with.
func (b RiskBand) Level() string {
	switch b {
	case NoFraud:
		return "info"
	case Ambiguous:
		return "warning"
	default:
		return "error"
	}
}

// Message describes the band and the probability range that produced it.
func (b RiskBand) Message() string {
	switch b {
	case NoFraud:
		return fmt.Sprintf("Model Prediction: %s (probability less than %v).", b.Label(), LowThreshold)
	case Ambiguous:
		return fmt.Sprintf("Model Prediction: %s (probability in the range %v to %v).", b.Label(), LowThreshold, HighThreshold)
	default:
		return fmt.Sprintf("Model Prediction: %s (probability greater than %v).", b.Label(), HighThreshold)
	}
}

func (b RiskBand) MarshalText() ([]byte, error) {
	switch b {
	case NoFraud, Ambiguous, Fraud:
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("invalid risk band %d", int(b))
}

func (b *RiskBand) UnmarshalText(text []byte) error {
	band, err := ParseRiskBand(string(text))
	if err != nil {
		return err
	}
	*b = band
	return nil
}

// ParseRiskBand reconstructs a RiskBand from its String form.
func ParseRiskBand(s string) (RiskBand, error) {
	switch s {
	case "no_fraud":
		return NoFraud, nil
	case "ambiguous":
		return Ambiguous, nil
	case "fraud":
		return Fraud, nil
	default:
		return 0, fmt.Errorf("invalid risk band: %s", s)
	}
}

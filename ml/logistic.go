package ml

import (
	"errors"
	"fmt"
	"math"
)

// LogisticRegression is a binary logistic model: p(fraud) = sigmoid(w·x + b).
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (m *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	if len(features) != len(m.Weights) {
		return nil, fmt.Errorf("expected %d features, got %d", len(m.Weights), len(features))
	}
	sum := m.Bias
	for i, w := range m.Weights {
		sum += w * features[i]
	}
	p := sigmoid(sum)
	return []float64{1 - p, p}, nil
}

func (m *LogisticRegression) NumFeatures() int {
	return len(m.Weights)
}

func (m *LogisticRegression) validate(nFeatures int) error {
	if len(m.Weights) != nFeatures {
		return fmt.Errorf("expected %d weights, got %d", nFeatures, len(m.Weights))
	}
	for i, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight %d is not finite", i)
		}
	}
	if math.IsNaN(m.Bias) || math.IsInf(m.Bias, 0) {
		return errors.New("bias is not finite")
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

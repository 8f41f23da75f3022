package ml

import (
	"errors"
	"fmt"
)

// RandomForest averages the class distributions of its trees.
type RandomForest struct {
	Trees []*DecisionTree `json:"trees"`
}

func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, errors.New("model not loaded")
	}
	out := []float64{0, 0}
	for i, tree := range rf.Trees {
		proba, err := tree.PredictProba(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		out[0] += proba[0]
		out[1] += proba[1]
	}
	n := float64(len(rf.Trees))
	out[0] /= n
	out[1] /= n
	return out, nil
}

func (rf *RandomForest) NumFeatures() int {
	if len(rf.Trees) == 0 {
		return 0
	}
	return rf.Trees[0].NumFeatures()
}

func (rf *RandomForest) validate(nFeatures int) error {
	if len(rf.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, tree := range rf.Trees {
		if tree == nil {
			return fmt.Errorf("tree %d is null", i)
		}
		if err := tree.validate(nFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

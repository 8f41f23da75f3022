package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// DecisionTree is a binary tree stored as a flat node array. Children always
// follow their parent, so traversal terminates.
type DecisionTree struct {
	nodes     []TreeNode
	nFeatures int
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	IsLeaf     bool      `json:"is_leaf"`
	Proba      []float64 `json:"proba,omitempty"`
}

func NewDecisionTree(nodes []TreeNode, nFeatures int) (*DecisionTree, error) {
	dt := &DecisionTree{nodes: append([]TreeNode(nil), nodes...)}
	if err := dt.validate(nFeatures); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	if len(dt.nodes) == 0 {
		return nil, errors.New("model not loaded")
	}
	if len(features) != dt.nFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", dt.nFeatures, len(features))
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return []float64{node.Proba[0], node.Proba[1]}, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) NumFeatures() int {
	return dt.nFeatures
}

func (dt *DecisionTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes []TreeNode `json:"nodes"`
	}{dt.nodes})
}

func (dt *DecisionTree) UnmarshalJSON(data []byte) error {
	var payload struct {
		Nodes []TreeNode `json:"nodes"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	dt.nodes = payload.Nodes
	return nil
}

func (dt *DecisionTree) validate(nFeatures int) error {
	if len(dt.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if err := checkDistribution(node.Proba); err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if math.IsNaN(node.Threshold) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, child)
			}
		}
	}
	dt.nFeatures = nFeatures
	return nil
}

func checkDistribution(proba []float64) error {
	if len(proba) != 2 {
		return fmt.Errorf("expected 2 class probabilities, got %d", len(proba))
	}
	for _, p := range proba {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("probability %v outside [0, 1]", p)
		}
	}
	if math.Abs(proba[0]+proba[1]-1) > 1e-6 {
		return fmt.Errorf("probabilities sum to %v", proba[0]+proba[1])
	}
	return nil
}

// Package mltest builds small model artifacts for tests.
package mltest

import (
	"path/filepath"
	"testing"

	"fraudscore/features"
	"fraudscore/ml"
)

// ConstantTree returns a single-leaf tree that always predicts fraud with
// probability p.
func ConstantTree(p float64, nFeatures int) *ml.DecisionTree {
	tree, err := ml.NewDecisionTree([]ml.TreeNode{{IsLeaf: true, Proba: []float64{1 - p, p}}}, nFeatures)
	if err != nil {
		panic(err)
	}
	return tree
}

// StumpTree splits on feature idx at threshold: values <= threshold get
// fraud probability low, the rest high.
func StumpTree(idx int, threshold, low, high float64, nFeatures int) *ml.DecisionTree {
	tree, err := ml.NewDecisionTree([]ml.TreeNode{
		{FeatureIdx: idx, Threshold: threshold, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Proba: []float64{1 - low, low}},
		{IsLeaf: true, Proba: []float64{1 - high, high}},
	}, nFeatures)
	if err != nil {
		panic(err)
	}
	return tree
}

// WriteArtifact saves model as an artifact laid out for schema and returns
// its path.
func WriteArtifact(t testing.TB, schema *features.Schema, kind string, model ml.Classifier) string {
	t.Helper()
	artifact, err := ml.NewArtifact(kind, "test", schema.Names(), model)
	if err != nil {
		t.Fatalf("build artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := artifact.Save(path); err != nil {
		t.Fatalf("save artifact: %v", err)
	}
	return path
}

// LoadAdapter writes model and loads it back through ml.Load.
func LoadAdapter(t testing.TB, schema *features.Schema, kind string, model ml.Classifier) *ml.Adapter {
	t.Helper()
	adapter, err := ml.Load(WriteArtifact(t, schema, kind, model), schema)
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	return adapter
}

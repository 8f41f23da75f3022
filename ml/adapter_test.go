package ml_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscore/features"
	"fraudscore/features/featurestest"
	"fraudscore/ml"
	"fraudscore/ml/mltest"
)

func validVector(t *testing.T) features.Vector {
	t.Helper()
	v, err := features.Default().Validate(featurestest.ValidRaw())
	require.NoError(t, err)
	return v
}

func TestLoad_LogisticRegression(t *testing.T) {
	schema := features.Default()
	weights := make([]float64, schema.Len())
	path := mltest.WriteArtifact(t, schema, ml.KindLogisticRegression, &ml.LogisticRegression{Weights: weights})

	adapter, err := ml.Load(path, schema)
	require.NoError(t, err)

	p, err := adapter.Infer(validVector(t))
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	info := adapter.Info()
	assert.Equal(t, ml.KindLogisticRegression, info.Kind)
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, schema.Len(), info.Features)
	assert.Len(t, info.SHA256, 64)
	assert.False(t, info.LoadedAt.IsZero())
}

func TestLoad_DecisionTreeReturnsPositiveClass(t *testing.T) {
	schema := features.Default()
	adapter := mltest.LoadAdapter(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.4, schema.Len()))

	p, err := adapter.Infer(validVector(t))
	require.NoError(t, err)
	assert.Equal(t, 0.4, p)
}

func TestLoad_RandomForest(t *testing.T) {
	schema := features.Default()
	ageIdx := schema.Index(features.CustomerAge)
	forest := &ml.RandomForest{Trees: []*ml.DecisionTree{
		mltest.StumpTree(ageIdx, 30, 0.1, 0.5, schema.Len()),
		mltest.ConstantTree(0.3, schema.Len()),
	}}
	adapter := mltest.LoadAdapter(t, schema, ml.KindRandomForest, forest)

	p, err := adapter.Infer(validVector(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.4, p, 1e-12)
}

func TestLoad_Failures(t *testing.T) {
	schema := features.Default()
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	reordered := schema.Names()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	swapped, err := ml.NewArtifact(ml.KindDecisionTree, "v1", reordered, mltest.ConstantTree(0.1, schema.Len()))
	require.NoError(t, err)
	swappedPath := filepath.Join(dir, "swapped.json")
	require.NoError(t, swapped.Save(swappedPath))

	shortWeights, err := ml.NewArtifact(ml.KindLogisticRegression, "v1", schema.Names(), &ml.LogisticRegression{Weights: []float64{1, 2}})
	require.NoError(t, err)
	shortPath := filepath.Join(dir, "short.json")
	require.NoError(t, shortWeights.Save(shortPath))

	tests := map[string]string{
		"missing file":  filepath.Join(dir, "nope.json"),
		"corrupt json":  write("corrupt.json", "{not json"),
		"empty kind":    write("empty.json", `{"version":"v1"}`),
		"unknown kind":  write("svm.json", `{"kind":"svm","feature_names":[],"params":{}}`),
		"feature order": swappedPath,
		"weight count":  shortPath,
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ml.Load(path, schema)

			var loadErr *ml.ArtifactLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, path, loadErr.Path)
		})
	}
}

func TestInfer_SchemaMismatch(t *testing.T) {
	schema := features.Default()
	adapter := mltest.LoadAdapter(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.2, schema.Len()))

	small, err := features.NewSchema(features.Definition{Name: "income", Type: features.Real, Max: 1})
	require.NoError(t, err)
	v, err := small.Validate(map[string]any{"income": 0.5})
	require.NoError(t, err)

	_, err = adapter.Infer(v)
	var mismatch *ml.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, schema.Len(), mismatch.Want)
	assert.Equal(t, 1, mismatch.Got)

	_, err = adapter.Infer(features.Vector{})
	require.ErrorAs(t, err, &mismatch)
}

func TestInfer_SchemaMismatchSameLengthDifferentNames(t *testing.T) {
	schema := features.Default()
	adapter := mltest.LoadAdapter(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.2, schema.Len()))

	defs := schema.All()
	defs[0], defs[1] = defs[1], defs[0]
	other, err := features.NewSchema(defs...)
	require.NoError(t, err)
	v, err := other.Validate(featurestest.ValidRaw())
	require.NoError(t, err)

	_, err = adapter.Infer(v)
	var mismatch *ml.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Error(), "feature 0")
}

func TestNewAdapter(t *testing.T) {
	schema := features.Default()

	_, err := ml.NewAdapter(schema, mltest.ConstantTree(0.1, 3), ml.Info{Kind: ml.KindDecisionTree})
	var mismatch *ml.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)

	adapter, err := ml.NewAdapter(schema, mltest.ConstantTree(0.1, schema.Len()), ml.Info{Kind: ml.KindDecisionTree})
	require.NoError(t, err)
	assert.Same(t, schema, adapter.Schema())
}

func TestInfer_Concurrent(t *testing.T) {
	schema := features.Default()
	ageIdx := schema.Index(features.CustomerAge)
	adapter := mltest.LoadAdapter(t, schema, ml.KindDecisionTree, mltest.StumpTree(ageIdx, 45, 0.2, 0.7, schema.Len()))

	records := featurestest.Variants(64)
	want := make([]float64, len(records))
	vectors := make([]features.Vector, len(records))
	for i, raw := range records {
		v, err := schema.Validate(raw)
		require.NoError(t, err)
		vectors[i] = v
		want[i], err = adapter.Infer(v)
		require.NoError(t, err)
	}

	got := make([]float64, len(records))
	var wg sync.WaitGroup
	for i := range vectors {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = adapter.Infer(vectors[i])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, want, got)
}

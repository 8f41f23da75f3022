package scoring_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscore/features"
	"fraudscore/features/featurestest"
	"fraudscore/ml"
	"fraudscore/ml/mltest"
	"fraudscore/scoring"
)

type recordingInferrer struct {
	mu    sync.Mutex
	p     float64
	err   error
	calls []features.Vector
}

func (r *recordingInferrer) Infer(v features.Vector) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
	return r.p, r.err
}

func newPipeline(t *testing.T, model ml.Classifier, kind string) *scoring.Pipeline {
	t.Helper()
	schema := features.Default()
	return scoring.NewPipeline(schema, mltest.LoadAdapter(t, schema, kind, model))
}

func TestPipeline_ScoreBandConsistency(t *testing.T) {
	schema := features.Default()
	weights := make([]float64, schema.Len())
	weights[schema.Index(features.CustomerAge)] = 0.05
	weights[schema.Index(features.CreditRiskScore)] = 0.004
	weights[schema.Index(features.Month)] = -0.3
	pipeline := newPipeline(t, &ml.LogisticRegression{Weights: weights, Bias: -2.5}, ml.KindLogisticRegression)

	seen := map[scoring.RiskBand]bool{}
	for _, raw := range featurestest.Variants(300) {
		res, err := pipeline.Score(raw)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Probability, 0.0)
		assert.LessOrEqual(t, res.Probability, 1.0)
		assert.Equal(t, res.Probability < 0.4, res.Band == scoring.NoFraud)
		assert.Equal(t, res.Probability > 0.6, res.Band == scoring.Fraud)
		assert.Equal(t, res.Probability >= 0.4 && res.Probability <= 0.6, res.Band == scoring.Ambiguous)
		seen[res.Band] = true
	}
	assert.Len(t, seen, 3, "fixture should exercise every band")
}

func TestPipeline_Boundaries(t *testing.T) {
	tests := []struct {
		p    float64
		want scoring.RiskBand
	}{
		{0.4, scoring.Ambiguous},
		{0.39999, scoring.NoFraud},
		{0.60001, scoring.Fraud},
		{0.6, scoring.Ambiguous},
	}
	for _, tt := range tests {
		pipeline := newPipeline(t, mltest.ConstantTree(tt.p, features.Default().Len()), ml.KindDecisionTree)

		res, err := pipeline.Score(featurestest.ValidRaw())
		require.NoError(t, err)
		assert.Equal(t, tt.p, res.Probability)
		assert.Equal(t, tt.want, res.Band, "p=%v", tt.p)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	schema := features.Default()
	pipeline := newPipeline(t, mltest.StumpTree(schema.Index(features.CustomerAge), 30, 0.12345, 0.87654, schema.Len()), ml.KindDecisionTree)

	raw := featurestest.ValidRaw()
	first, err := pipeline.Score(raw)
	require.NoError(t, err)
	second, err := pipeline.Score(raw)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.Probability), math.Float64bits(second.Probability))
	assert.Equal(t, first, second)
}

func TestPipeline_PropagatesValidationErrors(t *testing.T) {
	inferrer := &recordingInferrer{p: 0.5}
	pipeline := scoring.NewPipeline(features.Default(), inferrer)

	raw := featurestest.ValidRaw()
	delete(raw, features.Velocity24h)
	_, err := pipeline.Score(raw)
	var missing *features.MissingFeatureError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, features.Velocity24h, missing.Name)

	_, err = pipeline.Score(featurestest.ValidRawWith(features.CustomerAge, 5))
	var oor *features.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, features.OutOfRangeError{Name: "customer_age", Value: 5, Min: 10, Max: 90}, *oor)
	assert.False(t, scoring.IsDefect(err))

	assert.Empty(t, inferrer.calls, "invalid input must not reach inference")
}

func TestPipeline_SentinelReachesInference(t *testing.T) {
	inferrer := &recordingInferrer{p: 0.1}
	pipeline := scoring.NewPipeline(features.Default(), inferrer)

	_, err := pipeline.Score(featurestest.ValidRawWith(features.PrevAddressMonthsCount, -1))
	require.NoError(t, err)

	require.Len(t, inferrer.calls, 1)
	got, ok := inferrer.calls[0].Get(features.PrevAddressMonthsCount)
	require.True(t, ok)
	assert.Equal(t, -1.0, got)
}

func TestPipeline_Defects(t *testing.T) {
	pipeline := scoring.NewPipeline(features.Default(), &recordingInferrer{p: 1.5})
	_, err := pipeline.Score(featurestest.ValidRaw())
	var violation *scoring.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.True(t, scoring.IsDefect(err))

	pipeline = scoring.NewPipeline(features.Default(), &recordingInferrer{err: &ml.SchemaMismatchError{Want: 26, Got: 3}})
	_, err = pipeline.Score(featurestest.ValidRaw())
	assert.True(t, scoring.IsDefect(err))

	pipeline = scoring.NewPipeline(features.Default(), &recordingInferrer{err: errors.New("boom")})
	_, err = pipeline.Score(featurestest.ValidRaw())
	assert.Error(t, err)
	assert.False(t, scoring.IsDefect(err))
}

func TestPipeline_ConcurrentMatchesSequential(t *testing.T) {
	schema := features.Default()
	weights := make([]float64, schema.Len())
	weights[schema.Index(features.CustomerAge)] = 0.03
	weights[schema.Index(features.CreditRiskScore)] = 0.002
	pipeline := newPipeline(t, &ml.LogisticRegression{Weights: weights, Bias: -1.2}, ml.KindLogisticRegression)

	records := featurestest.Variants(200)
	want := make([]scoring.Result, len(records))
	for i, raw := range records {
		res, err := pipeline.Score(raw)
		require.NoError(t, err)
		want[i] = res
	}

	got := make([]scoring.Result, len(records))
	errs := make([]error, len(records))
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = pipeline.Score(records[i])
		}(i)
	}
	wg.Wait()

	for i := range records {
		require.NoError(t, errs[i])
	}
	assert.Equal(t, want, got)
}

func TestResult_Percentage(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{p: 0.2, want: "20.000"},
		{p: 0.123455, want: "12.345"},
		{p: 0.0001234, want: "0.012"},
		{p: 0.99999, want: "99.999"},
		{p: 1, want: "100.000"},
		{p: 0, want: "0.000"},
	}
	for _, tt := range tests {
		got := scoring.Result{Probability: tt.p}.Percentage()
		assert.Equal(t, tt.want, got.StringFixed(3), "p=%v", tt.p)
	}
}

// Package scoring turns a raw application record into a fraud probability
// and a risk band.
package scoring

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"

	"fraudscore/features"
	"fraudscore/ml"
)

// Inferrer returns the fraud-class probability for a validated vector.
// *ml.Adapter implements it.
type Inferrer interface {
	Infer(v features.Vector) (float64, error)
}

// Result is the outcome of scoring one application.
type Result struct {
	Probability float64  `json:"probability"`
	Band        RiskBand `json:"band"`
}

// Percentage is Probability*100 rounded to three places. Rounding is done on
// the binary value the model produced, not on its shortest decimal form, so
// 0.123455 gives 12.345.
func (r Result) Percentage() decimal.Decimal {
	return decimal.RequireFromString(strconv.FormatFloat(r.Probability*100, 'f', 3, 64))
}

// Pipeline validates, infers and classifies. It keeps no state between
// calls, so Score is idempotent and safe for concurrent use as long as the
// Inferrer is.
type Pipeline struct {
	schema   *features.Schema
	inferrer Inferrer
}

func NewPipeline(schema *features.Schema, inferrer Inferrer) *Pipeline {
	return &Pipeline{schema: schema, inferrer: inferrer}
}

// Score scores raw. Validation errors are returned unchanged.
func (p *Pipeline) Score(raw map[string]any) (Result, error) {
	v, err := p.schema.Validate(raw)
	if err != nil {
		return Result{}, err
	}
	return p.ScoreVector(v)
}

// ScoreVector scores an already validated vector.
func (p *Pipeline) ScoreVector(v features.Vector) (Result, error) {
	prob, err := p.inferrer.Infer(v)
	if err != nil {
		return Result{}, err
	}
	band, err := Classify(prob)
	if err != nil {
		return Result{}, err
	}
	return Result{Probability: prob, Band: band}, nil
}

func (p *Pipeline) Schema() *features.Schema {
	return p.schema
}

// IsDefect reports whether err signals a contract violation between
// components rather than invalid input.
func IsDefect(err error) bool {
	var mismatch *ml.SchemaMismatchError
	var violation *InvariantViolationError
	return errors.As(err, &mismatch) || errors.As(err, &violation)
}

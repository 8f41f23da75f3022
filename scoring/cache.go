package scoring

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"fraudscore/features"
)

// Scorer is implemented by Pipeline and CachedScorer.
type Scorer interface {
	Score(raw map[string]any) (Result, error)
	Schema() *features.Schema
}

// CachedScorer memoizes successful results by vector fingerprint. Pipeline
// results depend only on the vector, so a hit is identical to a fresh
// score. Validation runs on every call and errors are never cached.
type CachedScorer struct {
	pipeline *Pipeline
	cache    *lru.Cache[string, Result]
}

func NewCachedScorer(pipeline *Pipeline, size int) (*CachedScorer, error) {
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &CachedScorer{pipeline: pipeline, cache: cache}, nil
}

func (c *CachedScorer) Score(raw map[string]any) (Result, error) {
	v, err := c.pipeline.Schema().Validate(raw)
	if err != nil {
		return Result{}, err
	}
	key := v.Fingerprint()
	if res, ok := c.cache.Get(key); ok {
		return res, nil
	}
	res, err := c.pipeline.ScoreVector(v)
	if err != nil {
		return Result{}, err
	}
	c.cache.Add(key, res)
	return res, nil
}

func (c *CachedScorer) Schema() *features.Schema {
	return c.pipeline.Schema()
}

func (c *CachedScorer) Len() int {
	return c.cache.Len()
}

package ml

import (
	"fmt"
	"time"

	"fraudscore/features"
)

// Info describes the artifact an Adapter was loaded from.
type Info struct {
	Kind     string    `json:"kind"`
	Version  string    `json:"version"`
	Path     string    `json:"path,omitempty"`
	SHA256   string    `json:"sha256,omitempty"`
	Features int       `json:"features"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Adapter holds a loaded model and scores feature vectors with it.
//
// An Adapter is built once at startup with Load and shared by reference.
// It is never modified afterwards, so Infer is safe for concurrent use.
type Adapter struct {
	schema *features.Schema
	names  []string
	model  Classifier
	info   Info
}

// Load reads the artifact at path and checks that its feature layout is
// exactly schema's. Any failure is returned as *ArtifactLoadError.
func Load(path string, schema *features.Schema) (*Adapter, error) {
	artifact, digest, err := ReadArtifact(path)
	if err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	if err := checkLayout(schema.Names(), artifact.FeatureNames); err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	model, err := LoadModel(artifact.Kind, artifact.Params, schema.Len())
	if err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	return &Adapter{
		schema: schema,
		names:  schema.Names(),
		model:  model,
		info: Info{
			Kind:     artifact.Kind,
			Version:  artifact.Version,
			Path:     path,
			SHA256:   digest,
			Features: schema.Len(),
			LoadedAt: time.Now().UTC(),
		},
	}, nil
}

// NewAdapter wraps an in-memory model.
func NewAdapter(schema *features.Schema, model Classifier, info Info) (*Adapter, error) {
	if model.NumFeatures() != schema.Len() {
		return nil, &SchemaMismatchError{Want: schema.Len(), Got: model.NumFeatures()}
	}
	info.Features = schema.Len()
	if info.LoadedAt.IsZero() {
		info.LoadedAt = time.Now().UTC()
	}
	return &Adapter{schema: schema, names: schema.Names(), model: model, info: info}, nil
}

// Infer returns the fraud-class probability for v.
func (a *Adapter) Infer(v features.Vector) (float64, error) {
	if err := a.checkVector(v); err != nil {
		return 0, err
	}
	proba, err := a.model.PredictProba(v.Values())
	if err != nil {
		return 0, fmt.Errorf("model inference: %w", err)
	}
	if len(proba) < 2 {
		return 0, fmt.Errorf("model inference: expected 2 class probabilities, got %d", len(proba))
	}
	return proba[1], nil
}

func (a *Adapter) Info() Info {
	return a.info
}

func (a *Adapter) Schema() *features.Schema {
	return a.schema
}

func (a *Adapter) checkVector(v features.Vector) error {
	if v.Len() != len(a.names) {
		return &SchemaMismatchError{Want: len(a.names), Got: v.Len()}
	}
	if v.Schema() == a.schema {
		return nil
	}
	if err := checkLayout(a.names, v.Names()); err != nil {
		return &SchemaMismatchError{Want: len(a.names), Got: v.Len(), Detail: err.Error()}
	}
	return nil
}

func checkLayout(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("expected %d features, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("feature %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	return nil
}

package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Artifact is the on-disk envelope of a trained model. FeatureNames records
// the positional layout the model was trained on.
type Artifact struct {
	Kind         string          `json:"kind"`
	Version      string          `json:"version"`
	FeatureNames []string        `json:"feature_names"`
	Params       json.RawMessage `json:"params"`
}

// NewArtifact wraps a model's parameters into an artifact envelope.
func NewArtifact(kind, version string, featureNames []string, model Classifier) (*Artifact, error) {
	params, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Kind:         kind,
		Version:      version,
		FeatureNames: append([]string(nil), featureNames...),
		Params:       params,
	}, nil
}

func (a *Artifact) Save(path string) error {
	if a.Kind == "" {
		return errors.New("artifact kind is required")
	}
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// ReadArtifact reads and decodes the artifact at path. The returned digest is
// the hex SHA-256 of the file contents.
func ReadArtifact(path string) (*Artifact, string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(payload)

	var a Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, "", fmt.Errorf("decode artifact: %w", err)
	}
	if a.Kind == "" {
		return nil, "", errors.New("artifact kind is empty")
	}
	return &a, hex.EncodeToString(sum[:]), nil
}

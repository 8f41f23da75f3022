package ml

import "fmt"

// ArtifactLoadError reports a missing, unreadable or invalid model artifact.
// It is only returned at startup.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load model artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError reports a vector whose feature layout differs from the
// one the loaded model was built for. It indicates a programming error, not
// bad input.
type SchemaMismatchError struct {
	Want   int
	Got    int
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("schema mismatch: %s", e.Detail)
	}
	return fmt.Sprintf("schema mismatch: model expects %d features, vector has %d", e.Want, e.Got)
}

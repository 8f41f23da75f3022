package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fraudscore/features"
	"fraudscore/features/featurestest"
	"fraudscore/ml"
	"fraudscore/ml/mltest"
)

func writeInput(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestRunPrintsBand(t *testing.T) {
	schema := features.Default()
	model := mltest.WriteArtifact(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.5, schema.Len()))
	input := writeInput(t, map[string]any{"features": featurestest.ValidRaw()})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-model", model, "-input", input}, nil, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Probability of Fraud: 50.000 %") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "Likely Fraud") {
		t.Fatalf("expected ambiguous band message, got %q", out)
	}
}

func TestRunReadsBareObjectFromStdin(t *testing.T) {
	schema := features.Default()
	model := mltest.WriteArtifact(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.9, schema.Len()))
	body, err := json.Marshal(featurestest.ValidRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-model", model, "-json"}, bytes.NewReader(body), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	var result struct {
		Band        string  `json:"band"`
		Probability float64 `json:"probability"`
		Percentage  string  `json:"percentage"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.Band != "fraud" || result.Probability != 0.9 || result.Percentage != "90.000" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunExitCodes(t *testing.T) {
	schema := features.Default()
	model := mltest.WriteArtifact(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.1, schema.Len()))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "validation error", args: []string{"-model", model, "-input", writeInput(t, featurestest.ValidRawWith(features.CustomerAge, 5))}, code: exitValidation},
		{name: "missing model", args: []string{"-model", filepath.Join(t.TempDir(), "none.json"), "-input", writeInput(t, featurestest.ValidRaw())}, code: exitFailure},
		{name: "missing input", args: []string{"-model", model, "-input", filepath.Join(t.TempDir(), "none.json")}, code: exitFailure},
		{name: "bad flag", args: []string{"-nope"}, code: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, nil, &stdout, &stderr); code != tt.code {
				t.Fatalf("expected exit %d, got %d: %s", tt.code, code, stderr.String())
			}
			if stderr.Len() == 0 {
				t.Fatalf("expected a diagnostic on stderr")
			}
		})
	}
}

func TestRunFailsWhenOutputCannotBeWritten(t *testing.T) {
	schema := features.Default()
	model := mltest.WriteArtifact(t, schema, ml.KindDecisionTree, mltest.ConstantTree(0.3, schema.Len()))
	input := writeInput(t, featurestest.ValidRaw())

	for _, args := range [][]string{
		{"-model", model, "-input", input},
		{"-model", model, "-input", input, "-json"},
	} {
		var stderr bytes.Buffer
		if code := run(args, nil, failingWriter{}, &stderr); code != exitFailure {
			t.Fatalf("%v: expected exit %d, got %d", args, exitFailure, code)
		}
		if !strings.Contains(stderr.String(), "broken pipe") {
			t.Fatalf("%v: expected write error on stderr, got %q", args, stderr.String())
		}
	}
}

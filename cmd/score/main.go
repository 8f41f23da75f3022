// Command score scores one application record against a model artifact.
//
//	score -model models/fraud_lr.json -input application.json
//
// The input is a JSON object of feature values, either bare or wrapped as
// {"features": {...}}. Exit status is 2 when the record fails validation
// and 1 for any other failure.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"fraudscore/features"
	"fraudscore/ml"
	"fraudscore/scoring"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelPath := fs.String("model", "./models/fraud_lr.json", "model artifact path")
	inputPath := fs.String("input", "", "input JSON file (default stdin)")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	schema := features.Default()
	adapter, err := ml.Load(*modelPath, schema)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load model: %v\n", err)
		return exitFailure
	}

	raw, err := readInput(*inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read input: %v\n", err)
		return exitFailure
	}

	res, err := scoring.NewPipeline(schema, adapter).Score(raw)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		if errors.Is(err, features.ErrValidation) {
			return exitValidation
		}
		return exitFailure
	}

	pct := res.Percentage().StringFixed(3)
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(map[string]any{
			"probability":   res.Probability,
			"percentage":    pct,
			"band":          res.Band,
			"message":       res.Band.Message(),
			"model_version": adapter.Info().Version,
		})
	} else {
		_, err = fmt.Fprintf(stdout, "Probability of Fraud: %s %%\n%s\n", pct, res.Band.Message())
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to write result: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func readInput(path string, stdin io.Reader) (map[string]any, error) {
	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var doc map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if inner, ok := doc["features"].(map[string]any); ok && len(doc) == 1 {
		return inner, nil
	}
	return doc, nil
}

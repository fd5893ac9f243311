package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// setFlags sets the global flags for one test and restores them afterwards.
func setFlags(t *testing.T, workers, n int, asJSON bool) {
	t.Helper()
	prevG, prevN, prevJSON, prevQuiet := goroutines, iterations, jsonOut, quiet
	goroutines, iterations, jsonOut, quiet = workers, n, asJSON, false
	t.Cleanup(func() {
		goroutines, iterations, jsonOut, quiet = prevG, prevN, prevJSON, prevQuiet
	})
}

// decodeJSON unmarshals command output into v
func decodeJSON(t *testing.T, output string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}

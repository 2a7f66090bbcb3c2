// Package report writes evaluation results as JSON documents.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hickeroar/sentibayes/bayes"
)

var errMismatchedLengths = errors.New("documents and records differ in length")

// Entry pairs a prediction with the document it was made for.
type Entry struct {
	Text string `json:"text"`
	bayes.PredictionRecord
}

// Run is one evaluated set, e.g. the positive dev documents.
type Run struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Created  time.Time        `json:"created"`
	Accuracy bayes.Accuracy   `json:"accuracy"`
	Entries  map[string]Entry `json:"entries"`
}

// NewRun evaluates records and keys each entry by its index in docs.
func NewRun(name string, docs []bayes.Document, records []bayes.PredictionRecord) (*Run, error) {
	if len(docs) != len(records) {
		return nil, fmt.Errorf("%w: %d != %d", errMismatchedLengths, len(docs), len(records))
	}

	acc, err := bayes.Evaluate(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	entries := make(map[string]Entry, len(records))
	for i, record := range records {
		entries[strconv.Itoa(i)] = Entry{
			Text:             strings.Join(docs[i], " "),
			PredictionRecord: record,
		}
	}

	return &Run{
		ID:       uuid.New(),
		Name:     name,
		Created:  time.Now().UTC(),
		Accuracy: acc,
		Entries:  entries,
	}, nil
}

// Write encodes the run as indented JSON.
func (r *Run) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report %s: %w", r.Name, err)
	}
	return nil
}

// WriteFile writes the run to dir/<name>.json and returns the path.
func (r *Run) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, r.Name+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}

	if err := r.Write(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	return path, nil
}

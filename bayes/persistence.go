package bayes

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const persistedModelVersion = 1
const defaultModelFilePath = "/tmp/sentibayes.gob"

type tempFile interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

var (
	errNilWriter          = errors.New("writer is nil")
	errNilReader          = errors.New("reader is nil")
	errNilModel           = errors.New("model is nil")
	errPathNotAbsolute    = errors.New("path must be absolute")
	errUnsupportedVersion = errors.New("unsupported model version")
	errInvalidPrior       = errors.New("invalid prior in persisted model")
	errInvalidToken       = errors.New("invalid token in persisted model")
	errInvalidLikelihood  = errors.New("invalid likelihood in persisted model")
	errInvalidStats       = errors.New("invalid corpus statistics in persisted model")
	createTemp            = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	renameFile            = os.Rename
	removeFile            = os.Remove
)

type modelState struct {
	Version     int
	Priors      Priors
	Likelihoods map[string]Likelihood
	Stats       Stats
}

// Save writes model data to a writer using gob encoding.
func (m *Model) Save(w io.Writer) error {
	if m == nil {
		return errNilModel
	}
	if w == nil {
		return errNilWriter
	}

	state := modelState{
		Version:     persistedModelVersion,
		Priors:      m.priors,
		Likelihoods: m.likelihoods,
		Stats:       m.stats,
	}

	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	return nil
}

// Load reads a gob-encoded model.
func Load(r io.Reader) (*Model, error) {
	if r == nil {
		return nil, errNilReader
	}

	var state modelState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	if err := validateModelState(state); err != nil {
		return nil, err
	}

	likelihoods := state.Likelihoods
	if likelihoods == nil {
		likelihoods = make(map[string]Likelihood)
	}

	return &Model{
		priors:      state.Priors,
		likelihoods: likelihoods,
		stats:       state.Stats,
	}, nil
}

// SaveToFile writes model data to a file atomically.
func (m *Model) SaveToFile(path string) error {
	path = resolveModelPath(path)
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q", errPathNotAbsolute, path)
	}

	dir := filepath.Dir(path)
	tempFile, err := createTemp(dir, ".sentibayes-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer removeFile(tempPath)

	if err := m.Save(tempFile); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := renameFile(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// LoadFromFile reads a gob-encoded model file.
func LoadFromFile(path string) (*Model, error) {
	path = resolveModelPath(path)
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: %q", errPathNotAbsolute, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func validateModelState(state modelState) error {
	if state.Version != persistedModelVersion {
		return fmt.Errorf("%w: %d", errUnsupportedVersion, state.Version)
	}

	if !validLog(state.Priors.Positive) || !validLog(state.Priors.Negative) {
		return fmt.Errorf("%w: %+v", errInvalidPrior, state.Priors)
	}

	s := state.Stats
	if s.PositiveDocuments < 0 || s.NegativeDocuments < 0 || s.PositiveTokens < 0 || s.NegativeTokens < 0 {
		return fmt.Errorf("%w: %+v", errInvalidStats, s)
	}

	for token, l := range state.Likelihoods {
		if token == "" {
			return errInvalidToken
		}
		if !validLog(l.Positive) || !validLog(l.Negative) {
			return fmt.Errorf("%w for %q: %+v", errInvalidLikelihood, token, l)
		}
	}

	return nil
}

// validLog accepts finite log-probabilities, which are never positive.
func validLog(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v <= 0
}

func resolveModelPath(path string) string {
	if path == "" {
		return defaultModelFilePath
	}
	return path
}

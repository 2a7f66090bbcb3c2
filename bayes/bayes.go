package bayes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hickeroar/sentibayes/bayes/category"
)

// ErrEmptyInput is returned when training sees a class with no documents or
// when evaluation is asked to summarise zero predictions.
var ErrEmptyInput = errors.New("empty input")

var errUnknownLabel = errors.New("unknown label")

// Document is a tokenized sentence.
type Document []string

// NewDocument splits text on whitespace.
func NewDocument(text string) Document {
	return Document(strings.Fields(text))
}

// Label is the sentiment class of a document.
type Label int

// The two supported classes. Ties in classification resolve to Negative.
const (
	Negative Label = iota
	Positive
)

func (l Label) String() string {
	switch l {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	if l != Positive && l != Negative {
		return nil, fmt.Errorf("%w: %d", errUnknownLabel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	switch string(text) {
	case "positive":
		*l = Positive
	case "negative":
		*l = Negative
	default:
		return fmt.Errorf("%w: %q", errUnknownLabel, text)
	}
	return nil
}

// TrainingSet holds the labeled training documents of both classes.
type TrainingSet struct {
	Positive []Document
	Negative []Document
}

// Extend returns a new TrainingSet with more's documents appended to s's.
func (s TrainingSet) Extend(more TrainingSet) TrainingSet {
	return TrainingSet{
		Positive: append(append([]Document(nil), s.Positive...), more.Positive...),
		Negative: append(append([]Document(nil), s.Negative...), more.Negative...),
	}
}

// TrainingConfig controls a single training run. It is built by the caller
// and passed to Train; Train keeps no state between runs.
type TrainingConfig struct {
	// Workers bounds the goroutines used to count token frequencies.
	// Values below 2 count sequentially.
	Workers int
	// Logf receives progress lines. Nil disables logging.
	Logf func(format string, v ...any)
}

// DefaultTrainingConfig returns a sequential, silent configuration.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{Workers: 1}
}

func (cfg TrainingConfig) logf(format string, v ...any) {
	if cfg.Logf != nil {
		cfg.Logf(format, v...)
	}
}

// Train builds a Model from set: vocabulary, per-class frequency tables,
// smoothed likelihoods and class priors.
func Train(cfg TrainingConfig, set TrainingSet) (*Model, error) {
	priors, err := ComputePriors(len(set.Positive), len(set.Negative))
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	vocab := BuildVocabulary(set.Positive, set.Negative)
	positive := category.CountParallel(Positive.String(), set.Positive, cfg.Workers)
	negative := category.CountParallel(Negative.String(), set.Negative, cfg.Workers)
	cfg.logf("vocabulary=%d positive tokens=%d negative tokens=%d", len(vocab), positive.GetTally(), negative.GetTally())

	model := &Model{
		priors:      priors,
		likelihoods: EstimateLikelihoods(positive, negative, vocab),
		stats: Stats{
			PositiveDocuments: len(set.Positive),
			NegativeDocuments: len(set.Negative),
			PositiveTokens:    positive.GetTally(),
			NegativeTokens:    negative.GetTally(),
		},
	}
	cfg.logf("priors positive=%f negative=%f", priors.Positive, priors.Negative)

	return model, nil
}

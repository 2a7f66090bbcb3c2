package bayes

import (
	"fmt"
	"math"

	"github.com/hickeroar/sentibayes/bayes/category"
)

// Likelihood is the pair of smoothed log-likelihoods for one token.
type Likelihood struct {
	Positive float64
	Negative float64
}

// Priors are the natural-log class priors.
type Priors struct {
	Positive float64
	Negative float64
}

// Stats describes the corpus a model was trained on.
type Stats struct {
	PositiveDocuments int
	NegativeDocuments int
	PositiveTokens    int
	NegativeTokens    int
}

// ComputePriors returns ln(n/total) for each class. A class with no
// documents yields ErrEmptyInput instead of an infinite prior.
func ComputePriors(positiveDocs, negativeDocs int) (Priors, error) {
	if positiveDocs <= 0 {
		return Priors{}, fmt.Errorf("%w: no positive documents", ErrEmptyInput)
	}
	if negativeDocs <= 0 {
		return Priors{}, fmt.Errorf("%w: no negative documents", ErrEmptyInput)
	}

	total := float64(positiveDocs + negativeDocs)
	return Priors{
		Positive: math.Log(float64(positiveDocs) / total),
		Negative: math.Log(float64(negativeDocs) / total),
	}, nil
}

// EstimateLikelihoods scores every vocabulary token against both classes:
//
//	ln((count + 1) / (tally + 1))
//
// where count is zero for tokens the class never saw. The denominator adds
// one to the class tally, not the vocabulary size.
func EstimateLikelihoods(positive, negative *category.Category, vocab Vocabulary) map[string]Likelihood {
	likelihoods := make(map[string]Likelihood, len(vocab))
	for token := range vocab {
		likelihoods[token] = Likelihood{
			Positive: smoothedLog(positive, token),
			Negative: smoothedLog(negative, token),
		}
	}
	return likelihoods
}

func smoothedLog(cat *category.Category, token string) float64 {
	count, _ := cat.GetTokenCount(token)
	return math.Log(float64(count+1) / float64(cat.GetTally()+1))
}

// Model is a trained classifier. It is never mutated after Train returns
// and may be shared between goroutines.
type Model struct {
	priors      Priors
	likelihoods map[string]Likelihood
	stats       Stats
}

// Priors returns the class priors.
func (m *Model) Priors() Priors {
	return m.priors
}

// Stats returns the training corpus statistics.
func (m *Model) Stats() Stats {
	return m.stats
}

// VocabularySize returns the number of scored tokens.
func (m *Model) VocabularySize() int {
	return len(m.likelihoods)
}

// Lookup returns the likelihoods for token. Unknown tokens yield the zero
// Likelihood and false.
func (m *Model) Lookup(token string) (Likelihood, bool) {
	l, ok := m.likelihoods[token]
	return l, ok
}

package bayes

import "sync"

// PredictionRecord is the outcome of classifying one document.
type PredictionRecord struct {
	Predicted Label   `json:"predicted"`
	Actual    Label   `json:"actual"`
	Positive  float64 `json:"positive"`
	Negative  float64 `json:"negative"`
}

// Correct reports whether the prediction matches the true label.
func (r PredictionRecord) Correct() bool {
	return r.Predicted == r.Actual
}

// Score accumulates the prior and token log-likelihoods for both classes.
// Tokens outside the vocabulary contribute nothing.
func (m *Model) Score(doc Document) (positive, negative float64) {
	positive, negative = m.priors.Positive, m.priors.Negative
	for _, token := range doc {
		l, _ := m.Lookup(token)
		positive += l.Positive
		negative += l.Negative
	}
	return positive, negative
}

// Predict returns Positive only when the positive score is strictly greater.
func (m *Model) Predict(doc Document) Label {
	positive, negative := m.Score(doc)
	return Decide(positive, negative)
}

// Classify scores doc and records the prediction alongside its true label.
func (m *Model) Classify(doc Document, actual Label) PredictionRecord {
	positive, negative := m.Score(doc)
	return PredictionRecord{
		Predicted: Decide(positive, negative),
		Actual:    actual,
		Positive:  positive,
		Negative:  negative,
	}
}

// ClassifyAll classifies docs over at most workers goroutines. Records are
// returned in the order of docs.
func (m *Model) ClassifyAll(docs []Document, actual Label, workers int) []PredictionRecord {
	records := make([]PredictionRecord, len(docs))
	if workers <= 1 || len(docs) < 2 {
		for i, doc := range docs {
			records[i] = m.Classify(doc, actual)
		}
		return records
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(docs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i] = m.Classify(docs[i], actual)
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return records
}

// Decide picks Positive only when positive is strictly greater than negative.
func Decide(positive, negative float64) Label {
	if positive > negative {
		return Positive
	}
	return Negative
}

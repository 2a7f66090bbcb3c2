package bayes

import (
	"fmt"
	"math"
)

const ratePrecision = 1e5

// Accuracy summarises a set of predictions as percentages rounded to five
// decimal places.
type Accuracy struct {
	Total    int     `json:"total"`
	Hits     int     `json:"hits"`
	Misses   int     `json:"misses"`
	HitRate  float64 `json:"hitRate"`
	MissRate float64 `json:"missRate"`
}

// Evaluate counts predictions that match their true label.
func Evaluate(records []PredictionRecord) (Accuracy, error) {
	if len(records) == 0 {
		return Accuracy{}, fmt.Errorf("evaluate: %w: no predictions", ErrEmptyInput)
	}

	var acc Accuracy
	for _, r := range records {
		if r.Correct() {
			acc.Hits++
		} else {
			acc.Misses++
		}
	}
	acc.Total = len(records)
	acc.HitRate = percentage(acc.Hits, acc.Total)
	acc.MissRate = percentage(acc.Misses, acc.Total)

	return acc, nil
}

func percentage(n, total int) float64 {
	return math.Round(float64(n)/float64(total)*100*ratePrecision) / ratePrecision
}

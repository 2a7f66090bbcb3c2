package corpus

import (
	"math"
	"math/rand"

	"github.com/hickeroar/sentibayes/bayes"
)

// SplitConfig positions the train/dev/test boundaries as fractions of the
// corpus: train is [0, TrainEnd), dev is [TrainEnd, DevEnd), test is the rest.
type SplitConfig struct {
	TrainEnd float64
	DevEnd   float64
	Shuffle  bool
	Seed     int64
}

// DefaultSplitConfig returns the 70/15/15 split in corpus order.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{TrainEnd: 0.7, DevEnd: 0.85, Seed: 42}
}

// Partition is one class's corpus divided for training and evaluation.
type Partition struct {
	Train []bayes.Document
	Dev   []bayes.Document
	Test  []bayes.Document
}

// Split divides docs according to cfg. Boundaries are floored; docs itself is
// never reordered.
func Split(docs []bayes.Document, cfg SplitConfig) Partition {
	if cfg.Shuffle {
		shuffled := append([]bayes.Document(nil), docs...)
		rng := rand.New(rand.NewSource(cfg.Seed))
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		docs = shuffled
	}

	n := len(docs)
	trainEnd := clamp(int(math.Floor(float64(n)*cfg.TrainEnd)), 0, n)
	devEnd := clamp(int(math.Floor(float64(n)*cfg.DevEnd)), trainEnd, n)

	return Partition{
		Train: docs[:trainEnd:trainEnd],
		Dev:   docs[trainEnd:devEnd:devEnd],
		Test:  docs[devEnd:],
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

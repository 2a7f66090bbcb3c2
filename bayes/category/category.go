package category

import (
	"errors"
	"fmt"
)

var errInvalidCount = errors.New("token count must be positive")

// Category holds the token frequencies observed in one class's training documents.
type Category struct {
	name   string
	tokens map[string]int
	tally  int
}

// NewCategory returns a pointer to an empty Category.
func NewCategory(name string) *Category {
	return &Category{
		name:   name,
		tokens: make(map[string]int),
	}
}

// Name returns the class name this category was built for.
func (cat *Category) Name() string {
	return cat.name
}

// TrainToken adds count occurrences of word to this category.
func (cat *Category) TrainToken(word string, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: %d", errInvalidCount, count)
	}

	cat.tokens[word] += count
	cat.tally += count
	return nil
}

// GetTokenCount returns the number of times word was seen, and whether it was seen at all.
func (cat *Category) GetTokenCount(word string) (int, bool) {
	count, ok := cat.tokens[word]
	return count, ok
}

// GetTally returns the total of all token occurrences for this category.
func (cat *Category) GetTally() int {
	return cat.tally
}

// Len returns the number of distinct tokens in this category.
func (cat *Category) Len() int {
	return len(cat.tokens)
}

// Each calls fn for every token and its count. Iteration order is unspecified.
func (cat *Category) Each(fn func(word string, count int)) {
	for word, count := range cat.tokens {
		fn(word, count)
	}
}

// Merge folds the counts of other into cat.
func (cat *Category) Merge(other *Category) {
	for word, count := range other.tokens {
		cat.tokens[word] += count
	}
	cat.tally += other.tally
}

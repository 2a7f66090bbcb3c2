package bayes

import "sort"

// Vocabulary is the set of distinct tokens seen while training.
type Vocabulary map[string]struct{}

// BuildVocabulary collects every non-empty token across both classes' documents.
func BuildVocabulary(positive, negative []Document) Vocabulary {
	vocab := make(Vocabulary)
	for _, docs := range [][]Document{positive, negative} {
		for _, doc := range docs {
			for _, token := range doc {
				if token == "" {
					continue
				}
				vocab[token] = struct{}{}
			}
		}
	}
	return vocab
}

// Contains reports whether token is in the vocabulary.
func (v Vocabulary) Contains(token string) bool {
	_, ok := v[token]
	return ok
}

// Sorted returns the tokens in lexical order.
func (v Vocabulary) Sorted() []string {
	tokens := make([]string, 0, len(v))
	for token := range v {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

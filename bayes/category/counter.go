package category

import "sync"

// Count tabulates every non-empty token across docs into a new Category.
func Count[D ~[]string](name string, docs []D) *Category {
	cat := NewCategory(name)
	for _, doc := range docs {
		cat.add(doc)
	}
	return cat
}

// CountParallel splits docs into at most workers contiguous shards, counts
// each shard in its own goroutine and merges the partial tables. The result
// is identical to Count.
func CountParallel[D ~[]string](name string, docs []D, workers int) *Category {
	if workers <= 1 || len(docs) < 2 {
		return Count(name, docs)
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	partials := make([]*Category, workers)
	shard := (len(docs) + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * shard
		if start >= len(docs) {
			partials[i] = NewCategory(name)
			continue
		}
		end := min(start+shard, len(docs))

		wg.Add(1)
		go func(i int, part []D) {
			defer wg.Done()
			partials[i] = Count(name, part)
		}(i, docs[start:end])
	}
	wg.Wait()

	total := NewCategory(name)
	for _, part := range partials {
		total.Merge(part)
	}
	return total
}

func (cat *Category) add(doc []string) {
	for _, word := range doc {
		if word == "" {
			continue
		}
		cat.tokens[word]++
		cat.tally++
	}
}

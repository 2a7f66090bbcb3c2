package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hickeroar/sentibayes/bayes"
)

const maxLineBytes = 1 << 20

// Load reads one document per line from r. Blank lines are skipped; a line
// whose words are all filtered out still yields an empty document.
func Load(r io.Reader, n Normalizer) ([]bayes.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []bayes.Document
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc, err := n.Tokenize(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	return docs, nil
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, n Normalizer) ([]bayes.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	docs, err := Load(f, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

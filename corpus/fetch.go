package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Sentence polarity corpus used by default (Pang & Lee, v1.0).
const (
	DefaultPositiveURL = "https://raw.githubusercontent.com/dennybritz/cnn-text-classification-tf/master/data/rt-polaritydata/rt-polarity.pos"
	DefaultNegativeURL = "https://raw.githubusercontent.com/dennybritz/cnn-text-classification-tf/master/data/rt-polaritydata/rt-polarity.neg"
)

const maxCorpusBytes = 64 << 20 // 64 MiB

var (
	errUnexpectedStatus = errors.New("unexpected response status")
	errCorpusTooLarge   = errors.New("corpus exceeds size limit")
	createTemp          = os.CreateTemp
	renameFile          = os.Rename
)

// Fetch downloads url to path unless path already exists. It reports whether
// a download happened. The file appears atomically.
func Fetch(ctx context.Context, client *http.Client, url, path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat corpus file: %w", err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: %s returned %d", errUnexpectedStatus, url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create corpus dir: %w", err)
	}
	tmp, err := createTemp(filepath.Dir(path), ".corpus-*")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxCorpusBytes+1))
	if err != nil {
		tmp.Close()
		return false, fmt.Errorf("write corpus: %w", err)
	}
	if n > maxCorpusBytes {
		tmp.Close()
		return false, fmt.Errorf("%w: %s", errCorpusTooLarge, url)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("close temp file: %w", err)
	}
	if err := renameFile(tmp.Name(), path); err != nil {
		return false, fmt.Errorf("rename temp file: %w", err)
	}

	return true, nil
}

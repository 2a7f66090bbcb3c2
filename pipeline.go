package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/corpus"
	"github.com/hickeroar/sentibayes/report"
)

type pipelineConfig struct {
	DataDir     string
	PositiveURL string
	NegativeURL string
	ReportDir   string
	Normalizer  corpus.Normalizer
	Split       corpus.SplitConfig
	Training    bayes.TrainingConfig
	Client      *http.Client
}

type pipelineResult struct {
	Model    *bayes.Model
	Positive bayes.Accuracy
	Negative bayes.Accuracy
}

// runPipeline provisions both corpora, trains on the training split, checks
// the dev split, retrains on train+dev and reports accuracy on the test split.
func runPipeline(ctx context.Context, cfg pipelineConfig) (*pipelineResult, error) {
	positive, err := provision(ctx, cfg, cfg.PositiveURL, "positive")
	if err != nil {
		return nil, err
	}
	negative, err := provision(ctx, cfg, cfg.NegativeURL, "negative")
	if err != nil {
		return nil, err
	}

	pos := corpus.Split(positive, cfg.Split)
	neg := corpus.Split(negative, cfg.Split)
	logPartition("Positive", pos, len(positive))
	logPartition("Negative", neg, len(negative))

	train := bayes.TrainingSet{Positive: pos.Train, Negative: neg.Train}
	model, err := bayes.Train(cfg.Training, train)
	if err != nil {
		return nil, err
	}

	if _, err := evaluate(cfg, model, "positiveDevelopment", pos.Dev, bayes.Positive); err != nil {
		return nil, err
	}
	if _, err := evaluate(cfg, model, "negativeDevelopment", neg.Dev, bayes.Negative); err != nil {
		return nil, err
	}

	model, err = bayes.Train(cfg.Training, train.Extend(bayes.TrainingSet{Positive: pos.Dev, Negative: neg.Dev}))
	if err != nil {
		return nil, err
	}

	posAcc, err := evaluate(cfg, model, "positiveTest", pos.Test, bayes.Positive)
	if err != nil {
		return nil, err
	}
	negAcc, err := evaluate(cfg, model, "negativeTest", neg.Test, bayes.Negative)
	if err != nil {
		return nil, err
	}

	log.Printf("True Positive  : %.5f%%", posAcc.HitRate)
	log.Printf("False Negative : %.5f%%", posAcc.MissRate)
	log.Printf("True Negative  : %.5f%%", negAcc.HitRate)
	log.Printf("False Positive : %.5f%%", negAcc.MissRate)

	return &pipelineResult{Model: model, Positive: posAcc, Negative: negAcc}, nil
}

func provision(ctx context.Context, cfg pipelineConfig, url, name string) ([]bayes.Document, error) {
	path := filepath.Join(cfg.DataDir, name)
	downloaded, err := corpus.Fetch(ctx, cfg.Client, url, path)
	if err != nil {
		return nil, fmt.Errorf("provision %s corpus: %w", name, err)
	}
	if downloaded {
		log.Printf("Downloaded %s corpus to %s.", name, path)
	}

	docs, err := corpus.LoadFile(path, cfg.Normalizer)
	if err != nil {
		return nil, fmt.Errorf("load %s corpus: %w", name, err)
	}
	return docs, nil
}

func evaluate(cfg pipelineConfig, model *bayes.Model, name string, docs []bayes.Document, actual bayes.Label) (bayes.Accuracy, error) {
	records := model.ClassifyAll(docs, actual, cfg.Training.Workers)

	run, err := report.NewRun(name, docs, records)
	if err != nil {
		return bayes.Accuracy{}, err
	}

	if cfg.ReportDir != "" {
		path, err := run.WriteFile(cfg.ReportDir)
		if err != nil {
			return bayes.Accuracy{}, err
		}
		log.Printf("Wrote %s report (%s) to %s.", name, run.ID, path)
	}

	log.Printf("%s: %d/%d correct (%.5f%%)", name, run.Accuracy.Hits, run.Accuracy.Total, run.Accuracy.HitRate)
	return run.Accuracy, nil
}

func logPartition(name string, p corpus.Partition, total int) {
	share := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total) * 100
	}
	log.Printf("%s Training Data Size    : %d (%.5f%% of %s Data)", name, len(p.Train), share(len(p.Train)), name)
	log.Printf("%s Development Data Size : %d (%.5f%% of %s Data)", name, len(p.Dev), share(len(p.Dev)), name)
	log.Printf("%s Testing Data Size     : %d (%.5f%% of %s Data)", name, len(p.Test), share(len(p.Test)), name)
}

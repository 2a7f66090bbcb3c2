package main

import "github.com/hickeroar/sentibayes/bayes"

// InfoResponse describes the model currently being served.
type InfoResponse struct {
	Trained        bool
	VocabularySize int
	Priors         bayes.Priors
	Stats          bayes.Stats
}

// NewInfoResponse assembles an InfoResponse. Callers hold the API read lock.
func NewInfoResponse(c *ClassifierAPI) *InfoResponse {
	if c.model == nil {
		return &InfoResponse{}
	}
	return &InfoResponse{
		Trained:        true,
		VocabularySize: c.model.VocabularySize(),
		Priors:         c.model.Priors(),
		Stats:          c.model.Stats(),
	}
}

// TrainingResponse is returned after training or flushing.
type TrainingResponse struct {
	Success bool
	InfoResponse
}

// NewTrainingResponse assembles a TrainingResponse. Callers hold the API lock.
func NewTrainingResponse(c *ClassifierAPI, success bool) *TrainingResponse {
	return &TrainingResponse{
		Success:      success,
		InfoResponse: *NewInfoResponse(c),
	}
}

// ClassificationResponse is the predicted label and both accumulated scores.
type ClassificationResponse struct {
	Label    bayes.Label
	Positive float64
	Negative float64
}

// TrainingRequest carries raw sentences for a full retrain.
type TrainingRequest struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

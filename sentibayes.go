package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/corpus"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

var errModelNotTrained = errors.New("model not trained")

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var (
	makeSignalChannel = func() chan os.Signal { return make(chan os.Signal, 1) }
	notifySignals     = func(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
	newServer         = func(addr string, handler http.Handler) httpServer {
		return &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       30 * time.Second,
		}
	}
	logFatal = func(v ...interface{}) { log.Fatal(v...) }
	runMain  = func() error {
		port := flag.String("port", "8000", "The port the server should listen on.")
		authToken := flag.String("auth-token", "", "Bearer token required on all endpoints except /healthz and /readyz.")
		dataDir := flag.String("data-dir", "/tmp/sentibayes", "Directory the corpora are cached in.")
		positiveURL := flag.String("positive-url", corpus.DefaultPositiveURL, "Positive corpus URL.")
		negativeURL := flag.String("negative-url", corpus.DefaultNegativeURL, "Negative corpus URL.")
		modelPath := flag.String("model", "", "Absolute path the model is saved to after training, or loaded from with --train=false.")
		reportDir := flag.String("report-dir", "", "Directory evaluation reports are written to. Empty disables reports.")
		train := flag.Bool("train", true, "Run the train/evaluate pipeline. When false the model is loaded from --model.")
		serve := flag.Bool("serve", true, "Serve the model over HTTP after training or loading.")
		stem := flag.Bool("stem", false, "Stem tokens with the snowball stemmer.")
		stopWords := flag.Bool("stopwords", false, "Remove stop words.")
		shuffle := flag.Bool("shuffle", false, "Shuffle each corpus before splitting.")
		seed := flag.Int64("seed", 42, "Shuffle seed.")
		workers := flag.Int("workers", 1, "Goroutines used for counting and classification.")
		flag.Parse()

		normalizer := corpus.DefaultNormalizer()
		normalizer.Stem = *stem
		normalizer.RemoveStopWords = *stopWords
		training := bayes.TrainingConfig{Workers: *workers, Logf: log.Printf}

		var model *bayes.Model
		if *train {
			split := corpus.DefaultSplitConfig()
			split.Shuffle = *shuffle
			split.Seed = *seed

			result, err := runPipeline(context.Background(), pipelineConfig{
				DataDir:     *dataDir,
				PositiveURL: *positiveURL,
				NegativeURL: *negativeURL,
				ReportDir:   *reportDir,
				Normalizer:  normalizer,
				Split:       split,
				Training:    training,
			})
			if err != nil {
				return err
			}
			model = result.Model

			if *modelPath != "" {
				if err := model.SaveToFile(*modelPath); err != nil {
					return err
				}
				log.Printf("Model saved to %s.", *modelPath)
			}
		} else {
			loaded, err := bayes.LoadFromFile(*modelPath)
			if err != nil {
				return err
			}
			model = loaded
			log.Printf("Model loaded with %d tokens.", model.VocabularySize())
		}

		if !*serve {
			return nil
		}

		controller := &ClassifierAPI{model: model, normalizer: normalizer, training: training}
		controller.ready.Store(true)
		mux := http.NewServeMux()
		controller.RegisterRoutes(mux)

		server := newServer(":"+*port, withAuthorizationToken(mux, *authToken))
		log.Printf("Server is listening on port %s.", *port)

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logFatal(err)
			}
		}()

		sigCh := makeSignalChannel()
		notifySignals(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		controller.ready.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(ctx)
	}
)

// ClassifierAPI serves the sentiment model over HTTP. Models are replaced
// wholesale on retrain; a published model is never mutated.
type ClassifierAPI struct {
	model      *bayes.Model
	normalizer corpus.Normalizer
	training   bayes.TrainingConfig
	mu         sync.RWMutex
	ready      atomic.Bool
}

// RegisterRoutes registers all API routes on the provided ServeMux.
func (c *ClassifierAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/info", c.InfoHandler)
	mux.HandleFunc("/train", c.TrainHandler)
	mux.HandleFunc("/classify", c.ClassifyHandler)
	mux.HandleFunc("/score", c.ScoreHandler)
	mux.HandleFunc("/flush", c.FlushHandler)
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/readyz", c.ReadyHandler)
}

func withAuthorizationToken(next http.Handler, token string) http.Handler {
	if token == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/healthz" || req.URL.Path == "/readyz" {
			next.ServeHTTP(w, req)
			return
		}

		presented, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="sentibayes"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	jsonResponse, err := json.Marshal(value)
	if err != nil {
		http.Error(w, `{"error":"failed to marshal response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonResponse); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readBody(w http.ResponseWriter, req *http.Request) ([]byte, bool) {
	req.Body = http.MaxBytesReader(w, req.Body, maxRequestBodyBytes)
	defer req.Body.Close()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return nil, false
	}

	return body, true
}

func requireMethod(w http.ResponseWriter, req *http.Request, method string) bool {
	if req.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// scoreBody tokenizes the request body and scores it against the current model.
func (c *ClassifierAPI) scoreBody(w http.ResponseWriter, req *http.Request) (float64, float64, bool) {
	body, ok := readBody(w, req)
	if !ok {
		return 0, 0, false
	}

	doc, err := c.normalizer.Tokenize(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}

	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		writeError(w, http.StatusConflict, errModelNotTrained.Error())
		return 0, 0, false
	}

	positive, negative := model.Score(doc)
	return positive, negative, true
}

// InfoHandler returns the current model's training statistics.
func (c *ClassifierAPI) InfoHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}

	c.mu.RLock()
	response := NewInfoResponse(c)
	c.mu.RUnlock()

	writeJSON(w, http.StatusOK, response)
}

// TrainHandler retrains the model from a JSON body of positive and negative sentences.
func (c *ClassifierAPI) TrainHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	var payload TrainingRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid training payload")
		return
	}

	set, err := c.tokenizeTrainingRequest(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	model, err := bayes.Train(c.training, set)
	if err != nil {
		if errors.Is(err, bayes.ErrEmptyInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	c.mu.Lock()
	c.model = model
	response := NewTrainingResponse(c, true)
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, response)
}

func (c *ClassifierAPI) tokenizeTrainingRequest(payload TrainingRequest) (bayes.TrainingSet, error) {
	var set bayes.TrainingSet
	for _, text := range payload.Positive {
		doc, err := c.normalizer.Tokenize(text)
		if err != nil {
			return bayes.TrainingSet{}, err
		}
		set.Positive = append(set.Positive, doc)
	}
	for _, text := range payload.Negative {
		doc, err := c.normalizer.Tokenize(text)
		if err != nil {
			return bayes.TrainingSet{}, err
		}
		set.Negative = append(set.Negative, doc)
	}
	return set, nil
}

// ClassifyHandler classifies request body text.
func (c *ClassifierAPI) ClassifyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	positive, negative, ok := c.scoreBody(w, req)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ClassificationResponse{
		Label:    bayes.Decide(positive, negative),
		Positive: positive,
		Negative: negative,
	})
}

// ScoreHandler returns both class scores for request body text.
func (c *ClassifierAPI) ScoreHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	positive, negative, ok := c.scoreBody(w, req)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{
		bayes.Positive.String(): positive,
		bayes.Negative.String(): negative,
	})
}

// FlushHandler drops the current model.
func (c *ClassifierAPI) FlushHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	c.mu.Lock()
	c.model = nil
	response := NewTrainingResponse(c, true)
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, response)
}

// HealthHandler returns liveness status for process health checks.
func HealthHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler returns readiness status for traffic checks.
func (c *ClassifierAPI) ReadyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	if !c.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func main() {
	if err := runMain(); err != nil {
		logFatal(err)
	}
}

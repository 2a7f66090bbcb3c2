package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/corpus"
)

const sampleTrainingBody = `{"positive":["a good great film","great movie"],"negative":["a bad movie","bad acting"]}`

// assertJSONContentType verifies the response content type is JSON.
func assertJSONContentType(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	contentType := rr.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		t.Fatalf("expected application/json content type, got %q", contentType)
	}
}

// assertJSONErrorShape verifies a JSON error response payload shape.
func assertJSONErrorShape(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assertJSONContentType(t, rr)
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected JSON error payload: %v", err)
	}
	if payload["error"] == "" {
		t.Fatalf("expected non-empty error field, got payload=%v", payload)
	}
}

func sampleModel(t testing.TB) *bayes.Model {
	t.Helper()
	model, err := bayes.Train(bayes.DefaultTrainingConfig(), bayes.TrainingSet{
		Positive: []bayes.Document{{"good", "great"}, {"great", "movie"}},
		Negative: []bayes.Document{{"bad", "movie"}, {"bad", "acting"}},
	})
	if err != nil {
		t.Fatalf("train sample model: %v", err)
	}
	return model
}

// newTestServer creates an API serving a small trained model.
func newTestServer(t testing.TB) (*ClassifierAPI, *http.ServeMux) {
	api := &ClassifierAPI{
		model:      sampleModel(t),
		normalizer: corpus.DefaultNormalizer(),
		training:   bayes.DefaultTrainingConfig(),
	}
	api.ready.Store(true)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	return api, mux
}

func serve(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestClassifyMethodNotAllowed(t *testing.T) {
	_, mux := newTestServer(t)
	rr := serve(mux, http.MethodGet, "/classify", "")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: got %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
	if allow := rr.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("unexpected Allow header: got %q, want %q", allow, http.MethodPost)
	}
	assertJSONErrorShape(t, rr)
}

func TestClassifyAndScore(t *testing.T) {
	_, mux := newTestServer(t)

	rr := serve(mux, http.MethodPost, "/classify", "Bad movie!")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected classify status: got %d", rr.Code)
	}
	var classification struct {
		Label    string
		Positive float64
		Negative float64
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &classification); err != nil {
		t.Fatalf("decode classification: %v", err)
	}
	// "movie!" is dropped by the alphabetic filter, leaving "bad".
	if classification.Label != "negative" {
		t.Fatalf("unexpected label: got %q want negative", classification.Label)
	}
	if classification.Negative <= classification.Positive {
		t.Fatalf("expected negative score to dominate: %+v", classification)
	}

	rr = serve(mux, http.MethodPost, "/score", "great GOOD")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected score status: got %d", rr.Code)
	}
	var scores map[string]float64
	if err := json.Unmarshal(rr.Body.Bytes(), &scores); err != nil {
		t.Fatalf("decode scores: %v", err)
	}
	if scores["positive"] <= scores["negative"] {
		t.Fatalf("expected positive score to dominate: %v", scores)
	}
}

func TestTrainInfoFlushLifecycle(t *testing.T) {
	_, mux := newTestServer(t)

	flushRR := serve(mux, http.MethodPost, "/flush", "")
	if flushRR.Code != http.StatusOK {
		t.Fatalf("unexpected flush status: got %d", flushRR.Code)
	}

	classifyRR := serve(mux, http.MethodPost, "/classify", "good")
	if classifyRR.Code != http.StatusConflict {
		t.Fatalf("expected conflict without a model, got %d", classifyRR.Code)
	}
	assertJSONErrorShape(t, classifyRR)

	trainRR := serve(mux, http.MethodPost, "/train", sampleTrainingBody)
	if trainRR.Code != http.StatusOK {
		t.Fatalf("unexpected train status: got %d body=%s", trainRR.Code, trainRR.Body.String())
	}
	var trainResp struct {
		Success        bool
		Trained        bool
		VocabularySize int
	}
	if err := json.Unmarshal(trainRR.Body.Bytes(), &trainResp); err != nil {
		t.Fatalf("decode train response: %v", err)
	}
	if !trainResp.Success || !trainResp.Trained || trainResp.VocabularySize != 7 {
		t.Fatalf("unexpected train response: %+v", trainResp)
	}

	infoRR := serve(mux, http.MethodGet, "/info", "")
	var info struct {
		Trained bool
		Stats   bayes.Stats
	}
	if err := json.Unmarshal(infoRR.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info response: %v", err)
	}
	if !info.Trained || info.Stats.PositiveDocuments != 2 || info.Stats.NegativeTokens != 5 {
		t.Fatalf("unexpected info response: %+v", info)
	}
}

func TestTrainRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "invalid json", body: "{", status: http.StatusBadRequest},
		{name: "no negative sentences", body: `{"positive":["good"]}`, status: http.StatusUnprocessableEntity},
		{name: "empty object", body: `{}`, status: http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api, mux := newTestServer(t)
			before := api.model

			rr := serve(mux, http.MethodPost, "/train", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, tc.status)
			}
			assertJSONErrorShape(t, rr)
			if api.model != before {
				t.Fatal("expected failed training to keep the previous model")
			}
		})
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	_, mux := newTestServer(t)
	oversized := bytes.Repeat([]byte("a"), maxRequestBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewReader(oversized))
	rr := httptest.NewRecorder()

	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected status: got %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
	assertJSONErrorShape(t, rr)
}

func TestHealthAndReadyEndpoints(t *testing.T) {
	_, mux := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := serve(mux, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status for %s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
		assertJSONContentType(t, rr)
	}
}

func TestReadyEndpointNotReady(t *testing.T) {
	api, mux := newTestServer(t)
	api.ready.Store(false)

	rr := serve(mux, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status for /readyz: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	assertJSONContentType(t, rr)
}

func TestAuthorizationMiddleware(t *testing.T) {
	_, mux := newTestServer(t)
	handler := withAuthorizationToken(mux, "secret-token")

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic secret-token", status: http.StatusUnauthorized},
		{name: "missing bearer token", header: "Bearer", status: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer wrong-token", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer secret-token", status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/info", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("unexpected status: got %d, want %d", rr.Code, tc.status)
			}
			if tc.status == http.StatusUnauthorized {
				if got := rr.Header().Get("WWW-Authenticate"); got != `Bearer realm="sentibayes"` {
					t.Fatalf("unexpected WWW-Authenticate header: got %q", got)
				}
				assertJSONErrorShape(t, rr)
			}
		})
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := serve(handler, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Fatalf("expected %s to bypass auth, got %d", path, rr.Code)
		}
	}
}

func TestConcurrentRequests(t *testing.T) {
	_, mux := newTestServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			if i%10 == 0 {
				if rr := serve(mux, http.MethodPost, "/train", sampleTrainingBody); rr.Code != http.StatusOK {
					t.Errorf("unexpected train status: got %d", rr.Code)
				}
			}
			if rr := serve(mux, http.MethodPost, "/classify", "bad acting"); rr.Code != http.StatusOK {
				t.Errorf("unexpected classify status: got %d", rr.Code)
			}
			if rr := serve(mux, http.MethodPost, "/score", "great movie"); rr.Code != http.StatusOK {
				t.Errorf("unexpected score status: got %d", rr.Code)
			}
		}(i)
	}
	wg.Wait()
}

func TestAPIContractMatrix(t *testing.T) {
	type testCase struct {
		name        string
		method      string
		path        string
		body        []byte
		status      int
		allowHeader string
		expectError bool
	}

	oversized := bytes.Repeat([]byte("a"), maxRequestBodyBytes+1)
	tests := []testCase{
		{name: "info get ok", method: http.MethodGet, path: "/info", status: http.StatusOK},
		{name: "info wrong method", method: http.MethodPost, path: "/info", status: http.StatusMethodNotAllowed, allowHeader: http.MethodGet, expectError: true},
		{name: "train ok", method: http.MethodPost, path: "/train", body: []byte(sampleTrainingBody), status: http.StatusOK},
		{name: "train wrong method", method: http.MethodGet, path: "/train", status: http.StatusMethodNotAllowed, allowHeader: http.MethodPost, expectError: true},
		{name: "train oversized body", method: http.MethodPost, path: "/train", body: oversized, status: http.StatusRequestEntityTooLarge, expectError: true},
		{name: "classify wrong method", method: http.MethodGet, path: "/classify", status: http.StatusMethodNotAllowed, allowHeader: http.MethodPost, expectError: true},
		{name: "classify oversized body", method: http.MethodPost, path: "/classify", body: oversized, status: http.StatusRequestEntityTooLarge, expectError: true},
		{name: "score wrong method", method: http.MethodGet, path: "/score", status: http.StatusMethodNotAllowed, allowHeader: http.MethodPost, expectError: true},
		{name: "flush wrong method", method: http.MethodGet, path: "/flush", status: http.StatusMethodNotAllowed, allowHeader: http.MethodPost, expectError: true},
		{name: "healthz get ok", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "readyz get ok", method: http.MethodGet, path: "/readyz", status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, mux := newTestServer(t)
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewReader(tc.body))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, tc.status)
			}

			assertJSONContentType(t, rr)

			if tc.allowHeader != "" {
				if allow := rr.Header().Get("Allow"); allow != tc.allowHeader {
					t.Fatalf("unexpected Allow header: got %q want %q", allow, tc.allowHeader)
				}
			}
			if tc.expectError {
				assertJSONErrorShape(t, rr)
			}
		})
	}
}

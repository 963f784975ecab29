package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogcast-backend/internal/config"
)

func newHFTestClient(baseURL string) *HuggingFaceClient {
	return NewHuggingFaceClient(&config.Config{
		HuggingFaceToken:   "test-token",
		HuggingFaceModel:   "facebook/bart-large-cnn",
		HuggingFaceBaseURL: baseURL,
	})
}

func TestHuggingFaceSummarizeWholeTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/facebook/bart-large-cnn" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}

		var req inferenceRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !strings.Contains(req.Inputs, "SEO-friendly blog post") {
			t.Error("request missing blog prompt")
		}

		json.NewEncoder(w).Encode([]inferenceResult{{SummaryText: "a fine blog post"}})
	}))
	defer srv.Close()

	client := newHFTestClient(srv.URL)
	out, err := client.Summarize(context.Background(), "something was said")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "a fine blog post" {
		t.Errorf("out = %q", out)
	}
}

func TestHuggingFaceChunkedFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req inferenceRequest
		json.NewDecoder(r.Body).Decode(&req)

		// Reject the whole-transcript attempt, accept plain chunks
		if strings.Contains(req.Inputs, "SEO-friendly blog post") {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "input too long"})
			return
		}

		json.NewEncoder(w).Encode([]inferenceResult{{SummaryText: "chunk summary"}})
	}))
	defer srv.Close()

	client := newHFTestClient(srv.URL)
	out, err := client.Summarize(context.Background(), strings.Repeat("word ", 100))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "chunk summary" {
		t.Errorf("out = %q", out)
	}
}

func TestHuggingFaceGeneratedTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]inferenceResult{{GeneratedText: "generated body"}})
	}))
	defer srv.Close()

	client := newHFTestClient(srv.URL)
	out, err := client.Summarize(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "generated body" {
		t.Errorf("out = %q", out)
	}
}

func TestHuggingFaceEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]inferenceResult{})
	}))
	defer srv.Close()

	client := newHFTestClient(srv.URL)
	if _, err := client.Summarize(context.Background(), "transcript"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

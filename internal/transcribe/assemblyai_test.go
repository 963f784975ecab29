package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"blogcast-backend/internal/config"
)

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("fake mp3 bytes"), 0644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func newTestClient(baseURL string) *Client {
	c := NewClient(&config.Config{
		AssemblyKey:     "test-key",
		AssemblyBaseURL: baseURL,
	})
	c.pollInterval = 10 * time.Millisecond
	return c
}

func TestTranscribeHappyPath(t *testing.T) {
	var polls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch {
		case r.Method == "POST" && r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/upload/1"})

		case r.Method == "POST" && r.URL.Path == "/v2/transcript":
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			if req["audio_url"] != "https://cdn.example/upload/1" {
				t.Errorf("audio_url = %q", req["audio_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "tr_1", "status": "queued"})

		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/v2/transcript/"):
			// First poll still processing, then done
			if atomic.AddInt32(&polls, 1) < 2 {
				json.NewEncoder(w).Encode(map[string]string{"id": "tr_1", "status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id":     "tr_1",
				"status": "completed",
				"text":   "hello from the video",
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	text, err := client.Transcribe(context.Background(), writeTestAudio(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello from the video" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeJobError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/upload/2"})
		case r.URL.Path == "/v2/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "tr_2", "status": "queued"})
		default:
			json.NewEncoder(w).Encode(map[string]string{
				"id":     "tr_2",
				"status": "error",
				"error":  "audio unreadable",
			})
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeTestAudio(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "audio unreadable") {
		t.Errorf("err = %v, want upstream reason included", err)
	}
}

func TestTranscribeUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad api key"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeTestAudio(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bad api key") {
		t.Errorf("err = %v", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	if _, err := client.Transcribe(context.Background(), "/does/not/exist.mp3"); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func TestTranscribeContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/upload/3"})
		case r.URL.Path == "/v2/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "tr_3", "status": "queued"})
		default:
			// Never finishes
			json.NewEncoder(w).Encode(map[string]string{"id": "tr_3", "status": "processing"})
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client := newTestClient(srv.URL)
	if _, err := client.Transcribe(ctx, writeTestAudio(t)); err == nil {
		t.Fatal("expected context error")
	}
}

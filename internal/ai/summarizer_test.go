package ai

import (
	"strings"
	"testing"

	"blogcast-backend/internal/config"
)

func TestNewSummarizerUnknownProvider(t *testing.T) {
	_, err := NewSummarizer(&config.Config{SummaryProvider: "chatgpt"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildBlogPrompt(t *testing.T) {
	prompt := buildBlogPrompt("the transcript body")
	if !strings.Contains(prompt, "SEO-friendly blog post") {
		t.Errorf("prompt missing instruction: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "the transcript body") {
		t.Errorf("prompt missing transcript: %q", prompt)
	}
}

func TestChunkTranscript(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := chunkTranscript(text, 1000)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[1]) != 1000 || len(chunks[2]) != 500 {
		t.Errorf("chunk sizes = %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not reassemble the input")
	}
}

func TestChunkTranscriptShortInput(t *testing.T) {
	chunks := chunkTranscript("short", 1000)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestChunkTranscriptBadSize(t *testing.T) {
	// Non-positive size falls back to the default instead of looping
	chunks := chunkTranscript(strings.Repeat("a", 1500), 0)
	if len(chunks) != 2 {
		t.Errorf("chunks = %d, want 2", len(chunks))
	}
}

func TestJoinSummaries(t *testing.T) {
	got := joinSummaries([]string{"first part", "  ", "", "second part\n"})
	want := "first part\n\nsecond part"
	if got != want {
		t.Errorf("joinSummaries = %q, want %q", got, want)
	}
}

package ai

import (
	"context"
	"fmt"
	"strings"

	"blogcast-backend/internal/config"
)

// Summarizer turns a video transcript into blog-post text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	Close() error
}

// NewSummarizer builds the provider selected by SUMMARY_PROVIDER.
func NewSummarizer(cfg *config.Config) (Summarizer, error) {
	switch cfg.SummaryProvider {
	case config.ProviderGemini:
		return NewGeminiClient(cfg.GeminiAPIKey)
	case config.ProviderHuggingFace:
		return NewHuggingFaceClient(cfg), nil
	default:
		return nil, fmt.Errorf("ai: unknown summary provider %q", cfg.SummaryProvider)
	}
}

// buildBlogPrompt wraps the transcript in the blog-generation instruction.
func buildBlogPrompt(transcript string) string {
	return fmt.Sprintf(`Write a detailed, SEO-friendly blog post summarizing the following video transcript:

%s`, transcript)
}

// chunkTranscript splits long transcripts into fixed-size pieces for
// models with tight input limits.
func chunkTranscript(text string, size int) []string {
	if size <= 0 {
		size = 1000
	}

	chunks := make([]string, 0, len(text)/size+1)
	for i := 0; i < len(text); i += size {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// joinSummaries merges per-chunk summaries into one article body.
func joinSummaries(summaries []string) string {
	nonEmpty := make([]string, 0, len(summaries))
	for _, s := range summaries {
		s = strings.TrimSpace(s)
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

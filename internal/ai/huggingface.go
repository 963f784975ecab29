package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"blogcast-backend/internal/config"
)

const fallbackChunkSize = 1000

// HuggingFaceClient summarizes text through the HuggingFace Inference API.
// It first tries the whole transcript behind the blog prompt; when the
// hosted model rejects the input (typically too long), it falls back to
// chunked summarization and joins the pieces.
type HuggingFaceClient struct {
	token       string
	model       string
	baseURL     string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

type inferenceRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

type inferenceResult struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

func NewHuggingFaceClient(cfg *config.Config) *HuggingFaceClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "HuggingFaceAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &HuggingFaceClient{
		token:       cfg.HuggingFaceToken,
		model:       cfg.HuggingFaceModel,
		baseURL:     cfg.HuggingFaceBaseURL,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		breaker:     breaker,
		// Hosted inference is heavily throttled on free tokens
		rateLimiter: rate.NewLimiter(rate.Limit(0.5), 2),
	}
}

// Summarize produces the blog-post text for a transcript.
func (hf *HuggingFaceClient) Summarize(ctx context.Context, transcript string) (string, error) {
	tracer := otel.Tracer("huggingface-client")
	ctx, span := tracer.Start(ctx, "huggingface.summarize")
	defer span.End()

	span.SetAttributes(
		attribute.String("huggingface.model", hf.model),
		attribute.Int("huggingface.input_chars", len(transcript)),
	)

	// First attempt: whole transcript behind the blog prompt.
	summary, err := hf.infer(ctx, buildBlogPrompt(transcript), map[string]interface{}{
		"max_length": 500,
		"min_length": 100,
		"do_sample":  false,
	})
	if err == nil {
		span.SetAttributes(attribute.Bool("huggingface.chunked", false))
		return summary, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || ctx.Err() != nil {
		return "", err
	}

	// Fallback: summarization models have input length limits, so chunk
	// the transcript, summarize each piece and join the results.
	span.SetAttributes(attribute.Bool("huggingface.chunked", true))

	chunks := chunkTranscript(transcript, fallbackChunkSize)
	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := hf.infer(ctx, chunk, map[string]interface{}{
			"max_length": 200,
			"min_length": 50,
			"do_sample":  false,
		})
		if err != nil {
			return "", fmt.Errorf("ai: summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, out)
	}

	joined := joinSummaries(summaries)
	if joined == "" {
		return "", fmt.Errorf("ai: summarization produced no text")
	}
	return joined, nil
}

func (hf *HuggingFaceClient) infer(ctx context.Context, input string, parameters map[string]interface{}) (string, error) {
	if err := hf.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := hf.breaker.Execute(func() (interface{}, error) {
		return hf.post(ctx, input, parameters)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (hf *HuggingFaceClient) post(ctx context.Context, input string, parameters map[string]interface{}) (string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:     input,
		Parameters: parameters,
		Options:    map[string]interface{}{"wait_for_model": true},
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshal inference request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", hf.baseURL, hf.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: create inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+hf.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := hf.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		json.Unmarshal(raw, &apiErr)
		if apiErr.Error != "" {
			return "", fmt.Errorf("ai: inference status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("ai: inference status %d", resp.StatusCode)
	}

	var results []inferenceResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("ai: decode inference response: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("ai: empty inference response")
	}

	// Summarization models answer with summary_text; text-generation
	// deployments of the same task use generated_text.
	if results[0].SummaryText != "" {
		return results[0].SummaryText, nil
	}
	if results[0].GeneratedText != "" {
		return results[0].GeneratedText, nil
	}
	return "", fmt.Errorf("ai: inference response has no text")
}

// Close implements Summarizer. The HTTP client holds no resources that
// need explicit release.
func (hf *HuggingFaceClient) Close() error {
	return nil
}

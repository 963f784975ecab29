package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"blogcast-backend/internal/config"
)

// Client talks to the AssemblyAI REST API: upload the audio bytes, create
// a transcript job, then poll until it finishes.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // queued, processing, completed, error
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

func NewClient(cfg *config.Config) *Client {
	pollInterval := time.Duration(cfg.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	return &Client{
		apiKey:  cfg.AssemblyKey,
		baseURL: cfg.AssemblyBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // uploads of long videos take a while
		},
		pollInterval: pollInterval,
	}
}

// Transcribe uploads the audio file and blocks until AssemblyAI returns
// the finished transcript text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	tracer := otel.Tracer("assemblyai-client")
	ctx, span := tracer.Start(ctx, "assemblyai.transcribe")
	defer span.End()

	uploadURL, err := c.upload(ctx, audioPath)
	if err != nil {
		span.SetAttributes(attribute.Bool("assemblyai.error", true))
		return "", err
	}

	id, err := c.createTranscript(ctx, uploadURL)
	if err != nil {
		span.SetAttributes(attribute.Bool("assemblyai.error", true))
		return "", err
	}
	span.SetAttributes(attribute.String("assemblyai.transcript_id", id))

	text, err := c.poll(ctx, id)
	if err != nil {
		span.SetAttributes(attribute.Bool("assemblyai.error", true))
		return "", err
	}

	span.SetAttributes(attribute.Int("assemblyai.transcript_chars", len(text)))
	return text, nil
}

func (c *Client) upload(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: read audio file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/upload", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("transcribe: create upload request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var uploadResp uploadResponse
	if err := c.do(req, &uploadResp); err != nil {
		return "", fmt.Errorf("transcribe: upload failed: %w", err)
	}
	if uploadResp.UploadURL == "" {
		return "", fmt.Errorf("transcribe: upload returned no URL")
	}

	return uploadResp.UploadURL, nil
}

func (c *Client) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{AudioURL: audioURL})
	if err != nil {
		return "", fmt.Errorf("transcribe: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transcribe: create transcript request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var transcriptResp transcriptResponse
	if err := c.do(req, &transcriptResp); err != nil {
		return "", fmt.Errorf("transcribe: create transcript failed: %w", err)
	}
	if transcriptResp.ID == "" {
		return "", fmt.Errorf("transcribe: transcript job has no id")
	}

	return transcriptResp.ID, nil
}

func (c *Client) poll(ctx context.Context, id string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v2/transcript/"+id, nil)
		if err != nil {
			return "", fmt.Errorf("transcribe: create poll request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)

		var status transcriptResponse
		if err := c.do(req, &status); err != nil {
			return "", fmt.Errorf("transcribe: poll failed: %w", err)
		}

		switch status.Status {
		case "completed":
			if status.Text == "" {
				return "", fmt.Errorf("transcribe: transcript %s completed with empty text", id)
			}
			return status.Text, nil
		case "error":
			return "", fmt.Errorf("transcribe: transcript %s failed: %s", id, status.Error)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

package models

import "time"

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// GenerationJob tracks one asynchronous pipeline run. Blog posts are only
// written when a job completes; failed jobs never produce a post row.
type GenerationJob struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	YoutubeLink string    `json:"youtube_link"`
	Status      string    `json:"status"`
	BlogPostID  *int64    `json:"blog_post_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

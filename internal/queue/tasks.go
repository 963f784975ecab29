package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"blogcast-backend/internal/logger"
	"blogcast-backend/internal/media"
	"blogcast-backend/internal/store"
	"blogcast-backend/models"
	"blogcast-backend/services"
)

const TaskGenerateBlog = "blog:generate"

type GenerateBlogPayload struct {
	JobID  string `json:"job_id"`
	UserID int64  `json:"user_id"`
	Link   string `json:"link"`
}

// NewGenerateBlogTask builds the asynq task for one generation job.
func NewGenerateBlogTask(jobID string, userID int64, link string) (*asynq.Task, error) {
	payload, err := json.Marshal(GenerateBlogPayload{
		JobID:  jobID,
		UserID: userID,
		Link:   link,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskGenerateBlog,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor runs queued pipeline jobs in the worker binary.
type TaskProcessor struct {
	store       *store.Store
	blogService *services.BlogService
}

func NewTaskProcessor(st *store.Store, blogService *services.BlogService) *TaskProcessor {
	return &TaskProcessor{
		store:       st,
		blogService: blogService,
	}
}

func (p *TaskProcessor) ProcessGenerateBlog(ctx context.Context, t *asynq.Task) error {
	var payload GenerateBlogPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("processing generation job", "job_id", payload.JobID, "user_id", payload.UserID)

	job, err := p.store.GetJob(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("job %s not found: %w", payload.JobID, asynq.SkipRetry)
		}
		return err
	}

	// A requeued task for a finished job must not run the pipeline again,
	// that would insert a duplicate post.
	if job.Status == models.JobStatusCompleted {
		logger.Info("generation job already completed", "job_id", payload.JobID)
		return nil
	}

	if err := p.store.MarkJobProcessing(ctx, payload.JobID); err != nil {
		return err
	}

	post, err := p.blogService.Generate(ctx, payload.UserID, payload.Link)
	if err != nil {
		markErr := p.store.MarkJobFailed(ctx, payload.JobID, err.Error())
		if markErr != nil {
			logger.Error("failed to record job failure", "job_id", payload.JobID, "error", markErr)
		}

		// Bad links never become valid, skip the retries.
		var stageErr *services.StageError
		if errors.Is(err, media.ErrInvalidLink) ||
			(errors.As(err, &stageErr) && stageErr.Stage == services.StageMetadata) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err // Will retry
	}

	if err := p.store.MarkJobCompleted(ctx, payload.JobID, post.ID); err != nil {
		// The post row is already persisted; a retry would rerun the
		// pipeline and duplicate it.
		logger.Error("failed to record job completion", "job_id", payload.JobID, "error", err)
		return fmt.Errorf("record completion for job %s: %v: %w", payload.JobID, err, asynq.SkipRetry)
	}

	logger.Info("generation job completed",
		"job_id", payload.JobID,
		"post_id", post.ID,
		"status", models.JobStatusCompleted)
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogcast-backend/models"
)

// CreateJob records a new pending generation job.
func (s *Store) CreateJob(ctx context.Context, id string, userID int64, link string) (*models.GenerationJob, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_jobs (id, user_id, youtube_link, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, link, models.JobStatusPending, now, now)
	if err != nil {
		return nil, fmt.Errorf("store: create job: %w", err)
	}

	return &models.GenerationJob{
		ID:          id,
		UserID:      userID,
		YoutubeLink: link,
		Status:      models.JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetJob returns a generation job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*models.GenerationJob, error) {
	var j models.GenerationJob
	var blogPostID sql.NullInt64
	var jobErr sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, youtube_link, status, blog_post_id, error, created_at, updated_at
		 FROM generation_jobs WHERE id = ?`, id).
		Scan(&j.ID, &j.UserID, &j.YoutubeLink, &j.Status, &blogPostID, &jobErr, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get job: %w", err)
	}

	if blogPostID.Valid {
		j.BlogPostID = &blogPostID.Int64
	}
	j.Error = jobErr.String

	return &j, nil
}

// MarkJobProcessing transitions a job to the processing state.
func (s *Store) MarkJobProcessing(ctx context.Context, id string) error {
	return s.updateJob(ctx, id, models.JobStatusProcessing, nil, "")
}

// MarkJobCompleted records the finished post for a job.
func (s *Store) MarkJobCompleted(ctx context.Context, id string, blogPostID int64) error {
	return s.updateJob(ctx, id, models.JobStatusCompleted, &blogPostID, "")
}

// MarkJobFailed records the failure reason for a job.
func (s *Store) MarkJobFailed(ctx context.Context, id string, reason string) error {
	return s.updateJob(ctx, id, models.JobStatusFailed, nil, reason)
}

func (s *Store) updateJob(ctx context.Context, id, status string, blogPostID *int64, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE generation_jobs SET status = ?, blog_post_id = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, blogPostID, nullableString(reason), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

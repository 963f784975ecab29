package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogcast-backend/models"
	"blogcast-backend/utils"
)

// CreateBlogPost inserts a finished post. The transcript is compressed
// before storage since it dominates row size.
func (s *Store) CreateBlogPost(ctx context.Context, userID int64, title, link, transcript, content string) (*models.BlogPost, error) {
	blob, algorithm, err := utils.CompressText(transcript)
	if err != nil {
		return nil, fmt.Errorf("store: compress transcript: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO blog_posts (user_id, youtube_title, youtube_link, transcript, transcript_encoding, generated_content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, title, link, blob, string(algorithm), content, now)
	if err != nil {
		return nil, fmt.Errorf("store: create blog post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: create blog post id: %w", err)
	}

	return &models.BlogPost{
		ID:               id,
		UserID:           userID,
		YoutubeTitle:     title,
		YoutubeLink:      link,
		Transcript:       transcript,
		GeneratedContent: content,
		CreatedAt:        now,
	}, nil
}

// GetBlogPost returns a single post including its decompressed transcript.
func (s *Store) GetBlogPost(ctx context.Context, id int64) (*models.BlogPost, error) {
	var p models.BlogPost
	var blob []byte
	var encoding string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, youtube_title, youtube_link, transcript, transcript_encoding, generated_content, created_at
		 FROM blog_posts WHERE id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.YoutubeTitle, &p.YoutubeLink, &blob, &encoding, &p.GeneratedContent, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get blog post: %w", err)
	}

	transcript, err := utils.DecompressText(blob, utils.CompressionAlgorithm(encoding))
	if err != nil {
		return nil, fmt.Errorf("store: decompress transcript: %w", err)
	}
	p.Transcript = transcript

	return &p, nil
}

// ListBlogPosts returns a page of the user's posts, newest first. The
// transcript is omitted from listings.
func (s *Store) ListBlogPosts(ctx context.Context, userID int64, page, pageSize int) ([]models.BlogPost, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blog_posts WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count blog posts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, youtube_title, youtube_link, generated_content, created_at
		 FROM blog_posts WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list blog posts: %w", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		var p models.BlogPost
		if err := rows.Scan(&p.ID, &p.UserID, &p.YoutubeTitle, &p.YoutubeLink, &p.GeneratedContent, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("store: scan blog post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: list blog posts: %w", err)
	}

	return posts, total, nil
}

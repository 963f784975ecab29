package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"blogcast-backend/internal/ai"
	"blogcast-backend/internal/logger"
	"blogcast-backend/internal/media"
	"blogcast-backend/internal/store"
	"blogcast-backend/models"
)

// Pipeline stages, used for error mapping and logging.
const (
	StageMetadata      = "metadata"
	StageDownload      = "download"
	StageTranscription = "transcription"
	StageSummarization = "summarization"
	StagePersistence   = "persistence"
)

// StageError reports which pipeline stage failed. Metadata failures map to
// client errors (bad link); later stages are upstream failures.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MediaFetcher is the slice of the downloader the pipeline needs.
type MediaFetcher interface {
	FetchInfo(ctx context.Context, link string) (*media.VideoInfo, error)
	DownloadAudio(ctx context.Context, link, videoID string) (string, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// BlogService chains the three external collaborators: the media tool,
// the transcription API and the summarization provider. Each step is a
// direct synchronous call; a blog post row is written only when every
// step succeeded.
type BlogService struct {
	store       *store.Store
	media       MediaFetcher
	transcriber Transcriber
	summarizer  ai.Summarizer
}

func NewBlogService(st *store.Store, fetcher MediaFetcher, transcriber Transcriber, summarizer ai.Summarizer) *BlogService {
	return &BlogService{
		store:       st,
		media:       fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
	}
}

// Generate runs the full pipeline for one video link and persists the
// resulting post.
func (s *BlogService) Generate(ctx context.Context, userID int64, link string) (*models.BlogPost, error) {
	if err := media.ValidateLink(link); err != nil {
		return nil, err
	}

	start := time.Now()

	info, err := s.media.FetchInfo(ctx, link)
	if err != nil {
		return nil, &StageError{Stage: StageMetadata, Err: err}
	}
	logger.Info("pipeline started", "user_id", userID, "video_id", info.ID, "title", info.Title)

	audioPath, err := s.media.DownloadAudio(ctx, link, info.ID)
	if err != nil {
		return nil, &StageError{Stage: StageDownload, Err: err}
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove audio file", "path", audioPath, "error", err)
		}
	}()

	transcript, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, &StageError{Stage: StageTranscription, Err: err}
	}
	if transcript == "" {
		return nil, &StageError{Stage: StageTranscription, Err: errors.New("empty transcript")}
	}
	logger.Debug("transcription finished", "video_id", info.ID, "chars", len(transcript))

	content, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, &StageError{Stage: StageSummarization, Err: err}
	}
	if content == "" {
		return nil, &StageError{Stage: StageSummarization, Err: errors.New("empty summary")}
	}

	post, err := s.store.CreateBlogPost(ctx, userID, info.Title, link, transcript, content)
	if err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}

	logger.Info("pipeline finished",
		"user_id", userID,
		"video_id", info.ID,
		"post_id", post.ID,
		"duration", time.Since(start).String())

	return post, nil
}

package media

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"blogcast-backend/internal/logger"
)

// Janitor removes leftover audio files from the media root. The pipeline
// deletes its own file after transcription; the janitor catches files
// orphaned by crashes or cancelled requests.
type Janitor struct {
	scheduler *gocron.Scheduler
	root      string
	ttl       time.Duration
}

func NewJanitor(root string, ttl time.Duration) *Janitor {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &Janitor{
		scheduler: s,
		root:      root,
		ttl:       ttl,
	}
}

// Start schedules periodic sweeps and runs them in the background.
func (j *Janitor) Start() error {
	interval := j.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	if _, err := j.scheduler.Every(interval).Tag("media-sweep").Do(func() {
		if removed, err := j.Sweep(); err != nil {
			logger.Warn("media sweep failed", "error", err)
		} else if removed > 0 {
			logger.Info("media sweep removed stale files", "count", removed)
		}
	}); err != nil {
		return err
	}

	j.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

// Sweep removes audio artifacts older than the TTL and reports how many
// files were deleted.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-j.ttl)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !isAudioArtifact(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(j.root, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

func isAudioArtifact(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".mp3", ".m4a", ".webm", ".opus", ".part", ".ytdl"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

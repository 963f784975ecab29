package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"blogcast-backend/internal/config"
)

// ErrInvalidLink is returned when the URL does not look like a YouTube video.
var ErrInvalidLink = errors.New("media: invalid video link")

// VideoInfo is the subset of yt-dlp metadata the pipeline needs.
type VideoInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Downloader shells out to yt-dlp (with ffmpeg post-processing) to fetch
// video metadata and extract mp3 audio into the media root.
type Downloader struct {
	ytdlpPath  string
	ffmpegPath string
	mediaRoot  string
}

func NewDownloader(cfg *config.Config) *Downloader {
	return &Downloader{
		ytdlpPath:  cfg.YtdlpPath,
		ffmpegPath: cfg.FFmpegPath,
		mediaRoot:  cfg.MediaRoot,
	}
}

// ValidateLink rejects anything that is not an http(s) YouTube URL before
// we shell out.
func ValidateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return ErrInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidLink
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return nil
	}
	return ErrInvalidLink
}

// FetchInfo returns the video metadata without downloading anything.
func (d *Downloader) FetchInfo(ctx context.Context, link string) (*VideoInfo, error) {
	if err := ValidateLink(link); err != nil {
		return nil, err
	}

	out, err := d.run(ctx, "--no-playlist", "--skip-download", "--dump-json", link)
	if err != nil {
		return nil, fmt.Errorf("media: fetch metadata: %w", err)
	}

	var info VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("media: parse metadata: %w", err)
	}
	if info.ID == "" || info.Title == "" {
		return nil, fmt.Errorf("media: metadata missing id or title")
	}

	return &info, nil
}

// DownloadAudio downloads the best audio stream and converts it to mp3.
// It returns the path of the resulting file inside the media root.
func (d *Downloader) DownloadAudio(ctx context.Context, link, videoID string) (string, error) {
	if err := ValidateLink(link); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.mediaRoot, 0755); err != nil {
		return "", fmt.Errorf("media: create media root: %w", err)
	}

	args := []string{
		"--no-playlist",
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"--audio-quality", "192K",
		"-o", filepath.Join(d.mediaRoot, "%(id)s.%(ext)s"),
		"--quiet",
	}
	if d.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", d.ffmpegPath)
	}
	args = append(args, link)

	if _, err := d.run(ctx, args...); err != nil {
		return "", fmt.Errorf("media: download audio: %w", err)
	}

	mp3Path := filepath.Join(d.mediaRoot, videoID+".mp3")
	if _, err := os.Stat(mp3Path); err == nil {
		return mp3Path, nil
	}

	// Fallback: the post-processor occasionally keeps a different
	// basename, search for a matching mp3.
	matches, _ := filepath.Glob(filepath.Join(d.mediaRoot, videoID+"*.mp3"))
	if len(matches) > 0 {
		return matches[0], nil
	}

	return "", fmt.Errorf("media: audio file not found after download for video %s", videoID)
}

func (d *Downloader) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, d.ytdlpPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s not found on PATH: %w", d.ytdlpPath, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %s", err, firstLine(msg))
	}

	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

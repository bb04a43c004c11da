package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/abhisek/quizsmith/internal/text"
)

// ExtractVideoID pulls the video id out of a YouTube URL. Short links
// (youtu.be/<id>) win, then the "v" query parameter, then the last path
// segment.
func ExtractVideoID(videoURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}

	var id string
	switch {
	case u.Host == "youtu.be" || u.Host == "www.youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	default:
		path := strings.TrimSuffix(u.Path, "/")
		id = path[strings.LastIndex(path, "/")+1:]
	}

	if id == "" {
		return "", fmt.Errorf("no video id in %q", videoURL)
	}
	return id, nil
}

// LanguageCandidates returns the preferred transcript languages for a
// language hint, always falling back to English.
func LanguageCandidates(lang string) []string {
	lang = strings.TrimSpace(lang)
	if lang == "" || lang == "en" {
		return []string{"en"}
	}
	return []string{lang, "en"}
}

// captionClient is the subset of the YouTube client the fetcher uses.
type captionClient interface {
	GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error)
}

// TranscriptFetcher reads captions straight from YouTube.
type TranscriptFetcher struct {
	client captionClient
}

// NewTranscriptFetcher creates a fetcher whose requests time out after timeout.
func NewTranscriptFetcher(timeout time.Duration) *TranscriptFetcher {
	return &TranscriptFetcher{
		client: &youtube.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// Fetch returns the normalized transcript of the video in the first
// language that has one. It is never retried.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoURL string, languages []string) (string, error) {
	id, err := ExtractVideoID(videoURL)
	if err != nil {
		return "", err
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	var (
		disabled int
		lastErr  error
	)
	for _, lang := range languages {
		segments, err := f.client.GetTranscriptCtx(ctx, &youtube.Video{ID: id}, lang)
		switch {
		case errors.Is(err, youtube.ErrTranscriptDisabled):
			disabled++
			continue
		case err != nil:
			if ctx.Err() != nil {
				return "", fmt.Errorf("fetch transcript for %s: %w", id, ctx.Err())
			}
			lastErr = err
			continue
		}

		parts := make([]string, 0, len(segments))
		for _, seg := range segments {
			parts = append(parts, seg.Text)
		}
		if out := text.Normalize(strings.Join(parts, " ")); out != "" {
			return out, nil
		}
	}

	switch {
	case disabled == len(languages):
		return "", ErrTranscriptsDisabled
	case lastErr != nil && disabled == 0:
		return "", fmt.Errorf("fetch transcript for %s: %w", id, lastErr)
	}
	return "", ErrNoTranscript
}

// IsUserFacing reports whether err is a transcript condition the caller
// should see verbatim rather than as a service failure.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrTranscriptsDisabled) || errors.Is(err, ErrNoTranscript)
}

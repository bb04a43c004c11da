package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Transcriber turns recorded speech into normalized text.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path, language string) (string, error)
	TranscribeReader(ctx context.Context, r io.Reader, name, language string) (string, error)
}

// AudioChecker is implemented by transcribers that accept only some of the
// audio files ValidateAudioFile lets through. IngestAudio consults it before
// any record is created.
type AudioChecker interface {
	CheckAudio(path string) error
}

// spoolFunc transcribes a file on disk.
type spoolFunc func(ctx context.Context, path, language string) (string, error)

// transcribeSpooled drains r to a uniquely named temp file in dir, runs fn on
// it and always removes the file afterwards.
func transcribeSpooled(ctx context.Context, dir string, r io.Reader, name, language string, fn spoolFunc) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".wav"
	}
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, "quizsmith-audio-"+uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	defer os.Remove(path)

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}

	return fn(ctx, path, language)
}

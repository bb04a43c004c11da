package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// Setup builds a Service from configuration. A backend whose credential is
// missing is left unset, so only the content types that need it fail. The
// returned cleanup closes any remote clients.
func Setup(ctx context.Context, cfg Config, sources store.SourceRepo, log *logger.Logger) (*Service, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log = logger.OrNop(log)

	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	deps := Deps{Fetcher: NewTranscriptFetcher(cfg.TranscriptTimeout)}

	switch cfg.STTProvider {
	case "google":
		t, err := NewGoogleSpeechTranscriber(ctx, log)
		if err := skipMissing(err, "speech-to-text", log); err != nil {
			cleanup()
			return nil, nil, err
		}
		if t != nil {
			deps.Transcriber = t
			closers = append(closers, t)
		}
	default:
		t, err := NewElevenLabsTranscriber(cfg.ElevenLabs, cfg.STTTimeout, log)
		if err := skipMissing(err, "speech-to-text", log); err != nil {
			cleanup()
			return nil, nil, err
		}
		if t != nil {
			deps.Transcriber = t
		}
	}

	raster := PdftoppmRasterizer{Bin: cfg.PdftoppmPath, DPI: 300}
	switch cfg.OCREngine {
	case "google":
		rec, err := NewGoogleVisionRecognizer(ctx)
		if err := skipMissing(err, "document OCR", log); err != nil {
			cleanup()
			return nil, nil, err
		}
		if rec != nil {
			deps.Extractor = NewDocumentExtractor(raster, rec, cfg.OCRPageTimeout, log)
			closers = append(closers, rec)
		}
	default:
		deps.Extractor = NewDocumentExtractor(raster, TesseractRecognizer{Bin: cfg.TesseractPath}, cfg.OCRPageTimeout, log)
	}

	svc := NewService(sources, deps, log)
	svc.SetUploadDir(cfg.UploadDir)
	return svc, cleanup, nil
}

func skipMissing(err error, what string, log *logger.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMissingCredential) {
		log.Warn(what+" disabled", "reason", err.Error())
		return nil
	}
	return err
}

// SetUploadDir changes where SaveUpload writes files.
func (s *Service) SetUploadDir(dir string) {
	s.uploadDir = dir
}

// SaveUpload copies an uploaded file into the upload directory under a
// unique name that keeps the original extension, and returns its path.
func (s *Service) SaveUpload(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, uuid.NewString()+"-"+filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

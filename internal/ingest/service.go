package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
	"github.com/abhisek/quizsmith/internal/text"
)

// Accepted upload extensions per content type.
var (
	AudioExtensions    = []string{".mp3", ".wav", ".m4a", ".mp4"}
	DocumentExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}
)

// Fetcher returns the transcript text of a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoURL string, languages []string) (string, error)
}

// Extractor returns the text of a document file.
type Extractor interface {
	Extract(ctx context.Context, path, language string) (string, error)
}

// Deps are the extractors behind each content type. A nil Transcriber or
// Extractor means that backend has no credential configured.
type Deps struct {
	Fetcher     Fetcher
	Transcriber Transcriber
	Extractor   Extractor
}

// YouTubeRequest describes a video to ingest.
type YouTubeRequest struct {
	URL         string
	Title       string
	Description string
	Language    string
}

// FileRequest describes a local audio or document file to ingest.
type FileRequest struct {
	Path        string
	Title       string
	Description string
	Language    string
}

// Service runs the ingestion pipeline: create the source, extract its text,
// chunk it and mark it READY or FAILED.
type Service struct {
	sources   store.SourceRepo
	deps      Deps
	chunkSize int
	uploadDir string
	log       *logger.Logger
}

// NewService creates an ingestion service.
func NewService(sources store.SourceRepo, deps Deps, log *logger.Logger) *Service {
	return &Service{
		sources:   sources,
		deps:      deps,
		chunkSize: text.DefaultChunkSize,
		uploadDir: DefaultConfig().UploadDir,
		log:       logger.OrNop(log).With("component", "ingest"),
	}
}

// ValidateAudioFile rejects names whose extension is not an accepted audio type.
func ValidateAudioFile(name string) error {
	return checkExtension(name, AudioExtensions, "MP3, WAV, M4A, or MP4")
}

// ValidateDocumentFile rejects names whose extension is not an accepted document type.
func ValidateDocumentFile(name string) error {
	return checkExtension(name, DocumentExtensions, "PDF or image (PNG/JPG)")
}

func checkExtension(name string, allowed []string, human string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(allowed, ext) {
		return fmt.Errorf("%w %q: use %s", ErrUnsupportedFileType, ext, human)
	}
	return nil
}

// IngestYouTube fetches the transcript of a video and stores it as a source.
func (s *Service) IngestYouTube(ctx context.Context, req YouTubeRequest) (*store.ContentSource, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("%w: youtube_url is required", ErrInvalidRequest)
	}
	if _, err := ExtractVideoID(req.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Title == "" {
		req.Title = "YouTube video"
	}
	if req.Language == "" {
		req.Language = "en"
	}

	src := &store.ContentSource{
		Type:        store.SourceYouTube,
		Title:       req.Title,
		Description: req.Description,
		Locator:     req.URL,
		Language:    req.Language,
	}
	return s.run(ctx, src)
}

// IngestAudio transcribes an audio file and stores it as a source.
func (s *Service) IngestAudio(ctx context.Context, req FileRequest) (*store.ContentSource, error) {
	if err := ValidateAudioFile(req.Path); err != nil {
		return nil, err
	}
	if s.deps.Transcriber == nil {
		return nil, fmt.Errorf("speech-to-text is not configured: %w", ErrMissingCredential)
	}
	if c, ok := s.deps.Transcriber.(AudioChecker); ok {
		if err := c.CheckAudio(req.Path); err != nil {
			return nil, err
		}
	}
	return s.run(ctx, fileSource(store.SourceAudio, req))
}

// IngestDocument extracts the text of a PDF or image and stores it as a source.
func (s *Service) IngestDocument(ctx context.Context, req FileRequest) (*store.ContentSource, error) {
	if err := ValidateDocumentFile(req.Path); err != nil {
		return nil, err
	}
	if s.deps.Extractor == nil {
		return nil, fmt.Errorf("document OCR is not configured: %w", ErrMissingCredential)
	}
	return s.run(ctx, fileSource(store.SourceDocument, req))
}

func fileSource(typ store.SourceType, req FileRequest) *store.ContentSource {
	title := req.Title
	if title == "" {
		title = filepath.Base(req.Path)
	}
	return &store.ContentSource{
		Type:        typ,
		Title:       title,
		Description: req.Description,
		Locator:     req.Path,
		Language:    req.Language,
	}
}

// Retry re-runs extraction for a source that is not READY, clearing any
// chunks left behind first.
func (s *Service) Retry(ctx context.Context, id int) (*store.ContentSource, error) {
	src, err := s.sources.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if src.Status == store.StatusReady {
		return nil, fmt.Errorf("%w: source %d is already READY", ErrInvalidRequest, id)
	}
	if src.Type == store.SourceAudio && s.deps.Transcriber == nil {
		return nil, fmt.Errorf("speech-to-text is not configured: %w", ErrMissingCredential)
	}
	if src.Type == store.SourceDocument && s.deps.Extractor == nil {
		return nil, fmt.Errorf("document OCR is not configured: %w", ErrMissingCredential)
	}

	if err := s.sources.DeleteChunks(ctx, id); err != nil {
		return nil, err
	}
	if err := s.sources.SetStatus(ctx, id, store.StatusProcessing, ""); err != nil {
		return nil, err
	}
	return s.process(ctx, src)
}

// run creates the source in PROCESSING and processes it.
func (s *Service) run(ctx context.Context, src *store.ContentSource) (*store.ContentSource, error) {
	if err := s.sources.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	s.log.Info("source created", "source_id", src.ID, "type", src.Type)
	return s.process(ctx, src)
}

func (s *Service) process(ctx context.Context, src *store.ContentSource) (*store.ContentSource, error) {
	log := s.log.With("source_id", src.ID, "type", src.Type)

	raw, err := s.extract(ctx, src)
	if err == nil {
		raw = text.Normalize(raw)
		if raw == "" {
			err = ErrEmptyExtraction
		}
	}
	if err == nil {
		err = s.store(ctx, src.ID, raw)
	}
	if err != nil {
		log.Warn("ingestion failed", "error", err)
		// Record the failure even if the request context is gone.
		if serr := s.sources.SetStatus(context.WithoutCancel(ctx), src.ID, store.StatusFailed, err.Error()); serr != nil {
			log.Error("failed to mark source FAILED", "error", serr)
		}
		return s.reload(ctx, src), fmt.Errorf("ingest source %d: %w", src.ID, err)
	}

	log.Info("source ready", "chars", len(raw))
	return s.reload(ctx, src), nil
}

func (s *Service) extract(ctx context.Context, src *store.ContentSource) (string, error) {
	switch src.Type {
	case store.SourceYouTube:
		return s.deps.Fetcher.Fetch(ctx, src.Locator, LanguageCandidates(src.Language))
	case store.SourceAudio:
		return s.deps.Transcriber.TranscribeFile(ctx, src.Locator, src.Language)
	case store.SourceDocument:
		return s.deps.Extractor.Extract(ctx, src.Locator, src.Language)
	default:
		return "", fmt.Errorf("unknown source type %q", src.Type)
	}
}

// store persists raw text and its chunks, then flips the source to READY.
func (s *Service) store(ctx context.Context, id int, raw string) error {
	if err := s.sources.SetRawText(ctx, id, raw); err != nil {
		return err
	}

	pieces := text.Chunk(raw, s.chunkSize)
	chunks := make([]store.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = store.Chunk{Index: i + 1, Text: p, TokenCount: text.EstimateTokens(p)}
	}
	if err := s.sources.SaveChunks(ctx, id, chunks); err != nil {
		return err
	}
	return s.sources.SetStatus(ctx, id, store.StatusReady, "")
}

// reload returns the stored row, or src itself if it cannot be read back.
func (s *Service) reload(ctx context.Context, src *store.ContentSource) *store.ContentSource {
	fresh, err := s.sources.Get(context.WithoutCancel(ctx), src.ID)
	if err != nil {
		return src
	}
	return fresh
}

// IsValidation reports whether err is caused by caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType) || errors.Is(err, ErrInvalidRequest)
}

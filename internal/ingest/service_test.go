package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/abhisek/quizsmith/internal/store"
)

type fakeFetcher struct {
	text      string
	err       error
	languages []string
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, languages []string) (string, error) {
	f.languages = languages
	return f.text, f.err
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) TranscribeFile(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeTranscriber) TranscribeReader(ctx context.Context, _ io.Reader, name, language string) (string, error) {
	return f.TranscribeFile(ctx, name, language)
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func countSources(t *testing.T, s *store.Store) int {
	t.Helper()
	list, err := s.SourceRepo().List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	return len(list)
}

func TestIngestDocument_Success(t *testing.T) {
	s := openTestStore(t)
	ext := &fakeExtractor{text: strings.Repeat("alpha beta gamma ", 200)}
	svc := NewService(s.SourceRepo(), Deps{Extractor: ext}, nil)
	svc.chunkSize = 100

	src, err := svc.IngestDocument(context.Background(), FileRequest{Path: "/uploads/Biology Notes.pdf", Language: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Status != store.StatusReady {
		t.Fatalf("status = %s", src.Status)
	}
	if src.Title != "Biology Notes.pdf" {
		t.Errorf("default title = %q", src.Title)
	}
	if src.Type != store.SourceDocument {
		t.Errorf("type = %s", src.Type)
	}

	chunks, err := s.SourceRepo().Chunks(context.Background(), src.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	var joined []string
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.TokenCount != len(strings.Fields(c.Text)) {
			t.Errorf("chunk %d token count = %d", i, c.TokenCount)
		}
		if len(c.Text) > 100 {
			t.Errorf("chunk %d too long: %d", i, len(c.Text))
		}
		joined = append(joined, c.Text)
	}
	if strings.Join(joined, " ") != src.RawText {
		t.Error("chunks should re-join to the raw text")
	}
}

func TestIngestDocument_UnsupportedExtension(t *testing.T) {
	s := openTestStore(t)
	ext := &fakeExtractor{text: "never"}
	svc := NewService(s.SourceRepo(), Deps{Extractor: ext}, nil)

	_, err := svc.IngestDocument(context.Background(), FileRequest{Path: "slides.pptx"})
	if !errors.Is(err, ErrUnsupportedFileType) || !IsValidation(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.calls != 0 {
		t.Error("extractor should not be called")
	}
	if n := countSources(t, s); n != 0 {
		t.Fatalf("expected no source record, got %d", n)
	}
}

func TestIngestAudio_MissingCredential(t *testing.T) {
	s := openTestStore(t)
	svc := NewService(s.SourceRepo(), Deps{}, nil)

	_, err := svc.IngestAudio(context.Background(), FileRequest{Path: "lecture.mp3"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if n := countSources(t, s); n != 0 {
		t.Fatalf("expected no source record, got %d", n)
	}
}

func TestIngestAudio_FailureMarksFailed(t *testing.T) {
	s := openTestStore(t)
	tr := &fakeTranscriber{err: &ServiceError{Service: "ElevenLabs STT", Status: 500, Body: "boom"}}
	svc := NewService(s.SourceRepo(), Deps{Transcriber: tr}, nil)

	src, err := svc.IngestAudio(context.Background(), FileRequest{Path: "lecture.wav", Title: "Lecture"})
	if err == nil {
		t.Fatal("expected error")
	}
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected wrapped ServiceError, got %v", err)
	}
	if src == nil || src.Status != store.StatusFailed {
		t.Fatalf("source = %+v", src)
	}
	if !strings.Contains(src.ErrorMessage, "boom") {
		t.Errorf("error message = %q", src.ErrorMessage)
	}
	chunks, _ := s.SourceRepo().Chunks(context.Background(), src.ID)
	if len(chunks) != 0 {
		t.Fatalf("failed source has %d chunks", len(chunks))
	}
}

func TestIngest_EmptyExtraction(t *testing.T) {
	s := openTestStore(t)
	tr := &fakeTranscriber{text: " \n\t "}
	svc := NewService(s.SourceRepo(), Deps{Transcriber: tr}, nil)

	src, err := svc.IngestAudio(context.Background(), FileRequest{Path: "silence.m4a"})
	if !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
	if src.Status != store.StatusFailed {
		t.Fatalf("status = %s", src.Status)
	}
}

func TestIngestYouTube(t *testing.T) {
	s := openTestStore(t)
	f := &fakeFetcher{text: "Welcome to\nthe   lecture"}
	svc := NewService(s.SourceRepo(), Deps{Fetcher: f}, nil)

	src, err := svc.IngestYouTube(context.Background(), YouTubeRequest{URL: "https://youtu.be/abc", Language: "az"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Title != "YouTube video" || src.RawText != "Welcome to the lecture" {
		t.Fatalf("source = %+v", src)
	}
	if len(f.languages) != 2 || f.languages[0] != "az" || f.languages[1] != "en" {
		t.Fatalf("languages = %v", f.languages)
	}
}

func TestIngestYouTube_InvalidURL(t *testing.T) {
	s := openTestStore(t)
	svc := NewService(s.SourceRepo(), Deps{Fetcher: &fakeFetcher{}}, nil)

	for _, u := range []string{"", "   ", "https://www.youtube.com/"} {
		_, err := svc.IngestYouTube(context.Background(), YouTubeRequest{URL: u})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("URL %q: expected ErrInvalidRequest, got %v", u, err)
		}
	}
	if n := countSources(t, s); n != 0 {
		t.Fatalf("expected no source record, got %d", n)
	}
}

func TestIngestYouTube_TranscriptsDisabled(t *testing.T) {
	s := openTestStore(t)
	svc := NewService(s.SourceRepo(), Deps{Fetcher: &fakeFetcher{err: ErrTranscriptsDisabled}}, nil)

	src, err := svc.IngestYouTube(context.Background(), YouTubeRequest{URL: "https://youtu.be/abc"})
	if !IsUserFacing(err) {
		t.Fatalf("expected user-facing error, got %v", err)
	}
	if src.Status != store.StatusFailed {
		t.Fatalf("status = %s", src.Status)
	}
}

func TestRetry(t *testing.T) {
	s := openTestStore(t)
	ext := &fakeExtractor{err: errors.New("ocr down")}
	svc := NewService(s.SourceRepo(), Deps{Extractor: ext}, nil)
	ctx := context.Background()

	src, err := svc.IngestDocument(ctx, FileRequest{Path: "scan.png"})
	if err == nil {
		t.Fatal("expected first attempt to fail")
	}
	// Leftover chunks from an interrupted run must not survive a retry.
	if err := s.SourceRepo().SaveChunks(ctx, src.ID, []store.Chunk{{Index: 1, Text: "stale", TokenCount: 1}}); err != nil {
		t.Fatal(err)
	}

	ext.err = nil
	ext.text = "fresh text"
	src, err = svc.Retry(ctx, src.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if src.Status != store.StatusReady || src.ErrorMessage != "" {
		t.Fatalf("source = %+v", src)
	}
	chunks, _ := s.SourceRepo().Chunks(ctx, src.ID)
	if len(chunks) != 1 || chunks[0].Text != "fresh text" {
		t.Fatalf("chunks = %+v", chunks)
	}

	if _, err := svc.Retry(ctx, src.ID); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("retry of READY source: %v", err)
	}
}

func TestRetry_NotFound(t *testing.T) {
	s := openTestStore(t)
	svc := NewService(s.SourceRepo(), Deps{}, nil)
	if _, err := svc.Retry(context.Background(), 999); !store.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveUpload(t *testing.T) {
	s := openTestStore(t)
	svc := NewService(s.SourceRepo(), Deps{}, nil)
	svc.uploadDir = filepath.Join(t.TempDir(), "uploads")

	path, err := svc.SaveUpload("../../etc/Notes.PDF", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != svc.uploadDir {
		t.Fatalf("upload escaped the upload dir: %s", path)
	}
	if !strings.HasSuffix(path, "-Notes.PDF") {
		t.Errorf("path = %s", path)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "%PDF-1.4" {
		t.Errorf("content = %q", b)
	}
}

func TestValidateFiles(t *testing.T) {
	for _, name := range []string{"a.mp3", "b.WAV", "c.m4a", "d.mp4"} {
		if err := ValidateAudioFile(name); err != nil {
			t.Errorf("ValidateAudioFile(%q): %v", name, err)
		}
	}
	for _, name := range []string{"a.pdf", "b.PNG", "c.jpg", "d.jpeg"} {
		if err := ValidateDocumentFile(name); err != nil {
			t.Errorf("ValidateDocumentFile(%q): %v", name, err)
		}
	}
	if err := ValidateAudioFile("a.pdf"); !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("pdf accepted as audio: %v", err)
	}
	if err := ValidateDocumentFile("noext"); !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("extensionless file accepted: %v", err)
	}
}

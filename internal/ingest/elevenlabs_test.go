package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type sttRequest struct {
	apiKey   string
	model    string
	language string
	filename string
	content  string
}

func sttServer(t *testing.T, status int, body string, seen *sttRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech-to-text" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if seen != nil {
			seen.apiKey = r.Header.Get("xi-api-key")
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			seen.model = r.FormValue("model_id")
			seen.language = r.FormValue("language_code")
			if f, h, err := r.FormFile("file"); err == nil {
				b, _ := io.ReadAll(f)
				seen.filename = h.Filename
				seen.content = string(b)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestTranscriber(t *testing.T, url string) *ElevenLabsTranscriber {
	t.Helper()
	tr, err := NewElevenLabsTranscriber(ElevenLabsConfig{APIKey: "xi-test", BaseURL: url}, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.TempDir = t.TempDir()
	return tr
}

func writeAudio(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestElevenLabs_MissingKey(t *testing.T) {
	_, err := NewElevenLabsTranscriber(ElevenLabsConfig{}, time.Second, nil)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestElevenLabs_TranscribeFile(t *testing.T) {
	var seen sttRequest
	server := sttServer(t, http.StatusOK, `{"text":"Photosynthesis\n converts   light."}`, &seen)
	tr := newTestTranscriber(t, server.URL)

	got, err := tr.TranscribeFile(context.Background(), writeAudio(t, "lecture.mp3", "RIFFDATA"), "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Photosynthesis converts light." {
		t.Fatalf("transcript = %q", got)
	}
	if seen.apiKey != "xi-test" {
		t.Errorf("xi-api-key = %q", seen.apiKey)
	}
	if seen.model != "scribe_v2" {
		t.Errorf("model_id = %q", seen.model)
	}
	if seen.language != "en" {
		t.Errorf("language_code = %q", seen.language)
	}
	if seen.filename != "lecture.mp3" || seen.content != "RIFFDATA" {
		t.Errorf("file = %q/%q", seen.filename, seen.content)
	}
}

func TestElevenLabs_NoLanguageField(t *testing.T) {
	var seen sttRequest
	server := sttServer(t, http.StatusOK, `{"transcript":"fallback field"}`, &seen)
	tr := newTestTranscriber(t, server.URL)

	got, err := tr.TranscribeFile(context.Background(), writeAudio(t, "a.wav", "x"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback field" {
		t.Fatalf("transcript = %q", got)
	}
	if seen.language != "" {
		t.Errorf("language_code should be omitted, got %q", seen.language)
	}
}

func TestElevenLabs_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"non-200", http.StatusUnauthorized, `{"detail":"bad key"}`, func(err error) bool {
			var se *ServiceError
			return errors.As(err, &se) && se.Status == 401 && strings.Contains(se.Body, "bad key")
		}},
		{"bad json", http.StatusOK, `<html>`, func(err error) bool { return errors.Is(err, ErrUnparseableResponse) }},
		{"no transcript", http.StatusOK, `{"language_code":"en"}`, func(err error) bool { return errors.Is(err, ErrEmptyTranscript) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := sttServer(t, tt.status, tt.body, nil)
			tr := newTestTranscriber(t, server.URL)
			_, err := tr.TranscribeFile(context.Background(), writeAudio(t, "a.wav", "x"), "")
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestElevenLabs_TranscribeReaderRemovesTempFile(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		var seen sttRequest
		server := sttServer(t, status, `{"text":"hi"}`, &seen)
		tr := newTestTranscriber(t, server.URL)

		_, _ = tr.TranscribeReader(context.Background(), strings.NewReader("stream-bytes"), "clip.m4a", "")

		if !strings.HasSuffix(seen.filename, ".m4a") {
			t.Errorf("temp file %q should keep the upload extension", seen.filename)
		}
		if seen.content != "stream-bytes" {
			t.Errorf("uploaded content = %q", seen.content)
		}
		left, _ := os.ReadDir(tr.TempDir)
		if len(left) != 0 {
			t.Errorf("status %d: temp dir not empty: %d entries", status, len(left))
		}
	}
}

func TestElevenLabs_TranscribeReaderDefaultExtension(t *testing.T) {
	var seen sttRequest
	server := sttServer(t, http.StatusOK, `{"text":"hi"}`, &seen)
	tr := newTestTranscriber(t, server.URL)

	if _, err := tr.TranscribeReader(context.Background(), strings.NewReader("x"), "recording", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(seen.filename) != ".wav" {
		t.Fatalf("filename = %q, want .wav extension", seen.filename)
	}
}

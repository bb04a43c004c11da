package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/text"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModel   = "scribe_v2"
)

// ElevenLabsTranscriber implements Transcriber with the ElevenLabs
// speech-to-text API.
type ElevenLabsTranscriber struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	log     *logger.Logger

	// TempDir holds spooled uploads. Empty means os.TempDir().
	TempDir string
}

// NewElevenLabsTranscriber creates a transcriber. A missing API key is a
// configuration error.
func NewElevenLabsTranscriber(cfg ElevenLabsConfig, timeout time.Duration, log *logger.Logger) (*ElevenLabsTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is not set: %w", ErrMissingCredential)
	}
	model := cfg.Model
	if model == "" {
		model = defaultElevenLabsModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	return &ElevenLabsTranscriber{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger.OrNop(log).With("component", "elevenlabs"),
	}, nil
}

func (t *ElevenLabsTranscriber) TranscribeReader(ctx context.Context, r io.Reader, name, language string) (string, error) {
	return transcribeSpooled(ctx, t.TempDir, r, name, language, t.TranscribeFile)
}

func (t *ElevenLabsTranscriber) TranscribeFile(ctx context.Context, path, language string) (string, error) {
	body, contentType, err := t.buildForm(path, language)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/speech-to-text", body)
	if err != nil {
		return "", fmt.Errorf("build speech-to-text request: %w", err)
	}
	req.Header.Set("xi-api-key", t.apiKey)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech-to-text request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read speech-to-text response: %w", err)
	}
	t.log.Debug("speech-to-text finished", "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return "", &ServiceError{Service: "ElevenLabs STT", Status: resp.StatusCode, Body: string(raw)}
	}

	var payload struct {
		Text       string `json:"text"`
		Transcript string `json:"transcript"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	transcript := payload.Text
	if transcript == "" {
		transcript = payload.Transcript
	}
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	return text.Normalize(transcript), nil
}

func (t *ElevenLabsTranscriber) buildForm(path, language string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy audio into form: %w", err)
	}
	if err := w.WriteField("model_id", t.model); err != nil {
		return nil, "", err
	}
	if language != "" {
		if err := w.WriteField("language_code", language); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

package ingest

import (
	"fmt"
	"os"
	"time"
)

// Config holds the ingestion pipeline configuration.
type Config struct {
	// STTProvider selects the speech-to-text backend: "elevenlabs" or "google".
	STTProvider string
	ElevenLabs  ElevenLabsConfig

	// OCREngine selects the recognizer: "tesseract" or "google".
	OCREngine     string
	TesseractPath string
	PdftoppmPath  string

	// UploadDir stores files received through the HTTP API.
	UploadDir string

	TranscriptTimeout time.Duration
	STTTimeout        time.Duration
	OCRPageTimeout    time.Duration
}

// ElevenLabsConfig holds ElevenLabs speech-to-text settings.
type ElevenLabsConfig struct {
	APIKey  string
	Model   string // Default: "scribe_v2"
	BaseURL string // Default: "https://api.elevenlabs.io"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		STTProvider: "elevenlabs",
		ElevenLabs: ElevenLabsConfig{
			Model:   defaultElevenLabsModel,
			BaseURL: defaultElevenLabsBaseURL,
		},
		OCREngine:         "tesseract",
		TesseractPath:     "tesseract",
		PdftoppmPath:      "pdftoppm",
		UploadDir:         "uploads",
		TranscriptTimeout: 60 * time.Second,
		STTTimeout:        5 * time.Minute,
		OCRPageTimeout:    2 * time.Minute,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("QUIZSMITH_STT_PROVIDER"); p != "" {
		cfg.STTProvider = p
	}

	if k := os.Getenv("QUIZSMITH_ELEVENLABS_API_KEY"); k != "" {
		cfg.ElevenLabs.APIKey = k
	} else if k := os.Getenv("ELEVENLABS_API_KEY"); k != "" {
		cfg.ElevenLabs.APIKey = k
	}
	if m := os.Getenv("QUIZSMITH_ELEVENLABS_STT_MODEL"); m != "" {
		cfg.ElevenLabs.Model = m
	}

	if e := os.Getenv("QUIZSMITH_OCR_ENGINE"); e != "" {
		cfg.OCREngine = e
	}
	if p := os.Getenv("QUIZSMITH_TESSERACT_PATH"); p != "" {
		cfg.TesseractPath = p
	}
	if p := os.Getenv("QUIZSMITH_PDFTOPPM_PATH"); p != "" {
		cfg.PdftoppmPath = p
	}
	if d := os.Getenv("QUIZSMITH_UPLOAD_DIR"); d != "" {
		cfg.UploadDir = d
	}

	return cfg
}

// Validate checks the backend selections. Credentials are checked when the
// backend is constructed.
func (c Config) Validate() error {
	switch c.STTProvider {
	case "elevenlabs", "google":
	default:
		return fmt.Errorf("unknown speech-to-text provider: %q", c.STTProvider)
	}
	switch c.OCREngine {
	case "tesseract", "google":
	default:
		return fmt.Errorf("unknown OCR engine: %q", c.OCREngine)
	}
	return nil
}

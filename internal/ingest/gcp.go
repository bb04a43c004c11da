package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/text"
)

// googleClientOptions reads service-account credentials from the
// environment. Inline JSON and a file path are both accepted.
func googleClientOptions() ([]option.ClientOption, error) {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is not set: %w", ErrMissingCredential)
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}, nil
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}, nil
}

// GoogleSpeechTranscriber implements Transcriber with Cloud Speech-to-Text.
type GoogleSpeechTranscriber struct {
	client *speech.Client
	log    *logger.Logger

	// TempDir holds spooled uploads. Empty means os.TempDir().
	TempDir string
}

// NewGoogleSpeechTranscriber creates a Cloud Speech client.
func NewGoogleSpeechTranscriber(ctx context.Context, log *logger.Logger) (*GoogleSpeechTranscriber, error) {
	opts, err := googleClientOptions()
	if err != nil {
		return nil, err
	}
	return newGoogleSpeechTranscriber(ctx, log, opts...)
}

func newGoogleSpeechTranscriber(ctx context.Context, log *logger.Logger, opts ...option.ClientOption) (*GoogleSpeechTranscriber, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &GoogleSpeechTranscriber{
		client: c,
		log:    logger.OrNop(log).With("component", "gcp.speech"),
	}, nil
}

func (g *GoogleSpeechTranscriber) Close() error {
	return g.client.Close()
}

func (g *GoogleSpeechTranscriber) TranscribeReader(ctx context.Context, r io.Reader, name, language string) (string, error) {
	return transcribeSpooled(ctx, g.TempDir, r, name, language, g.TranscribeFile)
}

// googleInlineAudioLimit is the largest audio payload Cloud Speech accepts
// inline.
const googleInlineAudioLimit = 10 << 20

// googleSpeechEncodings lists the containers Cloud Speech decodes itself.
var googleSpeechEncodings = map[string]speechpb.RecognitionConfig_AudioEncoding{
	".wav":  speechpb.RecognitionConfig_LINEAR16,
	".flac": speechpb.RecognitionConfig_FLAC,
	".mp3":  speechpb.RecognitionConfig_MP3,
	".ogg":  speechpb.RecognitionConfig_OGG_OPUS,
	".opus": speechpb.RecognitionConfig_OGG_OPUS,
}

// CheckAudio rejects files Cloud Speech cannot transcribe inline: containers
// it does not decode, such as .m4a and .mp4, and files over 10MB. A file
// that cannot be stat'ed is left for TranscribeFile to report.
func (g *GoogleSpeechTranscriber) CheckAudio(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := googleSpeechEncodings[ext]; !ok {
		return fmt.Errorf("%w: google speech-to-text does not accept %q audio, use .wav, .flac, .mp3 or .ogg",
			ErrUnsupportedFileType, ext)
	}
	if fi, err := os.Stat(path); err == nil && fi.Size() > googleInlineAudioLimit {
		return fmt.Errorf("%w: audio is %d bytes, google speech-to-text accepts at most %d inline",
			ErrInvalidRequest, fi.Size(), googleInlineAudioLimit)
	}
	return nil
}

func (g *GoogleSpeechTranscriber) TranscribeFile(ctx context.Context, path, language string) (string, error) {
	if err := g.CheckAudio(path); err != nil {
		return "", err
	}
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	op, err := g.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               speechLanguage(language),
			Encoding:                   googleSpeechEncodings[strings.ToLower(filepath.Ext(path))],
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	})
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize wait: %w", err)
	}

	var parts []string
	for _, res := range resp.GetResults() {
		if alts := res.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, alts[0].GetTranscript())
		}
	}
	out := text.Normalize(strings.Join(parts, " "))
	if out == "" {
		return "", ErrEmptyTranscript
	}
	return out, nil
}

func speechLanguage(lang string) string {
	switch lang = strings.TrimSpace(lang); lang {
	case "", "en":
		return "en-US"
	case "az":
		return "az-AZ"
	default:
		return lang
	}
}

// GoogleVisionRecognizer implements Recognizer with Cloud Vision document
// text detection.
type GoogleVisionRecognizer struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionRecognizer creates a Cloud Vision client.
func NewGoogleVisionRecognizer(ctx context.Context) (*GoogleVisionRecognizer, error) {
	opts, err := googleClientOptions()
	if err != nil {
		return nil, err
	}
	return newGoogleVisionRecognizer(ctx, opts...)
}

func newGoogleVisionRecognizer(ctx context.Context, opts ...option.ClientOption) (*GoogleVisionRecognizer, error) {
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &GoogleVisionRecognizer{client: c}, nil
}

func (g *GoogleVisionRecognizer) Close() error {
	return g.client.Close()
}

func (g *GoogleVisionRecognizer) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}

	req := &visionpb.AnnotateImageRequest{
		Image:    &visionpb.Image{Content: buf.Bytes()},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
	}
	if lang := strings.TrimSpace(language); lang != "" {
		req.ImageContext = &visionpb.ImageContext{LanguageHints: []string{lang}}
	}

	resp, err := g.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	})
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r0 := resp.GetResponses()[0]
	if r0.GetError() != nil && r0.GetError().GetMessage() != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.GetError().GetMessage())
	}
	return text.Normalize(r0.GetFullTextAnnotation().GetText()), nil
}

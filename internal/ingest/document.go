package ingest

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/text"
)

// minTextLayerChars is the text-layer length below which a PDF is treated
// as scanned and sent through OCR.
const minTextLayerChars = 500

// Rasterizer renders every page of a PDF into PNG files under outDir and
// returns their paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Recognizer reads text from a preprocessed page image. language is the
// source's language hint; each engine maps it to its own codes.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, language string) (string, error)
}

// DocumentExtractor recovers text from PDFs and raster images.
type DocumentExtractor struct {
	textLayer   func(path string) (string, error)
	rasterizer  Rasterizer
	recognizer  Recognizer
	pageTimeout time.Duration
	log         *logger.Logger
}

// NewDocumentExtractor creates an extractor that reads embedded PDF text
// first and falls back to rasterize + OCR.
func NewDocumentExtractor(r Rasterizer, rec Recognizer, pageTimeout time.Duration, log *logger.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		textLayer:   PDFTextLayer,
		rasterizer:  r,
		recognizer:  rec,
		pageTimeout: pageTimeout,
		log:         logger.OrNop(log).With("component", "document"),
	}
}

// Extract returns the normalized text of the document at path. A document
// with no recoverable text yields "" and no error.
func (d *DocumentExtractor) Extract(ctx context.Context, path, language string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return d.extractPDF(ctx, path, language)
	case ".png", ".jpg", ".jpeg":
		img, err := loadImage(path)
		if err != nil {
			return "", err
		}
		out, err := d.recognize(ctx, img, language)
		if err != nil {
			return "", err
		}
		return text.Normalize(out), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
}

func (d *DocumentExtractor) extractPDF(ctx context.Context, path, language string) (string, error) {
	layer, err := d.textLayer(path)
	if err != nil {
		d.log.Warn("pdf text layer unreadable, trying OCR", "path", path, "error", err)
		layer = ""
	}
	if utf8.RuneCountInString(layer) >= minTextLayerChars {
		return layer, nil
	}
	d.log.Info("pdf text layer too short, running OCR", "path", path, "chars", utf8.RuneCountInString(layer))

	dir, err := os.MkdirTemp("", "quizsmith-pages-*")
	if err != nil {
		return "", fmt.Errorf("create page dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pages, err := d.rasterizer.Rasterize(ctx, path, dir)
	if err != nil {
		return "", fmt.Errorf("rasterize pdf: %w", err)
	}

	var parts []string
	for i, page := range pages {
		img, err := loadImage(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		out, err := d.recognize(ctx, img, language)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		if out = text.Normalize(out); out != "" {
			parts = append(parts, out)
		}
	}

	if len(parts) == 0 {
		return layer, nil
	}
	return text.Normalize(strings.Join(parts, " ")), nil
}

func (d *DocumentExtractor) recognize(ctx context.Context, img image.Image, language string) (string, error) {
	if d.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.pageTimeout)
		defer cancel()
	}
	out, err := d.recognizer.Recognize(ctx, Preprocess(img), language)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return out, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

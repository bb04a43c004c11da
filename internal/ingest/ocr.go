package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/quizsmith/internal/text"
)

// PdftoppmRasterizer renders PDF pages with poppler's pdftoppm.
type PdftoppmRasterizer struct {
	Bin string // Default: "pdftoppm"
	DPI int    // Default: 300
}

func (r PdftoppmRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	bin := r.Bin
	if bin == "" {
		bin = "pdftoppm"
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 300
	}

	cmd := exec.CommandContext(ctx, bin, "-r", strconv.Itoa(dpi), "-png", pdfPath, filepath.Join(outDir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(string(out)))
	}

	// pdftoppm zero-pads page numbers to a common width, so a lexical sort
	// is page order.
	pages, err := filepath.Glob(filepath.Join(outDir, "page*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	return pages, nil
}

// TesseractLanguage maps a language hint to a tesseract language code.
func TesseractLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch {
	case strings.HasPrefix(lang, "az"):
		return "aze"
	default:
		return "eng"
	}
}

// TesseractRecognizer runs the tesseract CLI in uniform-block mode.
type TesseractRecognizer struct {
	Bin string // Default: "tesseract"
}

func (t TesseractRecognizer) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	bin := t.Bin
	if bin == "" {
		bin = "tesseract"
	}

	f, err := os.CreateTemp("", "quizsmith-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create ocr input: %w", err)
	}
	defer os.Remove(f.Name())
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode ocr input: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, f.Name(), "stdout", "-l", TesseractLanguage(language), "--psm", "6")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return text.Normalize(string(out)), nil
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestPreprocess_Binarizes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 900, 2))
	for x := 0; x < 900; x++ {
		img.Set(x, 0, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		img.Set(x, 1, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	}

	out := Preprocess(img)
	if out.Bounds().Dx() != 900 {
		t.Fatalf("wide image should keep its width, got %d", out.Bounds().Dx())
	}
	if got := out.GrayAt(10, 0).Y; got != 0 {
		t.Errorf("dark pixel = %d, want 0", got)
	}
	if got := out.GrayAt(10, 1).Y; got != 255 {
		t.Errorf("light pixel = %d, want 255", got)
	}
}

func TestPreprocess_UpscalesNarrowImages(t *testing.T) {
	out := Preprocess(solidImage(400, 100, color.White))
	b := out.Bounds()
	if b.Dx() != 800 || b.Dy() != 200 {
		t.Fatalf("bounds = %v, want 800x200", b)
	}
	if got := out.GrayAt(400, 100).Y; got != 255 {
		t.Errorf("upscaled white pixel = %d", got)
	}
}

func TestPreprocess_OffsetBounds(t *testing.T) {
	src := solidImage(1000, 10, color.Black).SubImage(image.Rect(100, 2, 900, 8))
	out := Preprocess(src)
	if out.Bounds().Min != (image.Point{}) {
		t.Fatalf("output should be zero-based, got %v", out.Bounds())
	}
	if out.Bounds().Dx() != 800 || out.Bounds().Dy() != 6 {
		t.Fatalf("bounds = %v", out.Bounds())
	}
}

func TestTesseractLanguage(t *testing.T) {
	tests := map[string]string{
		"":      "eng",
		"en":    "eng",
		"en-US": "eng",
		"az":    "aze",
		"AZ-az": "aze",
		"fr":    "eng",
	}
	for in, want := range tests {
		if got := TesseractLanguage(in); got != want {
			t.Errorf("TesseractLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

// fakeRasterizer writes one white PNG per page.
type fakeRasterizer struct {
	pages int
	calls int
	err   error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, outDir string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var paths []string
	for i := 1; i <= f.pages; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("page-%02d.png", i))
		out, err := os.Create(p)
		if err != nil {
			return nil, err
		}
		png.Encode(out, solidImage(10, 10, color.White))
		out.Close()
		paths = append(paths, p)
	}
	return paths, nil
}

// fakeRecognizer returns queued outputs in order.
type fakeRecognizer struct {
	outputs   []string
	languages []string
	widths    []int
	err       error
}

func (f *fakeRecognizer) Recognize(_ context.Context, img image.Image, language string) (string, error) {
	f.languages = append(f.languages, language)
	f.widths = append(f.widths, img.Bounds().Dx())
	if f.err != nil {
		return "", f.err
	}
	if len(f.outputs) == 0 {
		return "", nil
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}

func newTestExtractor(layer string, r *fakeRasterizer, rec *fakeRecognizer) *DocumentExtractor {
	d := NewDocumentExtractor(r, rec, 0, nil)
	d.textLayer = func(string) (string, error) { return layer, nil }
	return d
}

func TestExtract_LongTextLayerSkipsOCR(t *testing.T) {
	layer := strings.Repeat("word ", 120)
	r := &fakeRasterizer{pages: 2}
	rec := &fakeRecognizer{}

	got, err := newTestExtractor(layer, r, rec).Extract(context.Background(), "doc.pdf", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != layer {
		t.Fatal("expected the text layer to be returned as-is")
	}
	if r.calls != 0 || len(rec.languages) != 0 {
		t.Fatalf("OCR should not run, rasterize=%d recognize=%d", r.calls, len(rec.languages))
	}
}

func TestExtract_ShortTextLayerRunsOCR(t *testing.T) {
	r := &fakeRasterizer{pages: 2}
	rec := &fakeRecognizer{outputs: []string{"Page one\ntext", "  page   two "}}

	got, err := newTestExtractor("short", r, rec).Extract(context.Background(), "Scan.PDF", "az")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Page one text page two" {
		t.Fatalf("text = %q", got)
	}
	if len(rec.languages) != 2 || rec.languages[0] != "az" {
		t.Fatalf("recognizer calls = %v", rec.languages)
	}
	for _, w := range rec.widths {
		if w != 800 {
			t.Errorf("page should be preprocessed to width 800, got %d", w)
		}
	}
}

func TestExtract_EmptyOCRFallsBackToLayer(t *testing.T) {
	r := &fakeRasterizer{pages: 1}
	rec := &fakeRecognizer{}

	got, err := newTestExtractor("tiny layer", r, rec).Extract(context.Background(), "doc.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tiny layer" {
		t.Fatalf("text = %q", got)
	}
}

func TestExtract_UnreadableLayerStillTriesOCR(t *testing.T) {
	r := &fakeRasterizer{pages: 1}
	rec := &fakeRecognizer{outputs: []string{"ocr text"}}
	d := NewDocumentExtractor(r, rec, 0, nil)
	d.textLayer = func(string) (string, error) { return "", errors.New("malformed xref") }

	got, err := d.Extract(context.Background(), "doc.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ocr text" {
		t.Fatalf("text = %q", got)
	}
}

func TestExtract_RasterizeError(t *testing.T) {
	r := &fakeRasterizer{err: errors.New("pdftoppm: not found")}
	_, err := newTestExtractor("", r, &fakeRecognizer{}).Extract(context.Background(), "doc.pdf", "")
	if err == nil || !strings.Contains(err.Error(), "rasterize pdf") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtract_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	writePNG(t, path, solidImage(1200, 40, color.White))
	rec := &fakeRecognizer{outputs: []string{"Mitochondria\nis the powerhouse"}}

	got, err := newTestExtractor("", &fakeRasterizer{}, rec).Extract(context.Background(), path, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Mitochondria is the powerhouse" {
		t.Fatalf("text = %q", got)
	}
	if rec.widths[0] != 1200 {
		t.Errorf("wide image should not be rescaled, got %d", rec.widths[0])
	}
}

func TestExtract_ImageOCRError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.jpg")
	writePNG(t, path, solidImage(10, 10, color.White))
	rec := &fakeRecognizer{err: errors.New("engine crashed")}

	_, err := newTestExtractor("", &fakeRasterizer{}, rec).Extract(context.Background(), path, "")
	if err == nil || !strings.Contains(err.Error(), "engine crashed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	_, err := newTestExtractor("", &fakeRasterizer{}, &fakeRecognizer{}).Extract(context.Background(), "notes.docx", "")
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

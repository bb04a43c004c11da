package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/abhisek/quizsmith/internal/text"
)

// PDFTextLayer returns the normalized embedded text of a PDF. Pages whose
// content cannot be decoded are skipped.
func PDFTextLayer(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var parts []string
	for i := 1; i <= r.NumPage(); i++ {
		if s := pageText(r, i); s != "" {
			parts = append(parts, s)
		}
	}
	return text.Normalize(strings.Join(parts, " ")), nil
}

// pageText extracts one page. The reader panics on some malformed content
// streams, which counts as a failed page.
func pageText(r *pdf.Reader, n int) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()

	p := r.Page(n)
	if p.V.IsNull() {
		return ""
	}
	s, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return s
}

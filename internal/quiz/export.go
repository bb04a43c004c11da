package quiz

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/quizsmith/internal/store"
)

var csvHeader = []string{"index", "type", "prompt", "choices", "correct_answer", "explanation"}

// WriteCSV writes one row per question. MCQ choices are rendered as
// "A) foo; B) bar" in label order; other types leave the column empty.
func WriteCSV(w io.Writer, qs []store.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, q := range qs {
		var choices string
		if q.Type == string(TypeMCQ) {
			parts := make([]string, len(q.Choices))
			for i, c := range q.Choices {
				parts[i] = c.Label + ") " + c.Text
			}
			choices = strings.Join(parts, "; ")
		}
		row := []string{strconv.Itoa(q.Index), q.Type, q.Prompt, choices, q.CorrectAnswer, q.Explanation}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildJSON returns the stored generator output indented by two spaces, or
// the same shape rebuilt from the stored rows when there is none.
func BuildJSON(q *store.Quiz, qs []store.Question) ([]byte, error) {
	if len(q.OutputJSON) > 0 && string(q.OutputJSON) != "null" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, q.OutputJSON, "", "  "); err != nil {
			return nil, fmt.Errorf("indent output json: %w", err)
		}
		return buf.Bytes(), nil
	}

	out := Output{Title: q.Title, Settings: settingsOrEmpty(q.Settings), Questions: make([]QuestionPayload, len(qs))}
	for i, row := range qs {
		p := QuestionPayload{
			Index:         row.Index,
			Type:          QuestionType(row.Type),
			Prompt:        row.Prompt,
			Difficulty:    row.Difficulty,
			BloomLevel:    row.BloomLevel,
			CorrectAnswer: row.CorrectAnswer,
			Explanation:   row.Explanation,
			Metadata:      decodeMetadata(row.Metadata),
			Choices:       make([]ChoicePayload, len(row.Choices)),
		}
		for j, c := range row.Choices {
			p.Choices[j] = ChoicePayload{Label: c.Label, Text: c.Text}
		}
		out.Questions[i] = p
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode quiz: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExportCSV writes the quiz's questions as CSV.
func (s *Service) ExportCSV(ctx context.Context, quizID int, w io.Writer) error {
	d, err := s.Get(ctx, quizID)
	if err != nil {
		return err
	}
	return WriteCSV(w, d.Questions)
}

// ExportJSON returns the quiz as indented JSON.
func (s *Service) ExportJSON(ctx context.Context, quizID int) ([]byte, error) {
	d, err := s.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return BuildJSON(&d.Quiz, d.Questions)
}

// ExportFilename is the download name for a quiz export.
func ExportFilename(quizID int, ext string) string {
	return fmt.Sprintf("quiz_%d.%s", quizID, ext)
}

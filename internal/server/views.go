package server

import (
	"encoding/json"
	"time"

	"github.com/abhisek/quizsmith/internal/quiz"
	"github.com/abhisek/quizsmith/internal/store"
)

type chunkView struct {
	ID             int    `json:"id"`
	Index          int    `json:"index"`
	Text           string `json:"text"`
	TokensEstimate int    `json:"tokens_estimate"`
}

type sourceView struct {
	ID           int         `json:"id"`
	Type         string      `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	YouTubeURL   string      `json:"youtube_url,omitempty"`
	File         string      `json:"file,omitempty"`
	Language     string      `json:"language"`
	RawText      string      `json:"raw_text,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	CreatedAt    time.Time   `json:"created_at"`
	Chunks       []chunkView `json:"chunks,omitempty"`
}

func newSourceView(src *store.ContentSource, chunks []store.Chunk) sourceView {
	v := sourceView{
		ID:           src.ID,
		Type:         string(src.Type),
		Title:        src.Title,
		Description:  src.Description,
		Language:     src.Language,
		RawText:      src.RawText,
		Status:       string(src.Status),
		ErrorMessage: src.ErrorMessage,
		CreatedAt:    src.CreatedAt,
	}
	if src.Type == store.SourceYouTube {
		v.YouTubeURL = src.Locator
	} else {
		v.File = src.Locator
	}
	for _, ch := range chunks {
		v.Chunks = append(v.Chunks, chunkView{ID: ch.ID, Index: ch.Index, Text: ch.Text, TokensEstimate: ch.TokenCount})
	}
	return v
}

// sourceSummary omits the raw text, which can be large, from listings.
func sourceSummary(src *store.ContentSource) sourceView {
	v := newSourceView(src, nil)
	v.RawText = ""
	return v
}

type choiceView struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type questionView struct {
	ID            int             `json:"id"`
	Index         int             `json:"index"`
	Type          string          `json:"type"`
	Prompt        string          `json:"prompt"`
	BloomLevel    string          `json:"bloom_level"`
	Difficulty    string          `json:"difficulty"`
	Explanation   string          `json:"explanation"`
	CorrectAnswer string          `json:"correct_answer"`
	Metadata      json.RawMessage `json:"metadata"`
	Choices       []choiceView    `json:"choices"`
}

func newQuestionView(q *store.Question) questionView {
	v := questionView{
		ID:            q.ID,
		Index:         q.Index,
		Type:          q.Type,
		Prompt:        q.Prompt,
		BloomLevel:    q.BloomLevel,
		Difficulty:    q.Difficulty,
		Explanation:   q.Explanation,
		CorrectAnswer: q.CorrectAnswer,
		Metadata:      q.Metadata,
		Choices:       make([]choiceView, 0, len(q.Choices)),
	}
	if len(v.Metadata) == 0 {
		v.Metadata = json.RawMessage("{}")
	}
	for _, c := range q.Choices {
		v.Choices = append(v.Choices, choiceView{ID: c.ID, Label: c.Label, Text: c.Text, IsCorrect: c.IsCorrect})
	}
	return v
}

type quizView struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Settings           json.RawMessage `json:"settings"`
	CustomInstructions string          `json:"custom_instructions"`
	OutputJSON         json.RawMessage `json:"output_json,omitempty"`
	Status             string          `json:"status"`
	ErrorMessage       string          `json:"error_message"`
	ContentIDs         []int           `json:"content_ids"`
	CreatedAt          time.Time       `json:"created_at"`
	Questions          []questionView  `json:"questions,omitempty"`
}

func newQuizView(q *store.Quiz) quizView {
	return quizView{
		ID:                 q.ID,
		Title:              q.Title,
		Settings:           q.Settings,
		CustomInstructions: q.CustomInstructions,
		Status:             string(q.Status),
		ErrorMessage:       q.ErrorMessage,
		ContentIDs:         q.SourceIDs,
		CreatedAt:          q.CreatedAt,
	}
}

func newQuizDetailView(d *quiz.Detail) quizView {
	v := newQuizView(&d.Quiz)
	v.OutputJSON = d.OutputJSON
	v.Questions = make([]questionView, 0, len(d.Questions))
	for i := range d.Questions {
		v.Questions = append(v.Questions, newQuestionView(&d.Questions[i]))
	}
	return v
}

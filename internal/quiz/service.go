package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// ListLimit caps quiz listings.
const ListLimit = 50

// CreateInput describes a new quiz.
type CreateInput struct {
	Title              string
	SourceIDs          []int
	Settings           json.RawMessage
	CustomInstructions string
}

// RegenerateRequest carries the caller's overrides for one question.
type RegenerateRequest struct {
	Overrides
	ExtraInstructions string
}

// Detail is a quiz with its questions and their choices.
type Detail struct {
	store.Quiz
	Questions []store.Question
}

// Service ties generation, regeneration and explanation to persistence.
type Service struct {
	sources     store.SourceRepo
	quizzes     store.QuizRepo
	generator   Generator // nil when no credential is configured
	regenerator *Regenerator
	explainer   *Explainer
	log         *logger.Logger
}

// NewService creates a quiz service. generator may be nil, in which case
// Create and Generate fail with ErrMissingCredential.
func NewService(sources store.SourceRepo, quizzes store.QuizRepo, generator Generator, regen *Regenerator, explainer *Explainer, log *logger.Logger) *Service {
	return &Service{
		sources:     sources,
		quizzes:     quizzes,
		generator:   generator,
		regenerator: regen,
		explainer:   explainer,
		log:         logger.OrNop(log).With("component", "quiz"),
	}
}

// Create validates the request, stores the quiz in PROCESSING and generates
// it. A generation failure leaves the quiz FAILED and is returned together
// with the stored quiz.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Detail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title is required")
	}
	if len(in.SourceIDs) == 0 {
		return nil, invalid("at least one content id is required")
	}
	if _, err := ParseSettings(in.Settings); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, ErrMissingCredential
	}

	srcs, err := s.sources.GetMany(ctx, sortedIDs(in.SourceIDs))
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, invalid("no valid content found for the given content ids")
	}
	var ids, notReady []int
	for _, src := range srcs {
		ids = append(ids, src.ID)
		if src.Status != store.StatusReady {
			notReady = append(notReady, src.ID)
		}
	}
	if len(notReady) > 0 {
		return nil, &ValidationError{Message: "some content sources are not ready yet", NotReadyIDs: notReady}
	}

	q := &store.Quiz{
		Title:              in.Title,
		Settings:           in.Settings,
		CustomInstructions: in.CustomInstructions,
		Status:             store.StatusProcessing,
		SourceIDs:          ids,
	}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	s.log.Info("quiz created", "quiz_id", q.ID, "sources", len(ids))

	return s.generate(ctx, q)
}

// Generate re-runs generation for an existing quiz, replacing all of its
// questions on success.
func (s *Service) Generate(ctx context.Context, quizID int) (*Detail, error) {
	if s.generator == nil {
		return nil, ErrMissingCredential
	}
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.SetStatus(ctx, q.ID, store.StatusProcessing, ""); err != nil {
		return nil, err
	}
	return s.generate(ctx, q)
}

func (s *Service) generate(ctx context.Context, q *store.Quiz) (*Detail, error) {
	log := s.log.With("quiz_id", q.ID)

	chunks, err := s.chunks(ctx, q.SourceIDs)
	if err == nil {
		var out *Output
		var raw json.RawMessage
		out, raw, err = s.generator.Generate(ctx, GenerateInput{
			Title:        q.Title,
			Settings:     q.Settings,
			Chunks:       chunks,
			Instructions: q.CustomInstructions,
		})
		if err == nil {
			err = s.quizzes.ReplaceQuestions(ctx, q.ID, raw, toQuestions(out.Questions))
		}
	}
	if err != nil {
		log.Warn("quiz generation failed", "error", err)
		if serr := s.quizzes.SetStatus(context.WithoutCancel(ctx), q.ID, store.StatusFailed, err.Error()); serr != nil {
			log.Error("failed to mark quiz FAILED", "error", serr)
		}
		d, _ := s.Get(context.WithoutCancel(ctx), q.ID)
		return d, err
	}

	log.Info("quiz ready", "chunks", len(chunks))
	return s.Get(ctx, q.ID)
}

// chunks collects the quiz's chunks ordered by source id, then index.
func (s *Service) chunks(ctx context.Context, sourceIDs []int) ([]ChunkRef, error) {
	rows, err := s.sources.ChunksForSources(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}
	refs := make([]ChunkRef, len(rows))
	for i, c := range rows {
		refs[i] = ChunkRef{SourceID: c.SourceID, SourceTitle: c.SourceTitle, Text: c.Text}
	}
	return refs, nil
}

// toQuestions maps generated questions to rows, substituting defaults for
// missing fields.
func toQuestions(ps []QuestionPayload) []store.Question {
	qs := make([]store.Question, len(ps))
	for i, p := range ps {
		qs[i] = store.Question{
			Index:         p.Index,
			Type:          string(p.Type),
			Prompt:        p.Prompt,
			BloomLevel:    p.BloomLevel,
			Difficulty:    p.Difficulty,
			Explanation:   p.Explanation,
			CorrectAnswer: p.CorrectAnswer,
			Metadata:      encodeMetadata(p.metadata()),
			Choices:       toChoices(p.Choices),
		}
		if qs[i].Type == "" {
			qs[i].Type = string(TypeMCQ)
		}
	}
	return qs
}

func toChoices(ps []ChoicePayload) []store.Choice {
	cs := make([]store.Choice, len(ps))
	for i, c := range ps {
		cs[i] = store.Choice{Label: c.Label, Text: c.Text}
	}
	return cs
}

func encodeMetadata(m Metadata) json.RawMessage {
	if m == nil {
		m = Metadata{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

// RegenerateQuestion rewrites one question in place and returns it.
func (s *Service) RegenerateQuestion(ctx context.Context, quizID, questionID int, req RegenerateRequest) (*store.Question, error) {
	if req.Type != "" && !req.Type.Valid() {
		return nil, invalid("unknown question type %q", req.Type)
	}
	q, question, chunks, err := s.load(ctx, quizID, questionID)
	if err != nil {
		return nil, err
	}

	p, err := s.regenerator.Regenerate(ctx, RegenerateInput{
		Question:     *question,
		Settings:     q.Settings,
		Overrides:    req.Overrides,
		Instructions: q.CustomInstructions + "\n" + req.ExtraInstructions,
		Chunks:       chunks,
	})
	if err != nil {
		return nil, err
	}

	applyRegenerated(question, p)
	if err := s.quizzes.UpdateQuestion(ctx, question); err != nil {
		return nil, err
	}
	s.log.Info("question regenerated", "quiz_id", quizID, "question_id", questionID, "type", question.Type)
	return s.quizzes.GetQuestion(ctx, quizID, questionID)
}

// applyRegenerated overwrites question fields with p. Empty values keep the
// current field, except the Bloom level which is always taken from p.
func applyRegenerated(q *store.Question, p QuestionPayload) {
	q.Type = or(string(p.Type), q.Type)
	q.Prompt = or(p.Prompt, q.Prompt)
	q.Difficulty = or(p.Difficulty, q.Difficulty)
	q.Explanation = or(p.Explanation, q.Explanation)
	q.CorrectAnswer = or(p.CorrectAnswer, q.CorrectAnswer)
	q.BloomLevel = p.BloomLevel
	q.Metadata = encodeMetadata(decodeMetadata(q.Metadata).Merge(p.Metadata, p.MatchingPairs))
	q.Choices = toChoices(p.Choices)
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// ExplainQuestion replaces a question's explanation and returns the question.
func (s *Service) ExplainQuestion(ctx context.Context, quizID, questionID int) (*store.Question, error) {
	q, question, chunks, err := s.load(ctx, quizID, questionID)
	if err != nil {
		return nil, err
	}
	text, err := s.explainer.Explain(ctx, ExplainInput{Question: *question, Settings: q.Settings, Chunks: chunks})
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.SetExplanation(ctx, question.ID, text); err != nil {
		return nil, err
	}
	question.Explanation = text
	return question, nil
}

func (s *Service) load(ctx context.Context, quizID, questionID int) (*store.Quiz, *store.Question, []ChunkRef, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, nil, nil, err
	}
	question, err := s.quizzes.GetQuestion(ctx, quizID, questionID)
	if err != nil {
		return nil, nil, nil, err
	}
	chunks, err := s.chunks(ctx, q.SourceIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	return q, question, chunks, nil
}

// Get returns a quiz with its questions.
func (s *Service) Get(ctx context.Context, id int) (*Detail, error) {
	q, err := s.quizzes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	qs, err := s.quizzes.Questions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Quiz: *q, Questions: qs}, nil
}

// List returns the most recent quizzes, newest first.
func (s *Service) List(ctx context.Context) ([]store.Quiz, error) {
	return s.quizzes.List(ctx, ListLimit)
}

// Delete removes a quiz with its questions and choices.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.quizzes.Delete(ctx, id)
}

// sortedIDs returns a sorted copy without duplicates.
func sortedIDs(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

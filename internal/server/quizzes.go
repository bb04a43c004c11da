package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizsmith/internal/quiz"
)

type createQuizRequest struct {
	Title              string          `json:"title"`
	ContentIDs         []int           `json:"content_ids"`
	Settings           json.RawMessage `json:"settings"`
	CustomInstructions string          `json:"custom_instructions"`
}

type regenerateRequest struct {
	Type              string `json:"type"`
	Difficulty        string `json:"difficulty"`
	BloomLevel        string `json:"bloom_level"`
	ExtraInstructions string `json:"extra_instructions"`
}

// GET /api/quizzes
func (s *Server) listQuizzes(c *gin.Context) {
	qs, err := s.quizzes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]quizView, 0, len(qs))
	for i := range qs {
		out = append(out, newQuizView(&qs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/quizzes
func (s *Server) createQuiz(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	d, err := s.quizzes.Create(c.Request.Context(), quiz.CreateInput{
		Title:              req.Title,
		SourceIDs:          req.ContentIDs,
		Settings:           req.Settings,
		CustomInstructions: req.CustomInstructions,
	})
	s.respondGenerated(c, http.StatusCreated, d, err)
}

// POST /api/quizzes/:id/generate
func (s *Server) generateQuiz(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := s.quizzes.Generate(c.Request.Context(), id)
	s.respondGenerated(c, http.StatusOK, d, err)
}

// respondGenerated reports a failed generation together with the id of the
// quiz it left FAILED.
func (s *Server) respondGenerated(c *gin.Context, status int, d *quiz.Detail, err error) {
	if err == nil {
		c.JSON(status, newQuizDetailView(d))
		return
	}
	if d == nil {
		respondError(c, err)
		return
	}
	code, msg := classify(err)
	respondErrorEnvelope(c, code, apiError{Message: err.Error(), Code: msg, QuizID: d.ID}, err)
}

// GET /api/quizzes/:id
func (s *Server) getQuiz(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := s.quizzes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuizDetailView(d))
}

// DELETE /api/quizzes/:id
func (s *Server) deleteQuiz(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.quizzes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/quizzes/:id/questions/:qid/regenerate
func (s *Server) regenerateQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	qid, ok := pathID(c, "qid")
	if !ok {
		return
	}
	var req regenerateRequest
	// The body is optional; an empty one means no overrides.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	q, err := s.quizzes.RegenerateQuestion(c.Request.Context(), id, qid, quiz.RegenerateRequest{
		Overrides: quiz.Overrides{
			Type:       quiz.QuestionType(req.Type),
			Difficulty: req.Difficulty,
			BloomLevel: req.BloomLevel,
		},
		ExtraInstructions: req.ExtraInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionView(q))
}

// POST /api/quizzes/:id/questions/:qid/explain
func (s *Server) explainQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	qid, ok := pathID(c, "qid")
	if !ok {
		return
	}
	q, err := s.quizzes.ExplainQuestion(c.Request.Context(), id, qid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuestionView(q))
}

// GET /api/quizzes/:id/export.csv
func (s *Server) exportCSV(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.quizzes.ExportCSV(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	attachment(c, quiz.ExportFilename(id, "csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GET /api/quizzes/:id/export.json
func (s *Server) exportJSON(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := s.quizzes.ExportJSON(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, quiz.ExportFilename(id, "json"))
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
}

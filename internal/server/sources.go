package server

import (
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizsmith/internal/ingest"
	"github.com/abhisek/quizsmith/internal/store"
)

const sourceListLimit = 50

type youtubeRequest struct {
	YouTubeURL  string `json:"youtube_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// GET /api/sources
func (s *Server) listSources(c *gin.Context) {
	srcs, err := s.sources.List(c.Request.Context(), sourceListLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]sourceView, 0, len(srcs))
	for i := range srcs {
		out = append(out, sourceSummary(&srcs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/sources/youtube
func (s *Server) createYouTubeSource(c *gin.Context) {
	var req youtubeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	src, err := s.ingest.IngestYouTube(c.Request.Context(), ingest.YouTubeRequest{
		URL:         req.YouTubeURL,
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
	})
	s.respondIngested(c, src, err)
}

// POST /api/sources/audio
func (s *Server) createAudioSource(c *gin.Context) {
	s.createFileSource(c, ingest.ValidateAudioFile, s.ingest.IngestAudio)
}

// POST /api/sources/document
func (s *Server) createDocumentSource(c *gin.Context) {
	s.createFileSource(c, ingest.ValidateDocumentFile, s.ingest.IngestDocument)
}

type ingestFunc func(ctx context.Context, req ingest.FileRequest) (*store.ContentSource, error)

// createFileSource validates the upload's extension before anything is
// written, then saves it and hands the path to the pipeline.
func (s *Server) createFileSource(c *gin.Context, validate func(string) error, run ingestFunc) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required: "+err.Error())
		return
	}
	if err := validate(fh.Filename); err != nil {
		respondError(c, err)
		return
	}

	path, err := s.saveUpload(fh)
	if err != nil {
		respondError(c, err)
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fh.Filename
	}
	src, err := run(c.Request.Context(), ingest.FileRequest{
		Path:        path,
		Title:       title,
		Description: c.PostForm("description"),
		Language:    c.PostForm("language"),
	})
	if src == nil && err != nil {
		// Nothing references the file when no record was created.
		os.Remove(path)
	}
	s.respondIngested(c, src, err)
}

func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.ingest.SaveUpload(fh.Filename, f)
}

// respondIngested writes 201 with the source, or the error. A pipeline
// failure after the record was created is reported with the source id.
func (s *Server) respondIngested(c *gin.Context, src *store.ContentSource, err error) {
	if err == nil {
		c.JSON(http.StatusCreated, newSourceView(src, s.chunksOf(c, src.ID)))
		return
	}
	if src == nil {
		respondError(c, err)
		return
	}
	status, code := classify(err)
	if status == http.StatusInternalServerError && code == codeInternal {
		status, code = http.StatusBadGateway, codeUpstream
	}
	respondErrorEnvelope(c, status, apiError{Message: err.Error(), Code: code, SourceID: src.ID}, err)
}

func (s *Server) chunksOf(c *gin.Context, sourceID int) []store.Chunk {
	chunks, err := s.sources.Chunks(c.Request.Context(), sourceID)
	if err != nil {
		s.log.Warn("load chunks", "source_id", sourceID, "error", err)
		return nil
	}
	return chunks
}

// GET /api/sources/:id
func (s *Server) getSource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	src, err := s.sources.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	chunks, err := s.sources.Chunks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSourceView(src, chunks))
}

// DELETE /api/sources/:id
func (s *Server) deleteSource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.sources.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sources/:id/retry
func (s *Server) retrySource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	src, err := s.ingest.Retry(c.Request.Context(), id)
	if err == nil {
		c.JSON(http.StatusOK, newSourceView(src, s.chunksOf(c, src.ID)))
		return
	}
	s.respondIngested(c, src, err)
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name+": "+c.Param(name))
		return 0, false
	}
	return id, true
}

// Package server exposes ingestion and quiz operations over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizsmith/internal/ingest"
	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/quiz"
	"github.com/abhisek/quizsmith/internal/store"
)

// Config holds HTTP listener settings.
type Config struct {
	Addr           string
	AllowOrigins   []string
	MaxUploadBytes int64
	// ShutdownTimeout bounds how long Run waits for in-flight requests.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr: ":8000",
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		MaxUploadBytes:  200 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFromEnv builds a Config from QUIZSMITH_HTTP_* variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if a := os.Getenv("QUIZSMITH_HTTP_ADDR"); a != "" {
		cfg.Addr = a
	}
	if o := os.Getenv("QUIZSMITH_CORS_ORIGINS"); o != "" {
		cfg.AllowOrigins = nil
		for _, origin := range strings.Split(o, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
			}
		}
	}
	if mb := os.Getenv("QUIZSMITH_MAX_UPLOAD_MB"); mb != "" {
		if n, err := strconv.ParseInt(mb, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n << 20
		}
	}
	return cfg
}

// Validate checks that the listener settings are usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("QUIZSMITH_HTTP_ADDR must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	return nil
}

// Server wires the HTTP routes to the ingestion and quiz services.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	ingest  *ingest.Service
	sources store.SourceRepo
	quizzes *quiz.Service
	log     *logger.Logger
}

// New builds the gin engine and registers every route.
func New(cfg Config, ing *ingest.Service, sources store.SourceRepo, quizzes *quiz.Service, log *logger.Logger) *Server {
	log = logger.OrNop(log).With("component", "http")
	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		ingest:  ing,
		sources: sources,
		quizzes: quizzes,
		log:     log,
	}
	s.engine.Use(gin.Recovery(), requestID(), requestLogger(log), corsMiddleware(cfg.AllowOrigins))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.GET("/sources", s.listSources)
		api.POST("/sources/youtube", s.createYouTubeSource)
		api.POST("/sources/audio", s.createAudioSource)
		api.POST("/sources/document", s.createDocumentSource)
		api.GET("/sources/:id", s.getSource)
		api.DELETE("/sources/:id", s.deleteSource)
		api.POST("/sources/:id/retry", s.retrySource)

		api.GET("/quizzes", s.listQuizzes)
		api.POST("/quizzes", s.createQuiz)
		api.GET("/quizzes/:id", s.getQuiz)
		api.DELETE("/quizzes/:id", s.deleteQuiz)
		api.POST("/quizzes/:id/generate", s.generateQuiz)
		api.POST("/quizzes/:id/questions/:qid/regenerate", s.regenerateQuestion)
		api.POST("/quizzes/:id/questions/:qid/explain", s.explainQuestion)
		api.GET("/quizzes/:id/export.csv", s.exportCSV)
		api.GET("/quizzes/:id/export.json", s.exportJSON)
	}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

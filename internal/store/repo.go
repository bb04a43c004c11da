package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SourceType identifies how a content source's text is obtained.
type SourceType string

const (
	SourceYouTube  SourceType = "YOUTUBE"
	SourceAudio    SourceType = "AUDIO"
	SourceDocument SourceType = "DOCUMENT"
)

// Status is the processing state shared by content sources and quizzes.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
	StatusFailed     Status = "FAILED"
)

// ContentSource is one ingested unit of raw material.
type ContentSource struct {
	ID           int
	Type         SourceType
	Title        string
	Description  string
	Locator      string // YouTube URL or local file path
	Language     string
	RawText      string
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Chunk is a bounded slice of a source's normalized text.
type Chunk struct {
	ID         int
	SourceID   int
	Index      int // 1-based, contiguous per source
	Text       string
	TokenCount int

	// SourceTitle is populated by SourceRepo.ChunksForSources.
	SourceTitle string
}

// Quiz is a generated set of questions over a snapshot of content sources.
type Quiz struct {
	ID                 int
	Title              string
	Settings           json.RawMessage
	CustomInstructions string
	OutputJSON         json.RawMessage // nil until the first generation
	Status             Status
	ErrorMessage       string
	SourceIDs          []int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Question belongs to a quiz. Index is not unique; regeneration rewrites
// a question in place and never reassigns it.
type Question struct {
	ID            int
	QuizID        int
	Index         int
	Type          string
	Prompt        string
	BloomLevel    string
	Difficulty    string
	Explanation   string
	CorrectAnswer string
	Metadata      json.RawMessage
	Choices       []Choice
}

// Choice is one labeled option of a question. IsCorrect is derived from the
// question's CorrectAnswer whenever choices are written; values supplied by
// callers are ignored.
type Choice struct {
	ID         int
	QuestionID int
	Label      string
	Text       string
	IsCorrect  bool
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	Purpose   string    // exact purpose match
	RequestID string    // exact request id match
	From      time.Time // timestamp >= From
}

// SourceRepo manages content sources and their chunks.
type SourceRepo interface {
	Create(ctx context.Context, src *ContentSource) error
	Get(ctx context.Context, id int) (*ContentSource, error)
	List(ctx context.Context, limit int) ([]ContentSource, error)
	// GetMany returns the sources with the given ids that exist, ordered by id.
	GetMany(ctx context.Context, ids []int) ([]ContentSource, error)
	SetRawText(ctx context.Context, id int, raw string) error
	SetStatus(ctx context.Context, id int, status Status, errMsg string) error
	Delete(ctx context.Context, id int) error

	// SaveChunks inserts chunks for a source in one transaction.
	SaveChunks(ctx context.Context, sourceID int, chunks []Chunk) error
	DeleteChunks(ctx context.Context, sourceID int) error
	Chunks(ctx context.Context, sourceID int) ([]Chunk, error)
	// ChunksForSources returns chunks ordered by source id, then index.
	ChunksForSources(ctx context.Context, sourceIDs []int) ([]Chunk, error)
}

// QuizRepo manages quizzes, their questions and choices.
type QuizRepo interface {
	// Create inserts the quiz and links it to q.SourceIDs.
	Create(ctx context.Context, q *Quiz) error
	Get(ctx context.Context, id int) (*Quiz, error)
	List(ctx context.Context, limit int) ([]Quiz, error)
	SetStatus(ctx context.Context, id int, status Status, errMsg string) error
	Delete(ctx context.Context, id int) error

	// ReplaceQuestions atomically deletes every question of the quiz and
	// inserts qs, storing output verbatim as the quiz's output_json and
	// marking the quiz READY.
	ReplaceQuestions(ctx context.Context, quizID int, output json.RawMessage, qs []Question) error
	Questions(ctx context.Context, quizID int) ([]Question, error)
	GetQuestion(ctx context.Context, quizID, questionID int) (*Question, error)
	// UpdateQuestion overwrites the question's fields and replaces its choices.
	UpdateQuestion(ctx context.Context, q *Question) error
	SetExplanation(ctx context.Context, questionID int, explanation string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	RequestID    string // inbound HTTP request id, empty for CLI calls
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

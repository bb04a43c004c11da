package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableSources     = "content_sources"
	tableChunks      = "content_chunks"
	tableQuizzes     = "quizzes"
	tableQuizSources = "quiz_sources"
	tableQuestions   = "questions"
	tableChoices     = "choices"
	tableLLMEvents   = "llm_request_events"
)

var statusEnums = []string{string(StatusProcessing), string(StatusReady), string(StatusFailed)}

var (
	// ContentSourcesColumns holds the columns for the "content_sources" table.
	ContentSourcesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "type", Type: field.TypeEnum, Enums: []string{string(SourceYouTube), string(SourceAudio), string(SourceDocument)}},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "locator", Type: field.TypeString, Default: ""},
		{Name: "language", Type: field.TypeString, Default: ""},
		{Name: "raw_text", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "status", Type: field.TypeEnum, Enums: statusEnums, Default: string(StatusProcessing)},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ContentSourcesTable holds the schema information for the "content_sources" table.
	ContentSourcesTable = &schema.Table{
		Name:       tableSources,
		Columns:    ContentSourcesColumns,
		PrimaryKey: []*schema.Column{ContentSourcesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "contentsource_status", Unique: false, Columns: []*schema.Column{ContentSourcesColumns[7]}},
		},
	}

	// ContentChunksColumns holds the columns for the "content_chunks" table.
	ContentChunksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chunk_index", Type: field.TypeInt},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "token_count", Type: field.TypeInt, Default: 0},
		{Name: "source_id", Type: field.TypeInt},
	}
	// ContentChunksTable holds the schema information for the "content_chunks" table.
	ContentChunksTable = &schema.Table{
		Name:       tableChunks,
		Columns:    ContentChunksColumns,
		PrimaryKey: []*schema.Column{ContentChunksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "content_chunks_content_sources_chunks",
				Columns:    []*schema.Column{ContentChunksColumns[4]},
				RefColumns: []*schema.Column{ContentSourcesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "contentchunk_source_id_chunk_index", Unique: true, Columns: []*schema.Column{ContentChunksColumns[4], ContentChunksColumns[1]}},
		},
	}

	// QuizzesColumns holds the columns for the "quizzes" table.
	QuizzesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "settings", Type: field.TypeJSON},
		{Name: "custom_instructions", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "output_json", Type: field.TypeJSON, Nullable: true},
		{Name: "status", Type: field.TypeEnum, Enums: statusEnums, Default: string(StatusProcessing)},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// QuizzesTable holds the schema information for the "quizzes" table.
	QuizzesTable = &schema.Table{
		Name:       tableQuizzes,
		Columns:    QuizzesColumns,
		PrimaryKey: []*schema.Column{QuizzesColumns[0]},
	}

	// QuizSourcesColumns holds the columns for the "quiz_sources" join table.
	QuizSourcesColumns = []*schema.Column{
		{Name: "quiz_id", Type: field.TypeInt},
		{Name: "source_id", Type: field.TypeInt},
	}
	// QuizSourcesTable holds the schema information for the "quiz_sources" table.
	QuizSourcesTable = &schema.Table{
		Name:       tableQuizSources,
		Columns:    QuizSourcesColumns,
		PrimaryKey: []*schema.Column{QuizSourcesColumns[0], QuizSourcesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_sources_quiz_id",
				Columns:    []*schema.Column{QuizSourcesColumns[0]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "quiz_sources_source_id",
				Columns:    []*schema.Column{QuizSourcesColumns[1]},
				RefColumns: []*schema.Column{ContentSourcesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "question_index", Type: field.TypeInt},
		{Name: "type", Type: field.TypeString},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "bloom_level", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeString, Default: ""},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "correct_answer", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "metadata", Type: field.TypeJSON, Nullable: true},
		{Name: "quiz_id", Type: field.TypeInt},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_quizzes_questions",
				Columns:    []*schema.Column{QuestionsColumns[9]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "question_quiz_id_question_index", Unique: false, Columns: []*schema.Column{QuestionsColumns[9], QuestionsColumns[1]}},
		},
	}

	// ChoicesColumns holds the columns for the "choices" table.
	ChoicesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "label", Type: field.TypeString, Size: 5},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "is_correct", Type: field.TypeBool, Default: false},
		{Name: "question_id", Type: field.TypeInt},
	}
	// ChoicesTable holds the schema information for the "choices" table.
	ChoicesTable = &schema.Table{
		Name:       tableChoices,
		Columns:    ChoicesColumns,
		PrimaryKey: []*schema.Column{ChoicesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "choices_questions_choices",
				Columns:    []*schema.Column{ChoicesColumns[4]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "request_id", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Unique: false, Columns: []*schema.Column{LlmRequestEventsColumns[4]}},
			{Name: "llmrequestevent_timestamp", Unique: false, Columns: []*schema.Column{LlmRequestEventsColumns[1]}},
			{Name: "llmrequestevent_request_id", Unique: false, Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ContentSourcesTable,
		ContentChunksTable,
		QuizzesTable,
		QuizSourcesTable,
		QuestionsTable,
		ChoicesTable,
		LlmRequestEventsTable,
	}
)

func init() {
	ContentChunksTable.ForeignKeys[0].RefTable = ContentSourcesTable
	QuizSourcesTable.ForeignKeys[0].RefTable = QuizzesTable
	QuizSourcesTable.ForeignKeys[1].RefTable = ContentSourcesTable
	QuestionsTable.ForeignKeys[0].RefTable = QuizzesTable
	ChoicesTable.ForeignKeys[0].RefTable = QuestionsTable
}

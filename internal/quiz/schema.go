package quiz

import "github.com/abhisek/quizsmith/internal/llm"

// The schemas below are sent in strict structured-output mode, so every
// object lists all of its properties as required, forbids extra keys, and
// marks optional values nullable instead.

var questionTypeEnum = []any{"MCQ", "FRQ", "TRUE_FALSE", "CLOZE", "MATCHING", "REASONING"}

var nullableString = map[string]any{"type": []any{"string", "null"}}

var choiceSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"label": map[string]any{"type": "string"},
		"text":  map[string]any{"type": "string"},
	},
	"required":             []any{"label", "text"},
	"additionalProperties": false,
}

var matchingPairSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"left":  map[string]any{"type": "string"},
		"right": map[string]any{"type": "string"},
	},
	"required":             []any{"left", "right"},
	"additionalProperties": false,
}

// questionSchema describes one question object.
var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"index": map[string]any{
			"type":        "integer",
			"description": "1-based position of the question in the quiz",
		},
		"type": map[string]any{
			"type": "string",
			"enum": questionTypeEnum,
		},
		"prompt": map[string]any{
			"type":        "string",
			"description": "Clear standalone question text",
		},
		"difficulty":  nullableString,
		"bloom_level": nullableString,
		"correct_answer": map[string]any{
			"type":        []any{"string", "null"},
			"description": "For MCQ, the label of the correct choice such as A",
		},
		"choices": map[string]any{
			"type":        "array",
			"items":       choiceSchema,
			"description": "Answer options; empty for non-MCQ questions",
		},
		"explanation": nullableString,
		"matching_pairs": map[string]any{
			"type":        []any{"array", "null"},
			"items":       matchingPairSchema,
			"description": "Pairs to match for MATCHING questions, otherwise null",
		},
	},
	"required": []any{
		"index", "type", "prompt", "difficulty", "bloom_level",
		"correct_answer", "choices", "explanation", "matching_pairs",
	},
	"additionalProperties": false,
}

var settingsSchema = map[string]any{
	"type":        "object",
	"description": "The settings the quiz was generated with",
	"properties": map[string]any{
		"num_questions": map[string]any{"type": "integer"},
		"question_types": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "enum": questionTypeEnum},
		},
		"difficulty":  nullableString,
		"bloom_level": nullableString,
	},
	"required":             []any{"num_questions", "question_types", "difficulty", "bloom_level"},
	"additionalProperties": false,
}

// QuizSchema validates a full generated quiz.
var QuizSchema = &llm.Schema{
	Name:        "quiz-output",
	Description: "A quiz with a title, the settings it was generated with and its questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string"},
			"settings": settingsSchema,
			"questions": map[string]any{
				"type":  "array",
				"items": questionSchema,
			},
		},
		"required":             []any{"title", "settings", "questions"},
		"additionalProperties": false,
	},
}

// RegeneratedQuestionSchema validates a single regenerated question.
var RegeneratedQuestionSchema = &llm.Schema{
	Name:        "regenerated-question",
	Description: "One replacement quiz question",
	Definition:  questionSchema,
}

// ExplanationSchema validates an explanation reply.
var ExplanationSchema = &llm.Schema{
	Name:        "question-explanation",
	Description: "A student-facing explanation of a quiz question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string"},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

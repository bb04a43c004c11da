package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var quizColumns = []string{
	"id", "title", "settings", "custom_instructions", "output_json",
	"status", "error_message", "created_at", "updated_at",
}

var questionColumns = []string{
	"id", "quiz_id", "question_index", "type", "prompt", "bloom_level",
	"difficulty", "explanation", "correct_answer", "metadata",
}

// quizRepo implements QuizRepo with the SQL dialect builder.
type quizRepo struct {
	db *sql.DB
}

func (r *quizRepo) Create(ctx context.Context, q *Quiz) error {
	now := time.Now().UTC()
	if q.Status == "" {
		q.Status = StatusProcessing
	}
	settings := q.Settings
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		id, err := insert(ctx, tx, sqlite.Insert(tableQuizzes).
			Columns("title", "settings", "custom_instructions", "output_json", "status", "error_message", "created_at", "updated_at").
			Values(q.Title, string(settings), q.CustomInstructions, nullJSON(q.OutputJSON), string(q.Status), q.ErrorMessage, now, now))
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}

		if len(q.SourceIDs) > 0 {
			link := sqlite.Insert(tableQuizSources).Columns("quiz_id", "source_id")
			for _, sid := range q.SourceIDs {
				link.Values(id, sid)
			}
			if _, err := exec(ctx, tx, link); err != nil {
				return fmt.Errorf("link quiz sources: %w", err)
			}
		}

		q.ID = id
		q.Settings = settings
		q.CreatedAt = now
		q.UpdatedAt = now
		return nil
	})
}

func (r *quizRepo) Get(ctx context.Context, id int) (*Quiz, error) {
	quizzes, err := r.query(ctx, sqlite.Select(quizColumns...).
		From(sqlite.Table(tableQuizzes)).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("get quiz %d: %w", id, err)
	}
	if len(quizzes) == 0 {
		return nil, fmt.Errorf("quiz %d: %w", id, ErrNotFound)
	}
	q := &quizzes[0]

	q.SourceIDs, err = r.sourceIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quizRepo) List(ctx context.Context, limit int) ([]Quiz, error) {
	sel := sqlite.Select(quizColumns...).
		From(sqlite.Table(tableQuizzes)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	quizzes, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *quizRepo) SetStatus(ctx context.Context, id int, status Status, errMsg string) error {
	n, err := exec(ctx, r.db, sqlite.Update(tableQuizzes).
		Set("status", string(status)).
		Set("error_message", errMsg).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("update quiz %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("quiz %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *quizRepo) Delete(ctx context.Context, id int) error {
	n, err := exec(ctx, r.db, sqlite.Delete(tableQuizzes).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete quiz %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("quiz %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *quizRepo) ReplaceQuestions(ctx context.Context, quizID int, output json.RawMessage, qs []Question) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		n, err := exec(ctx, tx, sqlite.Update(tableQuizzes).
			Set("output_json", nullJSON(output)).
			Set("status", string(StatusReady)).
			Set("error_message", "").
			Set("updated_at", time.Now().UTC()).
			Where(entsql.EQ("id", quizID)))
		if err != nil {
			return fmt.Errorf("store output json: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("quiz %d: %w", quizID, ErrNotFound)
		}

		// Choices go with their questions via ON DELETE CASCADE.
		if _, err := exec(ctx, tx, sqlite.Delete(tableQuestions).Where(entsql.EQ("quiz_id", quizID))); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}

		for i := range qs {
			q := &qs[i]
			q.QuizID = quizID
			id, err := insert(ctx, tx, sqlite.Insert(tableQuestions).
				Columns("quiz_id", "question_index", "type", "prompt", "bloom_level", "difficulty", "explanation", "correct_answer", "metadata").
				Values(quizID, q.Index, q.Type, q.Prompt, q.BloomLevel, q.Difficulty, q.Explanation, q.CorrectAnswer, nullJSON(q.Metadata)))
			if err != nil {
				return fmt.Errorf("insert question %d: %w", q.Index, err)
			}
			q.ID = id
			if err := insertChoices(ctx, tx, q); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *quizRepo) Questions(ctx context.Context, quizID int) ([]Question, error) {
	qs, err := queryQuestions(ctx, r.db, sqlite.Select(questionColumns...).
		From(sqlite.Table(tableQuestions)).
		Where(entsql.EQ("quiz_id", quizID)).
		OrderBy(entsql.Asc("question_index"), entsql.Asc("id")))
	if err != nil {
		return nil, fmt.Errorf("query questions of quiz %d: %w", quizID, err)
	}
	if err := r.attachChoices(ctx, qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *quizRepo) GetQuestion(ctx context.Context, quizID, questionID int) (*Question, error) {
	qs, err := queryQuestions(ctx, r.db, sqlite.Select(questionColumns...).
		From(sqlite.Table(tableQuestions)).
		Where(entsql.And(entsql.EQ("id", questionID), entsql.EQ("quiz_id", quizID))))
	if err != nil {
		return nil, fmt.Errorf("get question %d: %w", questionID, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question %d in quiz %d: %w", questionID, quizID, ErrNotFound)
	}
	if err := r.attachChoices(ctx, qs); err != nil {
		return nil, err
	}
	return &qs[0], nil
}

func (r *quizRepo) UpdateQuestion(ctx context.Context, q *Question) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		n, err := exec(ctx, tx, sqlite.Update(tableQuestions).
			Set("type", q.Type).
			Set("prompt", q.Prompt).
			Set("bloom_level", q.BloomLevel).
			Set("difficulty", q.Difficulty).
			Set("explanation", q.Explanation).
			Set("correct_answer", q.CorrectAnswer).
			Set("metadata", nullJSON(q.Metadata)).
			Where(entsql.EQ("id", q.ID)))
		if err != nil {
			return fmt.Errorf("update question %d: %w", q.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("question %d: %w", q.ID, ErrNotFound)
		}
		if _, err := exec(ctx, tx, sqlite.Delete(tableChoices).Where(entsql.EQ("question_id", q.ID))); err != nil {
			return fmt.Errorf("delete choices of question %d: %w", q.ID, err)
		}
		return insertChoices(ctx, tx, q)
	})
}

func (r *quizRepo) SetExplanation(ctx context.Context, questionID int, explanation string) error {
	n, err := exec(ctx, r.db, sqlite.Update(tableQuestions).
		Set("explanation", explanation).
		Where(entsql.EQ("id", questionID)))
	if err != nil {
		return fmt.Errorf("update explanation of question %d: %w", questionID, err)
	}
	if n == 0 {
		return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	return nil
}

// insertChoices writes q.Choices, deriving IsCorrect from q.CorrectAnswer.
func insertChoices(ctx context.Context, tx *sql.Tx, q *Question) error {
	for i := range q.Choices {
		c := &q.Choices[i]
		c.QuestionID = q.ID
		c.IsCorrect = c.Label == q.CorrectAnswer
		id, err := insert(ctx, tx, sqlite.Insert(tableChoices).
			Columns("question_id", "label", "text", "is_correct").
			Values(q.ID, c.Label, c.Text, c.IsCorrect))
		if err != nil {
			return fmt.Errorf("insert choice %q of question %d: %w", c.Label, q.ID, err)
		}
		c.ID = id
	}
	return nil
}

func (r *quizRepo) attachChoices(ctx context.Context, qs []Question) error {
	if len(qs) == 0 {
		return nil
	}
	byID := make(map[int]*Question, len(qs))
	ids := make([]int, len(qs))
	for i := range qs {
		byID[qs[i].ID] = &qs[i]
		ids[i] = qs[i].ID
	}

	query, args := sqlite.Select("id", "question_id", "label", "text", "is_correct").
		From(sqlite.Table(tableChoices)).
		Where(entsql.In("question_id", intsToAny(ids)...)).
		OrderBy(entsql.Asc("question_id"), entsql.Asc("label"), entsql.Asc("id")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Label, &c.Text, &c.IsCorrect); err != nil {
			return fmt.Errorf("scan choice: %w", err)
		}
		if q, ok := byID[c.QuestionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}
	return rows.Err()
}

func (r *quizRepo) sourceIDs(ctx context.Context, quizID int) ([]int, error) {
	query, args := sqlite.Select("source_id").
		From(sqlite.Table(tableQuizSources)).
		Where(entsql.EQ("quiz_id", quizID)).
		OrderBy(entsql.Asc("source_id")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz sources: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan quiz source: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *quizRepo) query(ctx context.Context, sel *entsql.Selector) ([]Quiz, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Quiz
	for rows.Next() {
		var (
			q                Quiz
			settings, output sql.NullString
			status           string
		)
		if err := rows.Scan(&q.ID, &q.Title, &settings, &q.CustomInstructions, &output,
			&status, &q.ErrorMessage, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		q.Settings = rawJSON(settings)
		q.OutputJSON = rawJSON(output)
		q.Status = Status(status)
		out = append(out, q)
	}
	return out, rows.Err()
}

func queryQuestions(ctx context.Context, ex execer, sel *entsql.Selector) ([]Question, error) {
	query, args := sel.Query()
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			q        Question
			metadata sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Index, &q.Type, &q.Prompt, &q.BloomLevel,
			&q.Difficulty, &q.Explanation, &q.CorrectAnswer, &metadata); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Metadata = rawJSON(metadata)
		out = append(out, q)
	}
	return out, rows.Err()
}

// nullJSON maps an empty document to SQL NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rawJSON(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}

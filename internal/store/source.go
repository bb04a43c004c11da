package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var sourceColumns = []string{
	"id", "type", "title", "description", "locator", "language",
	"raw_text", "status", "error_message", "created_at", "updated_at",
}

// sourceRepo implements SourceRepo with the SQL dialect builder.
type sourceRepo struct {
	db *sql.DB
}

func (r *sourceRepo) Create(ctx context.Context, src *ContentSource) error {
	now := time.Now().UTC()
	if src.Status == "" {
		src.Status = StatusProcessing
	}
	id, err := insert(ctx, r.db, sqlite.Insert(tableSources).
		Columns("type", "title", "description", "locator", "language", "raw_text", "status", "error_message", "created_at", "updated_at").
		Values(string(src.Type), src.Title, src.Description, src.Locator, src.Language, src.RawText, string(src.Status), src.ErrorMessage, now, now))
	if err != nil {
		return fmt.Errorf("insert content source: %w", err)
	}
	src.ID = id
	src.CreatedAt = now
	src.UpdatedAt = now
	return nil
}

func (r *sourceRepo) Get(ctx context.Context, id int) (*ContentSource, error) {
	srcs, err := r.query(ctx, sqlite.Select(sourceColumns...).
		From(sqlite.Table(tableSources)).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("get content source %d: %w", id, err)
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("content source %d: %w", id, ErrNotFound)
	}
	return &srcs[0], nil
}

func (r *sourceRepo) List(ctx context.Context, limit int) ([]ContentSource, error) {
	sel := sqlite.Select(sourceColumns...).
		From(sqlite.Table(tableSources)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	srcs, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list content sources: %w", err)
	}
	return srcs, nil
}

func (r *sourceRepo) GetMany(ctx context.Context, ids []int) ([]ContentSource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	srcs, err := r.query(ctx, sqlite.Select(sourceColumns...).
		From(sqlite.Table(tableSources)).
		Where(entsql.In("id", intsToAny(ids)...)).
		OrderBy(entsql.Asc("id")))
	if err != nil {
		return nil, fmt.Errorf("get content sources: %w", err)
	}
	return srcs, nil
}

func (r *sourceRepo) SetRawText(ctx context.Context, id int, raw string) error {
	return r.update(ctx, id, sqlite.Update(tableSources).
		Set("raw_text", raw).
		Set("updated_at", time.Now().UTC()))
}

func (r *sourceRepo) SetStatus(ctx context.Context, id int, status Status, errMsg string) error {
	return r.update(ctx, id, sqlite.Update(tableSources).
		Set("status", string(status)).
		Set("error_message", errMsg).
		Set("updated_at", time.Now().UTC()))
}

func (r *sourceRepo) update(ctx context.Context, id int, u *entsql.UpdateBuilder) error {
	n, err := exec(ctx, r.db, u.Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("update content source %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("content source %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sourceRepo) Delete(ctx context.Context, id int) error {
	n, err := exec(ctx, r.db, sqlite.Delete(tableSources).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete content source %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("content source %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sourceRepo) SaveChunks(ctx context.Context, sourceID int, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		ins := sqlite.Insert(tableChunks).Columns("source_id", "chunk_index", "text", "token_count")
		for _, c := range chunks {
			ins.Values(sourceID, c.Index, c.Text, c.TokenCount)
		}
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert chunks for source %d: %w", sourceID, err)
		}
		return nil
	})
}

func (r *sourceRepo) DeleteChunks(ctx context.Context, sourceID int) error {
	if _, err := exec(ctx, r.db, sqlite.Delete(tableChunks).Where(entsql.EQ("source_id", sourceID))); err != nil {
		return fmt.Errorf("delete chunks for source %d: %w", sourceID, err)
	}
	return nil
}

func (r *sourceRepo) Chunks(ctx context.Context, sourceID int) ([]Chunk, error) {
	return r.ChunksForSources(ctx, []int{sourceID})
}

func (r *sourceRepo) ChunksForSources(ctx context.Context, sourceIDs []int) ([]Chunk, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	// Both tables carry an alias; an unaliased join target is renamed by the builder.
	c := sqlite.Table(tableChunks).As("c")
	s := sqlite.Table(tableSources).As("s")
	sel := sqlite.Select(c.C("id"), c.C("source_id"), c.C("chunk_index"), c.C("text"), c.C("token_count"), s.C("title")).
		From(c).
		Join(s).On(c.C("source_id"), s.C("id")).
		Where(entsql.In(c.C("source_id"), intsToAny(sourceIDs)...)).
		OrderBy(entsql.Asc(c.C("source_id")), entsql.Asc(c.C("chunk_index")))

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var ch Chunk
		if err := rows.Scan(&ch.ID, &ch.SourceID, &ch.Index, &ch.Text, &ch.TokenCount, &ch.SourceTitle); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r *sourceRepo) query(ctx context.Context, sel *entsql.Selector) ([]ContentSource, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContentSource
	for rows.Next() {
		var (
			src         ContentSource
			typ, status string
		)
		if err := rows.Scan(&src.ID, &typ, &src.Title, &src.Description, &src.Locator, &src.Language,
			&src.RawText, &status, &src.ErrorMessage, &src.CreatedAt, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content source: %w", err)
		}
		src.Type = SourceType(typ)
		src.Status = Status(status)
		out = append(out, src)
	}
	return out, rows.Err()
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func intsToAny(ids []int) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ContentChunk is a bounded slice of a source's normalized text.
type ContentChunk struct {
	ent.Schema
}

func (ContentChunk) Fields() []ent.Field {
	return []ent.Field{
		field.Int("chunk_index").
			Positive().
			Comment("1-based, contiguous per source"),
		field.Text("text"),
		field.Int("token_count").
			Default(0).
			Comment("Word-count estimate"),
		field.Int("source_id"),
	}
}

func (ContentChunk) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("source", ContentSource.Type).
			Ref("chunks").
			Field("source_id").
			Unique().
			Required(),
	}
}

func (ContentChunk) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("source_id", "chunk_index").Unique(),
	}
}

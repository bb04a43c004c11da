package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ContentSource is one ingested unit of raw material reduced to text.
type ContentSource struct {
	ent.Schema
}

func (ContentSource) Mixin() []ent.Mixin {
	return []ent.Mixin{TimestampMixin{}}
}

func (ContentSource) Fields() []ent.Field {
	return []ent.Field{
		field.Enum("type").
			Values("YOUTUBE", "AUDIO", "DOCUMENT"),
		field.String("title").
			Default(""),
		field.Text("description").
			Default(""),
		field.String("locator").
			Default("").
			Comment("YouTube URL or local file path"),
		field.String("language").
			Default("").
			Comment("Language hint supplied at ingestion"),
		field.Text("raw_text").
			Default(""),
		field.Enum("status").
			Values("PROCESSING", "READY", "FAILED").
			Default("PROCESSING"),
		field.Text("error_message").
			Default(""),
	}
}

func (ContentSource) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("chunks", ContentChunk.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.From("quizzes", Quiz.Type).
			Ref("sources"),
	}
}

func (ContentSource) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
	}
}

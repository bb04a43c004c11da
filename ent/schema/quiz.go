package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Quiz is a generated question set over a snapshot of content sources.
type Quiz struct {
	ent.Schema
}

func (Quiz) Mixin() []ent.Mixin {
	return []ent.Mixin{TimestampMixin{}}
}

func (Quiz) Fields() []ent.Field {
	return []ent.Field{
		field.String("title").
			NotEmpty(),
		field.JSON("settings", map[string]any{}).
			Comment("num_questions, question_types, difficulty, bloom_level and extras"),
		field.Text("custom_instructions").
			Default(""),
		field.JSON("output_json", map[string]any{}).
			Optional().
			Comment("Last raw generator response"),
		field.Enum("status").
			Values("PROCESSING", "READY", "FAILED").
			Default("PROCESSING"),
		field.Text("error_message").
			Default(""),
	}
}

func (Quiz) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("sources", ContentSource.Type).
			StorageKey(edge.Table("quiz_sources"), edge.Columns("quiz_id", "source_id")),
		edge.To("questions", Question.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

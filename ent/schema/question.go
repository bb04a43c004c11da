package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question belongs to a quiz. Its index is rewritten in place on
// regeneration and is not unique.
type Question struct {
	ent.Schema
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.Int("question_index"),
		field.String("type").
			Comment("MCQ, FRQ, TRUE_FALSE, CLOZE, MATCHING, REASONING"),
		field.Text("prompt"),
		field.String("bloom_level").
			Default(""),
		field.String("difficulty").
			Default(""),
		field.Text("explanation").
			Default(""),
		field.Text("correct_answer").
			Default("").
			Comment("For MCQ, the label of the correct choice"),
		field.JSON("metadata", map[string]any{}).
			Optional(),
		field.Int("quiz_id"),
	}
}

func (Question) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("quiz", Quiz.Type).
			Ref("questions").
			Field("quiz_id").
			Unique().
			Required(),
		edge.To("choices", Choice.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("quiz_id", "question_index"),
	}
}

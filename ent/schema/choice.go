package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Choice is one labeled option of a question.
type Choice struct {
	ent.Schema
}

func (Choice) Fields() []ent.Field {
	return []ent.Field{
		field.String("label").
			MaxLen(5),
		field.Text("text"),
		field.Bool("is_correct").
			Default(false).
			Comment("Derived from the question's correct_answer on every write"),
		field.Int("question_id"),
	}
}

func (Choice) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("question", Question.Type).
			Ref("choices").
			Field("question_id").
			Unique().
			Required(),
	}
}

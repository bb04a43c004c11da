package llm

import "context"

// Purpose labels recorded on every audit event.
const (
	PurposeQuizGen         = "quiz-gen"
	PurposeQuestionRegen   = "question-regen"
	PurposeQuestionExplain = "question-explain"
	purposeUnknown         = "unknown"
)

type (
	purposeKey   struct{}
	requestIDKey struct{}
)

// WithPurpose labels every LLM call made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return purposeUnknown
}

// WithRequestID ties LLM calls to the inbound request that caused them so
// audit events can be correlated with access logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings(json.RawMessage(`{"num_questions":"7","question_types":["MCQ","FRQ"],"difficulty":"hard","language":"az","weights":{"a":1}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.NumQuestions != 7 {
		t.Errorf("NumQuestions = %d", s.NumQuestions)
	}
	if len(s.QuestionTypes) != 2 || s.QuestionTypes[1] != TypeFRQ {
		t.Errorf("QuestionTypes = %v", s.QuestionTypes)
	}
	if s.Difficulty != "hard" || s.BloomLevel != "" {
		t.Errorf("difficulty/bloom = %q/%q", s.Difficulty, s.BloomLevel)
	}
	if s.Extra["language"] != "az" {
		t.Errorf("Extra = %v", s.Extra)
	}
}

func TestParseSettings_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `[1,2]`},
		{"malformed", `{`},
		{"missing num_questions", `{"question_types":["MCQ"]}`},
		{"missing question_types", `{"num_questions":3}`},
		{"unknown type", `{"num_questions":3,"question_types":["ESSAY"]}`},
		{"negative count", `{"num_questions":-1,"question_types":["MCQ"]}`},
		{"count not numeric", `{"num_questions":"many","question_types":["MCQ"]}`},
		{"too many", `{"num_questions":101,"question_types":["MCQ"]}`},
		{"huge count", `{"num_questions":1e13,"question_types":["MCQ"]}`},
		{"huge string count", `{"num_questions":"10000000000000","question_types":["MCQ"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings(json.RawMessage(tt.raw))
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSettings_WithDefaults(t *testing.T) {
	s := Settings{}.WithDefaults()
	if s.NumQuestions != 5 || len(s.QuestionTypes) != 1 || s.QuestionTypes[0] != TypeMCQ {
		t.Fatalf("defaults = %+v", s)
	}
	if s.Difficulty != "medium" || s.BloomLevel != "understand" {
		t.Fatalf("defaults = %+v", s)
	}

	kept := Settings{NumQuestions: 2, Difficulty: "easy"}.WithDefaults()
	if kept.NumQuestions != 2 || kept.Difficulty != "easy" {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}

	if capped := (Settings{NumQuestions: 1 << 40}).WithDefaults(); capped.NumQuestions != MaxNumQuestions {
		t.Fatalf("NumQuestions = %d, want %d", capped.NumQuestions, MaxNumQuestions)
	}
}

func TestSettings_RoundTripKeepsExtra(t *testing.T) {
	var s Settings
	if err := json.Unmarshal([]byte(`{"num_questions":3,"question_types":["CLOZE"],"audience":"grade 9"}`), &s); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	json.Unmarshal(b, &back)
	if back["audience"] != "grade 9" || back["num_questions"] != float64(3) {
		t.Fatalf("round trip = %s", b)
	}
	if _, ok := back["difficulty"]; ok {
		t.Error("absent difficulty should stay absent")
	}
}

func TestMetadataMerge(t *testing.T) {
	existing := Metadata{"source": "ch1", "tags": []any{"x"}}

	got := existing.Merge(Metadata{"tags": []any{"y"}}, nil)
	if got["source"] != "ch1" {
		t.Error("existing keys should be kept")
	}
	if tags := got["tags"].([]any); tags[0] != "y" {
		t.Error("new keys should win")
	}
	if v, ok := got["matching_pairs"]; !ok || v != nil {
		t.Errorf("matching_pairs should be present and null, got %v, %v", v, ok)
	}

	pairs := []any{map[string]any{"left": "H2O", "right": "water"}}
	got = existing.Merge(nil, pairs)
	if got["matching_pairs"] == nil {
		t.Error("matching_pairs should come from the payload")
	}
	if _, ok := existing["matching_pairs"]; ok {
		t.Error("Merge must not modify the receiver")
	}
}

func TestValidationError(t *testing.T) {
	err := error(&ValidationError{Message: "some content sources are not ready yet", NotReadyIDs: []int{3, 5}})
	if !errors.Is(err, ErrValidation) {
		t.Fatal("ValidationError should match ErrValidation")
	}
	if err.Error() != "some content sources are not ready yet (not ready: 3, 5)" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

package quiz

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// QuestionType tags the answer format of a question.
type QuestionType string

const (
	TypeMCQ       QuestionType = "MCQ"
	TypeFRQ       QuestionType = "FRQ"
	TypeTrueFalse QuestionType = "TRUE_FALSE"
	TypeCloze     QuestionType = "CLOZE"
	TypeMatching  QuestionType = "MATCHING"
	TypeReasoning QuestionType = "REASONING"
)

// QuestionTypes lists every supported type in display order.
var QuestionTypes = []QuestionType{TypeMCQ, TypeFRQ, TypeTrueFalse, TypeCloze, TypeMatching, TypeReasoning}

// Valid reports whether t is a supported question type.
func (t QuestionType) Valid() bool {
	return slices.Contains(QuestionTypes, t)
}

// Settings is the typed view of a quiz's settings JSON. Keys the generator
// does not read are kept in Extra and written back unchanged.
type Settings struct {
	NumQuestions  int
	QuestionTypes []QuestionType
	Difficulty    string
	BloomLevel    string
	Extra         map[string]any
}

// Defaults applied by WithDefaults.
const (
	DefaultNumQuestions = 5
	MaxNumQuestions     = 100
	DefaultDifficulty   = "medium"
	DefaultBloomLevel   = "understand"
)

// ParseSettings decodes raw and checks the keys a quiz cannot do without.
func ParseSettings(raw json.RawMessage) (Settings, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return Settings{}, invalid("settings must be a JSON object")
	}
	for _, k := range []string{"num_questions", "question_types"} {
		if _, ok := keys[k]; !ok {
			return Settings{}, invalid("settings: %s is required", k)
		}
	}

	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, invalid("settings: %v", err)
	}
	if s.NumQuestions < 0 {
		return Settings{}, invalid("settings: num_questions must not be negative")
	}
	if s.NumQuestions > MaxNumQuestions {
		return Settings{}, invalid("settings: num_questions must be at most %d", MaxNumQuestions)
	}
	for _, t := range s.QuestionTypes {
		if t != "" && !t.Valid() {
			return Settings{}, invalid("settings: unknown question type %q", t)
		}
	}
	return s, nil
}

// WithDefaults fills absent or empty values and caps the question count.
func (s Settings) WithDefaults() Settings {
	if s.NumQuestions <= 0 {
		s.NumQuestions = DefaultNumQuestions
	}
	s.NumQuestions = min(s.NumQuestions, MaxNumQuestions)
	if len(s.QuestionTypes) == 0 {
		s.QuestionTypes = []QuestionType{TypeMCQ}
	}
	if s.Difficulty == "" {
		s.Difficulty = DefaultDifficulty
	}
	if s.BloomLevel == "" {
		s.BloomLevel = DefaultBloomLevel
	}
	return s
}

func (s *Settings) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Settings{}
	for k, v := range raw {
		var err error
		switch k {
		case "num_questions":
			s.NumQuestions, err = parseCount(v)
		case "question_types":
			err = json.Unmarshal(v, &s.QuestionTypes)
		case "difficulty":
			err = json.Unmarshal(v, &s.Difficulty)
		case "bloom_level":
			err = json.Unmarshal(v, &s.BloomLevel)
		default:
			var x any
			err = json.Unmarshal(v, &x)
			if s.Extra == nil {
				s.Extra = make(map[string]any)
			}
			s.Extra[k] = x
		}
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Extra)+4)
	maps.Copy(m, s.Extra)
	if s.NumQuestions != 0 {
		m["num_questions"] = s.NumQuestions
	}
	if s.QuestionTypes != nil {
		m["question_types"] = s.QuestionTypes
	}
	if s.Difficulty != "" {
		m["difficulty"] = s.Difficulty
	}
	if s.BloomLevel != "" {
		m["bloom_level"] = s.BloomLevel
	}
	return json.Marshal(m)
}

// parseCount accepts a JSON number, a numeric string or null.
func parseCount(v json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		if n == "" {
			return 0, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		if math.Abs(f) > math.MaxInt32 {
			return 0, fmt.Errorf("%s is out of range", n)
		}
		return int(f), nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, fmt.Errorf("expected a number")
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// ChunkRef is one piece of source text offered to the generator.
type ChunkRef struct {
	SourceID    int
	SourceTitle string
	Text        string
}

// ChoicePayload is a labeled option as exchanged with the generator.
type ChoicePayload struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuestionPayload is one question as produced by a generator or regenerator.
type QuestionPayload struct {
	Index         int             `json:"index"`
	Type          QuestionType    `json:"type"`
	Prompt        string          `json:"prompt"`
	Difficulty    string          `json:"difficulty"`
	BloomLevel    string          `json:"bloom_level"`
	CorrectAnswer string          `json:"correct_answer"`
	Choices       []ChoicePayload `json:"choices"`
	Explanation   string          `json:"explanation"`
	Metadata      Metadata        `json:"metadata"`

	// MatchingPairs is accepted at the top level of a regenerated question
	// and folded into its metadata.
	MatchingPairs any `json:"matching_pairs,omitempty"`
}

// Output is a generated quiz.
type Output struct {
	Title     string            `json:"title"`
	Settings  json.RawMessage   `json:"settings"`
	Questions []QuestionPayload `json:"questions"`
}

// Metadata holds free-form per-question extras such as matching pairs.
type Metadata map[string]any

// Merge returns m overlaid with pairs, then with next. pairs is always
// recorded under "matching_pairs", as null when absent.
func (m Metadata) Merge(next Metadata, pairs any) Metadata {
	out := make(Metadata, len(m)+len(next)+1)
	maps.Copy(out, m)
	out["matching_pairs"] = pairs
	maps.Copy(out, next)
	return out
}

// metadata returns p.Metadata with any top-level matching pairs folded in.
func (p QuestionPayload) metadata() Metadata {
	if p.MatchingPairs == nil {
		return p.Metadata
	}
	out := make(Metadata, len(p.Metadata)+1)
	maps.Copy(out, p.Metadata)
	out["matching_pairs"] = p.MatchingPairs
	return out
}

func decodeMetadata(raw json.RawMessage) Metadata {
	var m Metadata
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	return m
}

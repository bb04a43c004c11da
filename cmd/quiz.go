package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsmith/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate, refine and export quizzes",
}

var quizCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a quiz over one or more READY sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		sourceIDs, _ := cmd.Flags().GetIntSlice("source")
		instructions, _ := cmd.Flags().GetString("instructions")
		settings, err := settingsFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.quizzes.Create(cmd.Context(), quiz.CreateInput{
			Title:              title,
			SourceIDs:          sourceIDs,
			Settings:           settings,
			CustomInstructions: instructions,
		})
		if d != nil {
			printQuiz(d)
		}
		return err
	},
}

// settingsFromFlags returns --settings verbatim, or builds the settings
// object from the individual flags.
func settingsFromFlags(cmd *cobra.Command) (json.RawMessage, error) {
	if raw, _ := cmd.Flags().GetString("settings"); raw != "" {
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("--settings is not valid JSON")
		}
		return json.RawMessage(raw), nil
	}

	num, _ := cmd.Flags().GetInt("num")
	types, _ := cmd.Flags().GetStringSlice("types")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	bloom, _ := cmd.Flags().GetString("bloom")
	for i, t := range types {
		types[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	return json.Marshal(map[string]any{
		"num_questions":  num,
		"question_types": types,
		"difficulty":     difficulty,
		"bloom_level":    bloom,
	})
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate <quiz-id>",
	Short: "Regenerate every question of a quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "quiz id")
		if err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.quizzes.Generate(cmd.Context(), id)
		if d != nil {
			printQuiz(d)
		}
		return err
	},
}

var quizRegenerateCmd = &cobra.Command{
	Use:   "regenerate <quiz-id> <question-id>",
	Short: "Rewrite one question in place",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quizID, err := parseID(args[0], "quiz id")
		if err != nil {
			return err
		}
		questionID, err := parseID(args[1], "question id")
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		bloom, _ := cmd.Flags().GetString("bloom")
		extra, _ := cmd.Flags().GetString("instructions")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.quizzes.RegenerateQuestion(cmd.Context(), quizID, questionID, quiz.RegenerateRequest{
			Overrides: quiz.Overrides{
				Type:       quiz.QuestionType(strings.ToUpper(typ)),
				Difficulty: difficulty,
				BloomLevel: bloom,
			},
			ExtraInstructions: extra,
		})
		if err != nil {
			return err
		}
		printQuestion(q)
		return nil
	},
}

var quizExplainCmd = &cobra.Command{
	Use:   "explain <quiz-id> <question-id>",
	Short: "Write a fresh explanation for one question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quizID, err := parseID(args[0], "quiz id")
		if err != nil {
			return err
		}
		questionID, err := parseID(args[1], "question id")
		if err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.quizzes.ExplainQuestion(cmd.Context(), quizID, questionID)
		if err != nil {
			return err
		}
		printQuestion(q)
		return nil
	},
}

var quizShowCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Show a quiz with its questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "quiz id")
		if err != nil {
			return err
		}
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := quiz.NewService(s.SourceRepo(), s.QuizRepo(), nil, nil, nil, nil)
		d, err := svc.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		printQuiz(d)
		return nil
	},
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := quiz.NewService(s.SourceRepo(), s.QuizRepo(), nil, nil, nil, nil)
		qs, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		printQuizzes(qs)
		return nil
	},
}

var quizExportCmd = &cobra.Command{
	Use:   "export <quiz-id>",
	Short: "Export a quiz as CSV or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "quiz id")
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		if format != "csv" && format != "json" {
			return fmt.Errorf("invalid format %q: must be csv or json", format)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		svc := quiz.NewService(s.SourceRepo(), s.QuizRepo(), nil, nil, nil, nil)

		var w io.Writer = os.Stdout
		if out != "" {
			if out == "." {
				out = quiz.ExportFilename(id, format)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}

		switch format {
		case "csv":
			err = svc.ExportCSV(cmd.Context(), id, w)
		default:
			var b []byte
			if b, err = svc.ExportJSON(cmd.Context(), id); err == nil {
				_, err = fmt.Fprintln(w, string(b))
			}
		}
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
		}
		return nil
	},
}

func init() {
	quizCmd.PersistentFlags().Bool("placeholder", false, "Generate placeholder quizzes when no LLM credential is configured")

	quizCreateCmd.Flags().String("title", "", "Quiz title (required)")
	quizCreateCmd.Flags().IntSlice("source", nil, "Content source ids (repeatable or comma separated)")
	quizCreateCmd.Flags().Int("num", 5, "Number of questions")
	quizCreateCmd.Flags().StringSlice("types", []string{"MCQ"}, "Question types: MCQ, FRQ, TRUE_FALSE, CLOZE, MATCHING, REASONING")
	quizCreateCmd.Flags().String("difficulty", "medium", "Target difficulty")
	quizCreateCmd.Flags().String("bloom", "understand", "Target Bloom level")
	quizCreateCmd.Flags().String("settings", "", "Raw settings JSON (overrides --num, --types, --difficulty, --bloom)")
	quizCreateCmd.Flags().String("instructions", "", "Custom instructions for the generator")
	_ = quizCreateCmd.MarkFlagRequired("title")
	_ = quizCreateCmd.MarkFlagRequired("source")

	quizRegenerateCmd.Flags().String("type", "", "New question type")
	quizRegenerateCmd.Flags().String("difficulty", "", "New difficulty")
	quizRegenerateCmd.Flags().String("bloom", "", "New Bloom level")
	quizRegenerateCmd.Flags().String("instructions", "", "Extra instructions for this rewrite")

	quizExportCmd.Flags().StringP("format", "f", "csv", "Export format: csv or json")
	quizExportCmd.Flags().StringP("out", "o", "", "Output file (\".\" for quiz_<id>.<format>; default stdout)")

	quizCmd.AddCommand(quizCreateCmd)
	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizRegenerateCmd)
	quizCmd.AddCommand(quizExplainCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizExportCmd)
}

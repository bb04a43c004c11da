package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizsmith/internal/quiz"
	"github.com/abhisek/quizsmith/internal/store"
	"github.com/abhisek/quizsmith/internal/ui/theme"
)

const ruleWidth = 72

func rule() string {
	return theme.Subtitle.Render(strings.Repeat("─", ruleWidth))
}

func printSources(srcs []store.ContentSource) {
	if len(srcs) == 0 {
		fmt.Println("No content sources yet.")
		return
	}
	fmt.Printf("%-5s  %-9s  %-32s  %-8s  %s\n", "ID", "Type", "Title", "Language", "Status")
	fmt.Println(rule())
	for _, s := range srcs {
		fmt.Printf("%-5d  %-9s  %-32s  %-8s  %s\n",
			s.ID, s.Type, truncate(s.Title, 32), s.Language, theme.Status(string(s.Status)))
	}
}

func printSource(src *store.ContentSource, chunks []store.Chunk, full bool) {
	fmt.Println(theme.Title.Render(src.Title))
	field("ID", fmt.Sprint(src.ID))
	field("Type", string(src.Type))
	field("Status", theme.Status(string(src.Status)))
	field("Location", src.Locator)
	if src.Language != "" {
		field("Language", src.Language)
	}
	if src.Description != "" {
		field("About", src.Description)
	}
	if src.ErrorMessage != "" {
		field("Error", src.ErrorMessage)
	}
	field("Created", src.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	field("Chunks", fmt.Sprint(len(chunks)))

	if !full {
		return
	}
	for _, ch := range chunks {
		fmt.Println()
		fmt.Println(theme.Label.Render(fmt.Sprintf("Chunk %d", ch.Index)) +
			theme.Hint.Render(fmt.Sprintf("  ~%d tokens", ch.TokenCount)))
		fmt.Println(ch.Text)
	}
}

func printQuizzes(qs []store.Quiz) {
	if len(qs) == 0 {
		fmt.Println("No quizzes yet.")
		return
	}
	fmt.Printf("%-5s  %-36s  %-12s  %-19s  %s\n", "ID", "Title", "Sources", "Created", "Status")
	fmt.Println(rule())
	for _, q := range qs {
		ids := make([]string, len(q.SourceIDs))
		for i, id := range q.SourceIDs {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Printf("%-5d  %-36s  %-12s  %-19s  %s\n",
			q.ID, truncate(q.Title, 36), truncate(strings.Join(ids, ","), 12),
			q.CreatedAt.Local().Format("2006-01-02 15:04:05"), theme.Status(string(q.Status)))
	}
}

func printQuiz(d *quiz.Detail) {
	fmt.Println(theme.Title.Render(d.Title))
	field("ID", fmt.Sprint(d.ID))
	field("Status", theme.Status(string(d.Status)))
	if d.ErrorMessage != "" {
		field("Error", d.ErrorMessage)
	}
	if len(d.Settings) > 0 {
		field("Settings", string(d.Settings))
	}
	if d.CustomInstructions != "" {
		field("Notes", d.CustomInstructions)
	}
	for i := range d.Questions {
		fmt.Println()
		printQuestion(&d.Questions[i])
	}
}

func printQuestion(q *store.Question) {
	var b strings.Builder
	header := fmt.Sprintf("Q%d  %s", q.Index, q.Type)
	var meta []string
	for _, m := range []string{q.Difficulty, q.BloomLevel} {
		if m != "" {
			meta = append(meta, m)
		}
	}
	b.WriteString(theme.Label.Render(header))
	if len(meta) > 0 {
		b.WriteString(theme.Hint.Render("  " + strings.Join(meta, " · ")))
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  (id %d)", q.ID)))
	b.WriteString("\n")
	b.WriteString(q.Prompt)

	if len(q.Choices) > 0 {
		b.WriteString("\n")
		for _, c := range q.Choices {
			line := fmt.Sprintf("\n%s) %s", c.Label, c.Text)
			if c.IsCorrect {
				b.WriteString(theme.Correct.Render(line + "  ✓"))
			} else {
				b.WriteString(theme.Incorrect.Render(line))
			}
		}
	} else if q.CorrectAnswer != "" {
		b.WriteString("\n\n" + theme.Correct.Render("Answer: ") + q.CorrectAnswer)
	}
	if q.Explanation != "" {
		b.WriteString("\n\n" + theme.Hint.Render(q.Explanation))
	}
	fmt.Println(theme.Card.Render(b.String()))
}

func field(name, value string) {
	fmt.Printf("%s %s\n", theme.Label.Render(fmt.Sprintf("%-9s", name+":")), value)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Package advisory produces optional free-text commentary on a finished
// screening from a remote text-generation model.
package advisory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Summary is everything the commentary is allowed to see.
type Summary struct {
	Total    int `json:"total"`
	MaxTotal int `json:"max_total"`
	MMSE     int `json:"mmse"`
	Clock    int `json:"clock"`
	Memory   int `json:"memory"`
	Moves    int `json:"moves"`
}

// Advisor returns short commentary lines for a summary. An empty result
// means there is nothing to add.
type Advisor interface {
	Name() string
	Comment(ctx context.Context, s Summary) ([]string, error)
}

// NoopAdvisor is used when no provider is configured.
type NoopAdvisor struct{}

func (NoopAdvisor) Name() string { return "none" }

func (NoopAdvisor) Comment(context.Context, Summary) ([]string, error) {
	return nil, nil
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(s Summary) string {
	var b strings.Builder
	b.WriteString("Сделай очень краткий комментарий по результатам когнитивного скрининга, без Markdown и без длинных текстов (до 5 коротких пунктов).\n")
	b.WriteString("Дай поясняющие формулировки и практичный совет.\n")
	b.WriteString("Данные:\n")
	fmt.Fprintf(&b, "- Итог: %d из %d\n", s.Total, s.MaxTotal)
	fmt.Fprintf(&b, "- Этап 1 (MMSE/MoCA): %d/7\n", s.MMSE)
	fmt.Fprintf(&b, "- Этап 2 (Часы): %d/1\n", s.Clock)
	fmt.Fprintf(&b, "- Этап 3 (Memory): %d/3, ходов: %d\n", s.Memory, s.Moves)
	b.WriteString("Если балл ≤ 7 — обязательно рекомендуй очную консультацию врача.")
	return b.String()
}

const maxCommentLines = 8

var (
	markdownMarks = regexp.MustCompile("[*_#`>]+")
	blankLines    = regexp.MustCompile(`\n{2,}`)
)

// PlainLines strips markdown markers from model output and returns at most
// eight non-empty trimmed lines.
func PlainLines(text string) []string {
	text = markdownMarks.ReplaceAllString(text, "")
	text = blankLines.ReplaceAllString(text, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxCommentLines {
			break
		}
	}
	return lines
}

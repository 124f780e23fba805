package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/anketabot/internal/models"
)

// colWidth is the fixed column width of the transcript tables.
const colWidth = 44

// band groups questions by their sequence number for the operator view.
type band struct {
	title    string
	from, to int
}

var bands = []band{
	{"Крок 1 — Основна інформація", 1, 10},
	{"Крок 2 — Анамнез пологів", 11, 14},
	{"Крок 3 — Здоров'я", 15, 21},
	{"Крок 4 — Соціальні аспекти", 22, 1 << 30},
}

// BuildTranscript renders a completed run as a plain-text email body
// with a client header and the answers grouped into fixed bands.
func BuildTranscript(user *models.User, answers models.Answers, at time.Time) (subject, body string) {
	name := user.DisplayName()
	if name == "" {
		name = fmt.Sprintf("ID %d", user.TelegramID)
	}
	subject = fmt.Sprintf("Нова анкета: %s", name)

	var b strings.Builder
	fmt.Fprintf(&b, "Клієнт: %s\n", name)
	if user.Username.Valid && user.Username.String != "" {
		fmt.Fprintf(&b, "Telegram: @%s\n", user.Username.String)
	}
	fmt.Fprintf(&b, "Телефон: %s\n", user.DisplayPhone())
	fmt.Fprintf(&b, "Дата: %s\n", at.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "Відповіді: %d, пропущено: %d\n", answers.Answered(), answers.SkippedCount())

	ordered := answers.Ordered()
	for _, band := range bands {
		var rows []models.AnswerEntry
		for _, e := range ordered {
			if e.Number >= band.from && e.Number <= band.to {
				rows = append(rows, e)
			}
		}
		if len(rows) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(band.title)
		b.WriteString("\n")
		b.WriteString(tableRule())
		for _, e := range rows {
			writeRow(&b, fmt.Sprintf("%d. %s", e.Number, e.QuestionText), e.Answer)
			b.WriteString(tableRule())
		}
	}
	return subject, b.String()
}

func tableRule() string {
	return "+" + strings.Repeat("-", colWidth+2) + "+" + strings.Repeat("-", colWidth+2) + "+\n"
}

// writeRow renders one question/answer pair as a bordered two-column
// row, wrapping both cells to the fixed column width.
func writeRow(b *strings.Builder, question, answer string) {
	left := wrap(question, colWidth)
	right := wrap(answer, colWidth)
	lines := len(left)
	if len(right) > lines {
		lines = len(right)
	}
	for i := 0; i < lines; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		fmt.Fprintf(b, "| %s | %s |\n", pad(l, colWidth), pad(r, colWidth))
	}
}

// pad right-pads by rune count so Cyrillic text lines up.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrap splits text into lines of at most width runes, breaking on
// spaces where possible.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := ""
	for _, w := range words {
		for len([]rune(w)) > width {
			runes := []rune(w)
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, string(runes[:width]))
			w = string(runes[width:])
		}
		if w == "" {
			continue
		}
		switch {
		case current == "":
			current = w
		case len([]rune(current))+1+len([]rune(w)) <= width:
			current += " " + w
		default:
			lines = append(lines, current)
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

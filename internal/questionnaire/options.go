package questionnaire

import "strings"

// optionMarker prefixes selectable option lines inside a question prompt.
const optionMarker = "•"

// ParseOptions splits a stored question prompt into its canonical first
// line and the selectable options embedded after it. Option lines start
// with the bullet marker; other trailing lines are dropped. A prompt
// with no marker lines is a free-text question.
func ParseOptions(text string) (prompt string, options []string) {
	lines := strings.Split(text, "\n")
	prompt = strings.TrimSpace(lines[0])
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, optionMarker) {
			continue
		}
		opt := strings.TrimSpace(strings.TrimPrefix(line, optionMarker))
		if opt != "" {
			options = append(options, opt)
		}
	}
	return prompt, options
}

package questionnaire

import (
	"reflect"
	"testing"
)

func TestParseOptions(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		prompt  string
		options []string
	}{
		{
			name:   "free text",
			in:     "Скільки років вашій дитині?",
			prompt: "Скільки років вашій дитині?",
		},
		{
			name:    "with options",
			in:      "Чи є хронічні захворювання?\n• Так\n• Ні",
			prompt:  "Чи є хронічні захворювання?",
			options: []string{"Так", "Ні"},
		},
		{
			name:    "non-marker lines dropped",
			in:      "Питання?\nпояснення без маркера\n• Варіант\nще текст",
			prompt:  "Питання?",
			options: []string{"Варіант"},
		},
		{
			name:    "whitespace trimmed",
			in:      "  Питання?  \n  •   Так  \n\t• Ні\t",
			prompt:  "Питання?",
			options: []string{"Так", "Ні"},
		},
		{
			name:   "bare marker ignored",
			in:     "Питання?\n•\n•   ",
			prompt: "Питання?",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prompt, opts := ParseOptions(c.in)
			if prompt != c.prompt {
				t.Errorf("prompt = %q, want %q", prompt, c.prompt)
			}
			if !reflect.DeepEqual(opts, c.options) {
				t.Errorf("options = %v, want %v", opts, c.options)
			}
		})
	}
}

package bot

import (
	"strings"
	"testing"

	"github.com/m3rciful/anketabot/internal/questionnaire"
)

func TestMyPhoneRepliesKeepOrder(t *testing.T) {
	prompt := []questionnaire.Reply{
		{Text: "Надішліть номер", Keyboard: questionnaire.KeyboardPhone},
	}

	replies := myPhoneReplies("+38 (067) 123-45-67", prompt)
	if len(replies) != 2 {
		t.Fatalf("replies = %d, want 2", len(replies))
	}
	if !strings.Contains(replies[0].Text, "+38 (067) 123-45-67") {
		t.Errorf("first reply = %q, want the current number", replies[0].Text)
	}
	if replies[1].Keyboard != questionnaire.KeyboardPhone {
		t.Errorf("second reply keyboard = %v, want the phone request", replies[1].Keyboard)
	}
}

func TestMyPhoneRepliesDoesNotMutatePrompt(t *testing.T) {
	prompt := []questionnaire.Reply{{Text: "a"}, {Text: "b"}}
	_ = myPhoneReplies("не вказано", prompt)
	if prompt[0].Text != "a" || prompt[1].Text != "b" {
		t.Errorf("prompt mutated: %+v", prompt)
	}
}

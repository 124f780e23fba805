package questionnaire

// KeyboardKind tells the transport which reply control to attach.
type KeyboardKind int

const (
	// KeyboardKeep leaves the current reply markup untouched.
	KeyboardKeep KeyboardKind = iota
	// KeyboardMain shows the main menu buttons.
	KeyboardMain
	// KeyboardPhone shows the share-contact request button.
	KeyboardPhone
	// KeyboardOptions shows the inline option buttons from Reply.Options.
	KeyboardOptions
	// KeyboardRemove removes the custom keyboard.
	KeyboardRemove
	// KeyboardAdmin shows the admin menu buttons.
	KeyboardAdmin
)

// Reply is one outbound message directive produced by a transition.
// The transport renders the text, attaches the keyboard and honors the
// pacing flag; the engine itself never talks to Telegram.
type Reply struct {
	Text     string
	Keyboard KeyboardKind
	Options  []string

	// Delayed asks the transport to pause briefly before sending, so
	// an acceptance acknowledgment and the next prompt do not collapse
	// into one visual block.
	Delayed bool
}

func say(text string, kb KeyboardKind) Reply {
	return Reply{Text: text, Keyboard: kb}
}

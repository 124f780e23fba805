// Package keyboard builds telebot reply and inline markups.
package keyboard

import (
	tele "gopkg.in/telebot.v4"
)

// InlineBtn describes one inline keyboard button. Unique and Data form
// the callback payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// RemoveKeyboard clears the user's reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a persistent reply keyboard, one row per slice.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	out := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		row := make(tele.Row, 0, len(labels))
		for _, label := range labels {
			row = append(row, m.Text(label))
		}
		out = append(out, row)
	}
	m.Reply(out...)
	return m
}

// ContactRequest builds a one-time keyboard whose first button asks the
// user to share their contact; extra rows follow as plain buttons.
func ContactRequest(label string, extraRows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := []tele.Row{{m.Contact(label)}}
	for _, labels := range extraRows {
		row := make(tele.Row, 0, len(labels))
		for _, l := range labels {
			row = append(row, m.Text(l))
		}
		rows = append(rows, row)
	}
	m.Reply(rows...)
	return m
}

// InlineButtons stacks the buttons vertically, one per row.
func InlineButtons(btns []InlineBtn) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(btns))
	for _, b := range btns {
		rows = append(rows, tele.Row{m.Data(b.Text, b.Unique, b.Data)})
	}
	m.Inline(rows...)
	return m
}

// Package commands declares the metadata attached to a bot command.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a handler to a slash command. Hidden commands stay out
// of the Telegram command menu; AdminOnly commands get the access
// middleware on their route.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}

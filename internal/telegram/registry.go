package telegram

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry collects what the bot responds to: slash commands, inline
// callbacks and the text fallback. Registration happens during wiring,
// before the bot starts.
type Registry struct {
	mu           sync.RWMutex
	commands     map[string]commands.Command
	callbacks    map[string]tele.HandlerFunc
	unknownCb    tele.HandlerFunc
	textFallback tele.HandlerFunc
}

// NewRegistry returns a Registry whose unknown-callback fallback only
// acknowledges the press.
func NewRegistry() *Registry {
	return &Registry{
		commands:  map[string]commands.Command{},
		callbacks: map[string]tele.HandlerFunc{},
		unknownCb: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Невідома дія"})
		},
	}
}

func wireWarn(event string, attrs ...slog.Attr) {
	if logger.TWire != nil {
		logger.TWire.LogAttrs(logger.Background(), slog.LevelWarn, event, attrs...)
	}
}

// RegisterCommand records a slash command. Invalid or duplicate
// registrations are logged and ignored rather than failing startup.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	switch {
	case r == nil:
		return
	case name == "" || !strings.HasPrefix(name, "/"):
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "bad_name"))
		return
	case cmd.Handler == nil || cmd.Description == "":
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "incomplete"))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[name]; dup {
		wireWarn("register.command.duplicate", slog.String("name", name))
		return
	}
	r.commands[name] = cmd
}

// Commands returns a copy of the registered command set.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for name, cmd := range r.commands {
		out[name] = cmd
	}
	return out
}

// LookupCommand resolves a command by name, with or without the slash.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return name, cmd, ok
}

// ListCommands returns the commands sorted by name. With visibleOnly
// set, hidden and admin-only commands are excluded; that is the set
// published to the Telegram command menu.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback records a callback handler under its unique key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		wireWarn("register.callback.skip", slog.String("key", key))
		return fmt.Errorf("callback %q: invalid registration", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		wireWarn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("callback %q: already registered", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler for a callback key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered callback keys, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CallbackNotFound returns the fallback for unmatched callback keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.unknownCb
}

// SetTextFallback installs the handler for text that matched nothing
// else (menu buttons route through here).
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the installed text fallback, or nil.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands publishes the visible command list to Telegram.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		wireWarn("register.commands.set_failed", slog.String("err", err.Error()))
	}
}

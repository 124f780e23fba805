package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/anketabot/internal/logger"
	tg "github.com/m3rciful/anketabot/internal/telegram"
	"github.com/m3rciful/anketabot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures per-command access control.
type CommandRouteOptions struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes builds one route per registered command. Admin-only
// commands get an access check in front of the handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))

	for name, cmd := range cmds {
		handler := cmd.Handler
		if cmd.AdminOnly {
			handler = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
				IsAdmin:  opts.IsAdmin,
				OnReject: opts.OnAdminReject,
			})(handler)
		}

		slug := handlerSlug(name)
		run := handler
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler: func(c tele.Context) error {
				return observe(c, summary{name: slug, start: time.Now()}, func() error {
					return run(c)
				})
			},
		})
	}

	logger.TG.Info("routes wired",
		slog.String("event", "routes.wired"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

package bot

import (
	tg "github.com/m3rciful/anketabot/internal/telegram"
	"github.com/m3rciful/anketabot/internal/telegram/commands"
	tghelpers "github.com/m3rciful/anketabot/internal/telegram/helpers"
	"github.com/m3rciful/anketabot/internal/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// BuildRegistry declares the bot's commands, callbacks and fallbacks.
func (b *Bot) BuildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Головне меню",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.handleHelp,
		Description: "Довідка",
	})
	reg.RegisterCommand("/phone", commands.Command{
		Handler:     b.handlePhone,
		Description: "Оновити номер телефону",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.handleCancel,
		Description: "Скасувати поточну дію",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     b.handleAdmin,
		Description: "Адмін-панель",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbOption, b.handleOptionCallback)
	reg.SetTextFallback(b.handleMenuText)

	return reg
}

// Routes assembles all handler routes around the registry.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	isAdmin := b.cfg.Telegram.IsAdmin
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       isAdmin,
		OnAdminReject: b.handleAdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.MessageRoutes(b, reg, router.MessageOptions{
		UnknownText: func(c tele.Context) error {
			return tghelpers.SendText(c, textUnknownInput)
		},
	})...)
	return routes
}

// RateLimited is the reply sent when a user exceeds the rate limit.
func (b *Bot) RateLimited(c tele.Context) error {
	return tghelpers.SendText(c, textRateLimited)
}

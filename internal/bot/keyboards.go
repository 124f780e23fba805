package bot

import (
	"strconv"

	"github.com/m3rciful/anketabot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Main menu button labels. The text router matches these verbatim.
const (
	btnFillForm = "📝 Заповнити анкету"
	btnMyForm   = "📋 Моя анкета"
	btnMyPhone  = "📱 Мій номер"
	btnAbout    = "ℹ️ Про бота"

	btnSharePhone = "📱 Поділитися номером"
	btnSkipPhone  = "🚫 Пропустити"
)

// Admin menu button labels.
const (
	btnAdminQuestions   = "📋 Список питань"
	btnAdminAddQuestion = "➕ Додати питання"
	btnAdminEdit        = "✏️ Редагувати питання"
	btnAdminToggle      = "🔁 Увімкнути/вимкнути"
	btnAdminForms       = "📥 Останні анкети"
	btnAdminUsers       = "👥 Користувачі"
	btnAdminStats       = "📊 Статистика"
	btnAdminExit        = "⬅️ Вийти з адмінки"
)

// cbOption is the callback unique for question option buttons; the
// payload carries the option index within the current question.
const cbOption = "qopt"

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnFillForm},
		[]string{btnMyForm, btnMyPhone},
		[]string{btnAbout},
	)
}

func adminMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnAdminQuestions, btnAdminAddQuestion},
		[]string{btnAdminEdit, btnAdminToggle},
		[]string{btnAdminForms, btnAdminUsers},
		[]string{btnAdminStats},
		[]string{btnAdminExit},
	)
}

func removeMenu() *tele.ReplyMarkup {
	return keyboard.RemoveKeyboard()
}

func phoneRequest() *tele.ReplyMarkup {
	return keyboard.ContactRequest(btnSharePhone, []string{btnSkipPhone})
}

func optionButtons(options []string) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, len(options))
	for i, opt := range options {
		btns[i] = keyboard.InlineBtn{
			Text:   opt,
			Unique: cbOption,
			Data:   strconv.Itoa(i),
		}
	}
	return keyboard.InlineButtons(btns)
}

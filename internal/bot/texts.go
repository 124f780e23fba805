package bot

const (
	textWelcome = "👋 Вітаємо! Цей бот допоможе записатися на консультацію.\n\n" +
		"Заповніть, будь ласка, анкету, і ми зв'яжемося з вами. " +
		"Скористайтеся кнопками меню нижче."

	textHelp = "Доступні команди:\n" +
		"/start — головне меню\n" +
		"/phone — оновити номер телефону\n" +
		"/cancel — скасувати поточну дію\n" +
		"/help — ця довідка\n\n" +
		"Кнопки меню:\n" +
		"📝 Заповнити анкету — пройти опитування\n" +
		"📋 Моя анкета — переглянути останні відповіді\n" +
		"📱 Мій номер — переглянути чи змінити номер"

	textAbout = "ℹ️ Цей бот збирає анкети для дитячого консультанта.\n\n" +
		"Ваші відповіді бачить лише фахівець. " +
		"Номер телефону потрібен, щоб зв'язатися з вами після заповнення анкети."

	textNoSavedForm = "У вас ще немає збереженої анкети. " +
		"Натисніть «📝 Заповнити анкету», щоб пройти опитування."

	textUnknownInput = "Не зрозумів вас 🤔 Скористайтеся кнопками меню або командою /help."

	textRateLimited = "⏳ Занадто швидко. Зачекайте секунду і спробуйте ще раз."

	textMyPhone = "📱 Ваш номер: %s\n\nНадішліть новий номер або натисніть кнопку, щоб змінити його."
)

// Admin texts.
const (
	textAdminWelcome = "🔧 Адмін-панель. Оберіть дію кнопками нижче."
	textAdminDenied  = "⛔ Ця команда доступна лише адміністратору."
	textAdminExited  = "Ви вийшли з адмін-панелі."

	textAdminAskNewQuestion = "Надішліть текст нового питання.\n\n" +
		"Щоб додати варіанти відповіді, допишіть їх окремими рядками, " +
		"кожен з маркером «• », наприклад:\n\n" +
		"Чи є алергія?\n• Так\n• Ні"

	textAdminQuestionAdded = "✅ Питання #%d додано (порядок %d)."

	textAdminAskEditID      = "Надішліть номер (id) питання, яке треба змінити."
	textAdminBadQuestionID  = "❗ Не вдалося розібрати id. Надішліть число, наприклад: 3"
	textAdminQuestionGone   = "❗ Питання з таким id не знайдено. Спробуйте інший id."
	textAdminAskEditText    = "Поточний текст питання #%d:\n\n%s\n\nНадішліть новий текст."
	textAdminQuestionEdited = "✅ Питання #%d оновлено."

	textAdminAskToggleID = "Надішліть номер (id) питання, щоб увімкнути або вимкнути його."
	textAdminQuestionOn  = "✅ Питання #%d увімкнено."
	textAdminQuestionOff = "🚫 Питання #%d вимкнено."

	textAdminNoForms = "Поки що немає жодної збереженої анкети."
	textAdminNoUsers = "Поки що немає жодного користувача."
)

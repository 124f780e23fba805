package questionnaire

// User-facing texts of the questionnaire flow. Admin texts live next to
// the admin handlers.
const (
	textPhonePrompt = "📱 Поділіться, будь ласка, вашим номером телефону.\n\n" +
		"Натисніть кнопку нижче або введіть номер вручну у форматі +380XXXXXXXXX.\n" +
		"Щоб пропустити цей крок, напишіть «пропустити»."

	textPhoneInvalid = "❗ Не вдалося розпізнати номер телефону.\n\n" +
		"Приклади правильного формату:\n" +
		"+380671234567\n0671234567\n\n" +
		"Спробуйте ще раз або напишіть «пропустити»."

	textPhoneSaved   = "✅ Номер телефону збережено: %s"
	textPhoneSkipped = "Добре, цей крок пропущено. Ви можете додати номер пізніше командою /phone."

	textNeedPhoneFirst = "Щоб почати анкету, спочатку поділіться номером телефону."

	textNoQuestions = "😔 Наразі анкета недоступна: немає жодного питання. Спробуйте пізніше."

	textRunIntro = "📝 Починаємо анкету! Питань: %d.\n\n" +
		"Відповідайте текстом або обирайте варіант кнопкою. " +
		"Щоб пропустити питання, напишіть «пропустити». " +
		"Скасувати можна командою /cancel."

	textQuestionHeader = "Питання %d з %d:\n\n%s"

	textAnswerEmpty = "❗ Відповідь не може бути порожньою. Спробуйте ще раз."

	textAnswerAccepted = "✅ Відповідь записано."
	textAnswerSkipped  = "⏭ Питання пропущено."

	textOptionInvalid = "❗ Будь ласка, оберіть один із запропонованих варіантів."

	textFinishEmpty = "😔 Анкету завершено без жодної відповіді, збереження не виконано."

	textFinishSaveFailed = "😔 Сталася помилка при збереженні анкети. Спробуйте пройти її ще раз пізніше."

	textSummaryHeader = "🎉 Дякуємо! Анкету збережено.\n\n" +
		"📋 Ваші відповіді (відповіли: %d, пропущено: %d):\n"

	textCancelRun   = "❌ Анкету скасовано (пройдено %d з %d питань)."
	textCancelPhone = "❌ Дію скасовано."
	textCancelIdle  = "Немає активної дії для скасування."
)

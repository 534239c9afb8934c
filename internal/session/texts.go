package session

// User-facing reply texts. The bot answers in Russian only.
const (
	// Menu is the start message listing the numeric commands.
	Menu = "Привет! Данный бот позволяет:\n" +
		"0. Вернуться в начало (покажет стартовое сообщение)\n" +
		"1. Запланировать тренировку\n" +
		"2. Удалить запланированную тренировку\n" +
		"3. Посмотреть список запланированных тренировок (N последних)\n" +
		"Введите соответствующую цифру для выполнения одного из вышеперечисленных действий."

	// MsgEnterRecord prompts for the semicolon-delimited workout line.
	MsgEnterRecord = "Введите данные о тренировке в следующей последовательности через знак \";\" без кавычек: время;координаты;расстояние;темп;комментарий;\n" +
		"Пример строки для ввода:\n" +
		"16:30 23-05-24;60.02134,60.12345;12.5;4:30;развивающий кросс;\n" +
		"Время и дата указывается в 24-часовом формате ЧЧ:ММ ДД-ММ-ГГ,\n" +
		"координаты указываются двумя числами с плавающей точкой через запятую,\n" +
		"расстояние указывается в километрах в формате числа с плавающей точкой,\n" +
		"темп бега указывается в формате М:СС (минуты, секунды),\n" +
		"комментарий - обычный текст."

	// MsgEnterDeleteID prompts for the id of the workout to cancel.
	MsgEnterDeleteID = "Введите ID тренировки, которую нужно удалить."

	// MsgEnterListCount prompts for the number of records to list.
	MsgEnterListCount = "Введите натуральное число N. Бот выведет последние N записей о запланированных тренировках."

	// MsgUnknownCommand is the reply to anything that is not a menu digit.
	MsgUnknownCommand = "Такой команды не существует."

	// MsgSavedPrefix precedes the allocated id in the save confirmation.
	MsgSavedPrefix = "Тренировка успешно записана. Ее ID: "

	// MsgDeleted confirms a cancelled workout.
	MsgDeleted = "Тренировка успешно отменена"

	// MsgHistoryEmpty is the listing reply when nothing is stored.
	MsgHistoryEmpty = "История пуста."

	// MsgInternal is the catch-all reply for unexpected failures, so a
	// session is never left without an answer.
	MsgInternal = "Внутренняя ошибка, попробуйте ещё раз."
)

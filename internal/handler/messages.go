package handler

import (
	"fmt"
	"strings"

	"glpibot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

const (
	textGreeting         = "👋 Привет! Я помогу создать заявку в GLPI.\n\nВведите логин:"
	textPasswordPrompt   = "Введите пароль:"
	textLoginEmpty       = "Логин не может быть пустым. Введите логин:"
	textCancelled        = "Что-то пошло не так? Действие отменено.\n\nЧтобы начать заново, отправьте /start"
	textWrongLogin       = "❌ Неверный логин или пароль.\n\nВведите логин:"
	textGLPIDown         = "⚠️ GLPI сейчас недоступен. Попробуйте позже.\n\nВведите логин:"
	textLoggedOut        = "👋 Вы вышли из GLPI.\n\nЧтобы войти снова, отправьте /start"
	textLogoutIncomplete = "👋 Вы вышли из бота, но закрыть сессию в GLPI не удалось: она завершится сама по истечении срока.\n\nЧтобы войти снова, отправьте /start"
	textSessionExpired   = "⌛ Сессия GLPI истекла.\n\nЧтобы войти снова, отправьте /start"
	textError            = "Произошла ошибка. Попробуйте позже."

	textTitlePrompt       = "📝 Введите тему заявки:"
	textDescriptionPrompt = "Опишите проблему:"
	textPriorityPrompt    = "Выберите приоритет (1–6 или название):"
	textInvalidPriority   = "Непонятный приоритет. Выберите значение от 1 до 6 или название на клавиатуре:"
	textEmptyField        = "Поле не может быть пустым. Попробуйте ещё раз:"
	textSubmitFailed      = "⚠️ Не удалось создать заявку, GLPI недоступен.\n\nВыберите приоритет ещё раз, чтобы повторить:"
	textTicketCreated     = "✅ Заявка #%d «%s» создана."
	textTicketCancelled   = "Создание заявки отменено."
	textNoTickets         = "У вас пока нет заявок."
	textTicketsFailed     = "⚠️ Не удалось получить заявки, GLPI недоступен. Попробуйте позже."

	textOnlyText      = "Я понимаю только текстовые сообщения."
	textStartHint     = "Чтобы начать, отправьте /start"
	textUnknownInput  = "Не понимаю 🤷\n\nСписок команд: /help"
	textUnknownAction = "Неизвестная команда.\n\nСписок команд: /help"
)

const textHelpAnonymous = `🤖 Бот службы поддержки GLPI

/start — войти в GLPI
/help — эта справка`

const textCommands = `/add — новая заявка
/tickets — мои заявки
/logout — выйти
/start — войти под другим логином
/help — эта справка`

const textHelpLoggedIn = "🤖 Бот службы поддержки GLPI\n\n" + textCommands + "\n\nО смене статуса заявок я сообщу сам."

func loggedInText(login string) string {
	return fmt.Sprintf("✅ Вы вошли как %s.\n\n%s", login, textCommands)
}

func ticketListText(tickets []domain.TicketSummary) string {
	if len(tickets) == 0 {
		return textNoTickets
	}

	var b strings.Builder
	b.WriteString("📋 Ваши заявки:\n")
	for _, t := range tickets {
		fmt.Fprintf(&b, "\n#%d %s\n%s · приоритет: %s\n", t.ID, t.Title, t.Status, priorityName(t.Priority))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Button labels must parse back through the priority table
var priorityNames = map[domain.Priority]string{
	domain.PriorityVeryLow:  "Очень низкий",
	domain.PriorityLow:      "Низкий",
	domain.PriorityMedium:   "Средний",
	domain.PriorityHigh:     "Высокий",
	domain.PriorityVeryHigh: "Очень высокий",
	domain.PriorityMajor:    "Наивысший",
}

func priorityName(p domain.Priority) string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return p.String()
}

// priorityMarkup returns the reply keyboard offered at the priority step
func priorityMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	btn := func(p domain.Priority) tele.Btn {
		return menu.Text(priorityNames[p])
	}
	menu.Reply(
		menu.Row(btn(domain.PriorityVeryLow), btn(domain.PriorityLow)),
		menu.Row(btn(domain.PriorityMedium), btn(domain.PriorityHigh)),
		menu.Row(btn(domain.PriorityVeryHigh), btn(domain.PriorityMajor)),
	)
	return menu
}

func removeKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

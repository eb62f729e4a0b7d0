package ai

// Грубая оценка: примерно 3 символа на токен.
const charsPerToken = 3

// LimitMessages урезает контекст до лимита токенов, выбрасывая сообщения
// с начала списка. Сообщение с ролью system защищено и не удаляется.
// Возвращает урезанный список и количество выброшенных символов (для лога).
// Если осталось только системное сообщение и лимит всё ещё превышен —
// список возвращается как есть.
func LimitMessages(messages []Message, tokenLimit int) ([]Message, int) {
	discarded := 0

	for {
		charCount := 0
		for _, m := range messages {
			charCount += len(m.Content)
		}
		if charCount/charsPerToken <= tokenLimit {
			break
		}

		removed := false
		for i, m := range messages {
			if m.Role != RoleSystem {
				discarded += len(m.Content)
				messages = append(messages[:i], messages[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}

	return messages, discarded
}

package convo

import "strings"

// multiChoiceTag — маркер начала блока вариантов ответа в тексте ассистента.
const multiChoiceTag = "1)"

// ChatOption — один вариант ответа, предложенный ассистентом.
type ChatOption struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
}

// Entry — одна реплика переписки: пользователь или ассистент.
// Options выводятся из текста ассистента, у пользователя их не бывает.
type Entry struct {
	IsAssistant bool         `json:"is_assistant"`
	Text        string       `json:"text"`
	Options     []ChatOption `json:"options,omitempty"`
}

// NewEntry создаёт реплику. Для ассистента из текста вырезается блок
// вариантов ответа; текст пользователя сохраняется как есть.
func NewEntry(isAssistant bool, text string) Entry {
	e := Entry{IsAssistant: isAssistant, Text: text}
	if isAssistant {
		e.Text, e.Options = splitOptions(text)
	}
	return e
}

// splitOptions ищет маркер "1)" и разбирает всё после него как меню.
// Строки вида "<id>) <подпись>"; строки без ')' молча отбрасываются.
// Маркера нет — текст возвращается без изменений.
func splitOptions(text string) (string, []ChatOption) {
	idx := strings.Index(text, multiChoiceTag)
	if idx < 0 {
		return text, nil
	}
	if idx > 0 {
		idx-- // захватить перенос строки перед маркером
	}

	optionText := strings.TrimLeft(text[idx:], " \t\r\n")
	text = text[:idx]

	var options []ChatOption
	for _, line := range strings.Split(optionText, "\n") {
		tmp := strings.SplitN(line, ")", 2)
		if len(tmp) != 2 {
			continue
		}
		options = append(options, ChatOption{
			ID:      strings.TrimSpace(tmp[0]),
			Caption: strings.TrimSpace(tmp[1]),
		})
	}

	return text, options
}

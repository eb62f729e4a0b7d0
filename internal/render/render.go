// Package render готовит переписку к показу в браузере: экранирует HTML,
// переключает блоки кода по ``` и подставляет подписи выбранных вариантов.
package render

import (
	"strconv"
	"strings"

	"WebChatBot/internal/convo"
)

// Beautify возвращает отображаемую копию реплик. Исходные реплики не меняются.
//
// Реплика, чей текст — небольшое число (и это не первая реплика), трактуется
// как выбор варианта: вместо текста показывается подпись варианта с этим
// номером (1-based) из предыдущей реплики. Номер вне диапазона — показываем
// текст буквально, через обычное экранирование.
func Beautify(entries []convo.Entry) []convo.Entry {
	result := make([]convo.Entry, 0, len(entries))

	insideCode := false
	for idx, entry := range entries {
		var output string

		if n, ok := selectedOption(entries, idx); ok {
			output = entries[idx-1].Options[n-1].Caption
		} else {
			var sb strings.Builder
			for _, line := range strings.Split(entry.Text, "\n") {
				sb.WriteString(filterCodeTags(line, &insideCode))
				if insideCode {
					sb.WriteString("\n")
				} else {
					sb.WriteString("<br>")
				}
			}
			output = strings.TrimSpace(sb.String())
		}

		result = append(result, convo.Entry{
			IsAssistant: entry.IsAssistant,
			Text:        output,
			Options:     entry.Options,
		})
	}

	return result
}

// selectedOption распознаёт реплику-выбор: числовой текст, не первая реплика,
// номер попадает в меню предыдущей реплики.
func selectedOption(entries []convo.Entry, idx int) (int, bool) {
	if idx == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(entries[idx].Text))
	if err != nil {
		return 0, false
	}
	if n < 1 || n > len(entries[idx-1].Options) {
		return 0, false
	}
	return n, true
}

// filterCodeTags экранирует HTML-символы строки и переключает режим кода
// на каждом третьем подряд идущем символе '`'. Сами бэктики не выводятся.
func filterCodeTags(input string, insideCode *bool) string {
	var sb strings.Builder

	var prev1, prev2 rune
	for _, ch := range input {
		if ch == '`' {
			if prev2 == ch && prev1 == ch {
				*insideCode = !*insideCode
				if *insideCode {
					sb.WriteString("</p><pre>\n")
				} else {
					sb.WriteString("</pre><p>\n")
				}
			}
		} else {
			switch ch {
			case '<':
				sb.WriteString("&lt;")
			case '>':
				sb.WriteString("&gt;")
			case '&':
				sb.WriteString("&amp;")
			case '"':
				sb.WriteString("&quot;")
			case '\'':
				sb.WriteString("&#39;")
			default:
				sb.WriteRune(ch)
			}
		}

		prev1 = prev2
		prev2 = ch
	}

	return sb.String()
}

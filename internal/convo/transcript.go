package convo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ChatBreak — разделитель записей в файле переписки.
const ChatBreak = "####"

// Маркеры роли в файле переписки.
const (
	assistantMarker = "ai:"
	userMarker      = "user:"
)

// Transcript — упорядоченная история реплик одного чата плюс
// накапливаемая «память» (блокнот), добавляемая к правилам ассистента.
// Память живёт только в процессе, в файл не пишется.
type Transcript struct {
	ChatID  int
	Entries []Entry

	memory string
}

// FilePath возвращает путь файла переписки для чата в папке dir.
func FilePath(dir string, chatID int) string {
	return filepath.Join(dir, strconv.Itoa(chatID)+".txt")
}

// Load восстанавливает переписку из файла. Отсутствие файла — не ошибка,
// возвращается пустая переписка. Блоки вариантов ответа не читаются как
// структура, а выводятся заново из сырого текста (см. NewEntry).
func Load(dir string, chatID int) (*Transcript, error) {
	t := &Transcript{ChatID: chatID}

	f, err := os.Open(FilePath(dir, chatID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("открытие переписки %d: %w", chatID, err)
	}
	defer f.Close()

	var sb strings.Builder
	waitingForRole := true
	isAssistant := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ChatBreak):
			if sb.Len() > 0 {
				t.Entries = append(t.Entries, flushEntry(isAssistant, &sb))
			}
			waitingForRole = true
		case waitingForRole:
			// Строка роли потребляется и в текст реплики не попадает
			isAssistant = strings.HasPrefix(line, assistantMarker)
			waitingForRole = false
		default:
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("чтение переписки %d: %w", chatID, err)
	}
	if sb.Len() > 0 {
		t.Entries = append(t.Entries, flushEntry(isAssistant, &sb))
	}

	return t, nil
}

// flushEntry собирает накопленный текст в реплику. Завершающий перенос,
// добавленный построчным чтением, снимается: иначе каждый цикл
// сохранить-загрузить наращивал бы пустую строку и round-trip не был бы
// неподвижной точкой.
func flushEntry(isAssistant bool, sb *strings.Builder) Entry {
	text := strings.TrimSuffix(sb.String(), "\n")
	sb.Reset()
	return NewEntry(isAssistant, text)
}

// Save сериализует все реплики и перезаписывает файл переписки.
func (t *Transcript) Save(dir string) error {
	var lines []string
	for _, e := range t.Entries {
		if e.IsAssistant {
			lines = append(lines, assistantMarker)
		} else {
			lines = append(lines, userMarker)
		}
		lines = append(lines, e.Text)
		for _, o := range e.Options {
			lines = append(lines, fmt.Sprintf("%s) %s", o.ID, o.Caption))
		}
		lines = append(lines, ChatBreak)
	}

	data := ""
	if len(lines) > 0 {
		data = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(FilePath(dir, t.ChatID), []byte(data), 0o644); err != nil {
		return fmt.Errorf("запись переписки %d: %w", t.ChatID, err)
	}
	return nil
}

// Append добавляет реплику в конец истории.
func (t *Transcript) Append(e Entry) {
	t.Entries = append(t.Entries, e)
}

// Memory возвращает текущий блокнот.
func (t *Transcript) Memory() string {
	return t.memory
}

// AddToMemory дописывает текст в блокнот (с новой строки, если он не пуст).
func (t *Transcript) AddToMemory(text string) {
	if t.memory != "" {
		text = "\n" + text
	}
	t.memory += text
}

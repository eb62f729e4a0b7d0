package bot

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"WebChatBot/internal/convo"
)

// Profile задаёт поведение ассистента для сессии: правила (системный
// промпт), мгновенный ответ без обращения к модели и преобразование
// ответа модели перед добавлением в переписку.
type Profile interface {
	// Rules возвращает фиксированный текст правил ассистента.
	Rules() string

	// PreAnswer может дать мгновенный ответ на вопрос. ok=false —
	// ответа нет, вопрос уходит в модель. Реализация вправе менять
	// блокнот переписки (вызывается под блокировкой сессии).
	PreAnswer(t *convo.Transcript, question string) (answer string, ok bool)

	// FormatAnswer преобразует ответ модели перед добавлением в переписку.
	FormatAnswer(answer string) string
}

var _ Profile = (*FileProfile)(nil)

// Префиксы команды запоминания; остаток строки дописывается в блокнот.
var rememberPrefixes = []string{"remember:", "запомни:"}

// FileProfile — профиль, читающий правила из файла (assistant.txt).
type FileProfile struct {
	rules string
}

// NewFileProfile загружает правила ассистента из файла path.
// Пустой файл — ошибка конфигурации, как и его отсутствие.
func NewFileProfile(path string) (*FileProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("загрузка правил ассистента: %w", err)
	}
	rules := strings.TrimSpace(string(data))
	if rules == "" {
		return nil, errors.New("файл правил ассистента пуст: " + path)
	}
	return &FileProfile{rules: rules}, nil
}

func (p *FileProfile) Rules() string { return p.rules }

func (p *FileProfile) PreAnswer(t *convo.Transcript, question string) (string, bool) {
	trimmed := strings.TrimSpace(question)
	lower := strings.ToLower(trimmed)
	for _, prefix := range rememberPrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		fact := strings.TrimSpace(trimmed[len(prefix):])
		if fact == "" {
			return "Что именно запомнить?", true
		}
		t.AddToMemory(fact)
		return "Запомнил.", true
	}
	return "", false
}

func (p *FileProfile) FormatAnswer(answer string) string { return answer }

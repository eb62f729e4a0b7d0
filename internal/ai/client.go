package ai

import "context"

// Роли сообщений в списке контекста.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message — одно сообщение контекста с ролью.
type Message struct {
	Role    string
	Content string
}

// Params — параметры генерации одного запроса.
type Params struct {
	Temperature     float64
	MaxAnswerTokens int
	CandidateCount  int
}

// Completer интерфейс для обращения к сервису генерации ответов.
// Все реализации должны быть взаимозаменяемыми.
type Completer interface {
	// Complete отправляет упорядоченный список сообщений и возвращает
	// один или несколько вариантов ответа ассистента.
	Complete(ctx context.Context, messages []Message, p Params) ([]string, error)
}

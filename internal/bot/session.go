package bot

import (
	"fmt"
	"os"
	"sync"

	"WebChatBot/internal/convo"
)

// Factory создаёт сессию для идентификатора чата. Передаётся в реестр,
// чтобы выбор профиля ассистента не был зашит в реестр.
type Factory func(chatID int) (*Session, error)

// Session — один чат: профиль ассистента поверх переписки.
// Методы потокобезопасны: читатель (рендер) может работать параллельно
// с воркером, дописывающим ответ.
type Session struct {
	ChatID int

	profile Profile
	dir     string

	mu         sync.Mutex
	transcript *convo.Transcript
	notify     chan struct{}
}

// NewSession создаёт сессию, восстанавливая переписку из файла в dir
// (отсутствие файла даёт пустую переписку).
func NewSession(chatID int, dir string, profile Profile) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание папки переписок: %w", err)
	}
	t, err := convo.Load(dir, chatID)
	if err != nil {
		return nil, err
	}
	return &Session{
		ChatID:     chatID,
		profile:    profile,
		dir:        dir,
		transcript: t,
		notify:     make(chan struct{}, 1),
	}, nil
}

// SystemPrompt собирает защищённое системное сообщение: правила профиля
// плюс блокнот с новой строки, если блокнот не пуст.
func (s *Session) SystemPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := s.profile.Rules()
	if memory := s.transcript.Memory(); memory != "" {
		if rules == "" {
			rules = memory
		} else {
			rules += "\n" + memory
		}
	}
	return rules
}

// PreAnswer пробует мгновенный ответ профиля.
func (s *Session) PreAnswer(question string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.PreAnswer(s.transcript, question)
}

// AddExchange добавляет вопрос (если не пуст) и ответы ассистента.
// Ответы проходят через FormatAnswer профиля и разбор вариантов ответа.
func (s *Session) AddExchange(question string, answers ...string) {
	s.mu.Lock()
	if question != "" {
		s.transcript.Append(convo.NewEntry(false, question))
	}
	for _, answer := range answers {
		s.transcript.Append(convo.NewEntry(true, s.profile.FormatAnswer(answer)))
	}
	s.mu.Unlock()
	s.wake()
}

// History возвращает копию реплик на текущий момент.
func (s *Session) History() []convo.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]convo.Entry, len(s.transcript.Entries))
	copy(entries, s.transcript.Entries)
	return entries
}

// Save пишет переписку на диск.
func (s *Session) Save() error {
	s.mu.Lock()
	snapshot := *s.transcript
	snapshot.Entries = make([]convo.Entry, len(s.transcript.Entries))
	copy(snapshot.Entries, s.transcript.Entries)
	s.mu.Unlock()
	return snapshot.Save(s.dir)
}

// NotifyCh сигналит об изменении переписки (для push по WebSocket).
// Слот один на сессию: при нескольких подписчиках сигнал достаётся
// одному из них, остальные обязаны обновляться по своему таймеру.
func (s *Session) NotifyCh() <-chan struct{} { return s.notify }

func (s *Session) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

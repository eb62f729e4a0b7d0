// Package registry владеет картой чатов и координирует обработку вопросов:
// защита от повторного запроса, сборка контекста, обращение к модели,
// сохранение переписки.
package registry

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"WebChatBot/internal/ai"
	"WebChatBot/internal/bot"
	"WebChatBot/internal/config"
	"WebChatBot/internal/convo"
	"WebChatBot/internal/render"
)

// ErrBusy — для чата уже выполняется запрос; клиенту следует опрашивать
// состояние, пока pending не сбросится.
var ErrBusy = errors.New("запрос для этого чата уже выполняется")

// Диапазон генерации идентификаторов чатов.
const (
	minChatID   = 1000
	chatIDRange = 899999
)

// Registry — процессный реестр сессий. Карта сессий и множество pending
// защищены одним мьютексом; проверка и установка pending — атомарный шаг.
type Registry struct {
	cfg       *config.Config
	factory   bot.Factory
	completer ai.Completer
	logger    *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[int]*bot.Session
	pending  map[int]struct{}

	wg sync.WaitGroup
}

func New(cfg *config.Config, factory bot.Factory, completer ai.Completer, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		cfg:       cfg,
		factory:   factory,
		completer: completer,
		logger:    logger,
		sessions:  make(map[int]*bot.Session),
		pending:   make(map[int]struct{}),
	}
}

// Find возвращает сессию чата; при create=true отсутствующая сессия
// создаётся (с восстановлением переписки из файла).
func (r *Registry) Find(chatID int, create bool) (*bot.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(chatID, create)
}

func (r *Registry) findLocked(chatID int, create bool) (*bot.Session, error) {
	if s, ok := r.sessions[chatID]; ok {
		return s, nil
	}
	if !create {
		return nil, nil
	}
	s, err := r.factory(chatID)
	if err != nil {
		return nil, err
	}
	r.sessions[chatID] = s
	return s, nil
}

// GenerateChatID подбирает свободный идентификатор чата. Идентификатор
// сразу резервируется пустой сессией под тем же мьютексом, поэтому два
// конкурентных вызова не вернут одно и то же значение.
func (r *Registry) GenerateChatID() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		chatID := minChatID + rand.IntN(chatIDRange)
		if _, taken := r.sessions[chatID]; taken {
			continue
		}
		if _, err := r.findLocked(chatID, true); err != nil {
			return 0, err
		}
		return chatID, nil
	}
}

// Pending сообщает, выполняется ли сейчас запрос для чата.
func (r *Registry) Pending(chatID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[chatID]
	return ok
}

// Submit принимает вопрос пользователя. Мгновенный ответ профиля
// обрабатывается синхронно; иначе чат помечается pending, открытый вопрос
// дописывается в переписку, а обращение к модели уходит в отдельную
// горутину — вызывающий не ждёт ответа. Возвращает ErrBusy, если для
// чата уже выполняется запрос.
func (r *Registry) Submit(ctx context.Context, chatID int, question string) error {
	s, err := r.Find(chatID, true)
	if err != nil {
		return err
	}

	if answer, ok := s.PreAnswer(question); ok {
		s.AddExchange(question, answer)
		if err := s.Save(); err != nil {
			r.logger.Warnw("Не удалось сохранить переписку", "chat_id", chatID, "error", err)
		}
		return nil
	}

	r.mu.Lock()
	if _, busy := r.pending[chatID]; busy {
		r.mu.Unlock()
		return ErrBusy
	}
	r.pending[chatID] = struct{}{}
	// Открытый вопрос виден читателям ещё до ответа модели
	s.AddExchange(question)
	r.mu.Unlock()

	r.logger.Infow("Запрос принят", "chat_id", chatID)

	// Запрос живёт дольше HTTP-обработчика, который его принёс
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.process(ctx, s, question)
	}()

	return nil
}

// process выполняет один обмен с моделью: сборка контекста, урезание до
// лимита, запрос, добавление ответов и сохранение. Pending снимается в
// любом исходе; при ошибке открытый вопрос остаётся без ответа.
func (r *Registry) process(ctx context.Context, s *bot.Session, question string) {
	defer func() {
		r.mu.Lock()
		delete(r.pending, s.ChatID)
		r.mu.Unlock()
	}()

	history := s.History()
	messages := make([]ai.Message, 0, len(history)+2)

	if prompt := s.SystemPrompt(); prompt != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: prompt})
	}
	for _, e := range history {
		role := ai.RoleUser
		if e.IsAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: e.Text})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: question})

	messages, discarded := ai.LimitMessages(messages, r.cfg.ContextTokenLimit)
	if discarded > 0 {
		r.logger.Infow("Контекст урезан", "chat_id", s.ChatID, "discarded_chars", discarded)
	}

	answers, err := r.completer.Complete(ctx, messages, ai.Params{
		Temperature:     r.cfg.Temperature,
		MaxAnswerTokens: r.cfg.MaxAnswerTokens,
		CandidateCount:  r.cfg.CandidateCount,
	})
	if err != nil {
		r.logger.Errorw("Запрос к модели не удался", "chat_id", s.ChatID, "error", err)
		return
	}

	s.AddExchange("", answers...)
	if err := s.Save(); err != nil {
		r.logger.Warnw("Не удалось сохранить переписку", "chat_id", s.ChatID, "error", err)
	}
	r.logger.Infow("Ответ получен", "chat_id", s.ChatID, "answers", len(answers))
}

// View — снимок чата для отображения.
type View struct {
	ChatID      int                `json:"chat_id"`
	Entries     []convo.Entry      `json:"entries"`
	Options     []convo.ChatOption `json:"options,omitempty"`
	Pending     bool               `json:"pending"`
	HasControls bool               `json:"has_controls"`
}

// View собирает отображаемый снимок чата: реплики после Beautify,
// варианты последней реплики ассистента и живое состояние pending.
// Снимок обязан быть читаемым и при открытом вопросе без ответа.
func (r *Registry) View(chatID int) (View, error) {
	v := View{ChatID: chatID}

	s, err := r.Find(chatID, true)
	if err != nil {
		return v, err
	}

	chat := render.Beautify(s.History())
	v.Entries = chat
	v.HasControls = len(chat) >= 2

	if len(chat) > 0 {
		last := chat[len(chat)-1]
		if last.IsAssistant && len(last.Options) > 0 {
			v.Options = last.Options
		}
	}

	v.Pending = r.Pending(chatID)
	return v, nil
}

// Wait дожидается завершения всех запущенных запросов (для останова).
func (r *Registry) Wait() {
	r.wg.Wait()
}

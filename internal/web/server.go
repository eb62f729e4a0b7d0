// Package web — транспортный слой: страница чата, JSON-снимки для опроса,
// приём сообщений и push по WebSocket. Вся логика диалога живёт в registry.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"WebChatBot/internal/config"
	"WebChatBot/internal/registry"
)

const chatIDCookie = "chat_id"

// Server обслуживает веб-клиент чата.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	logger   *zap.SugaredLogger
	srv      *http.Server
	running  atomic.Bool
}

func NewServer(cfg *config.Config, reg *registry.Registry, logger *zap.SugaredLogger) *Server {
	s := &Server{cfg: cfg, registry: reg, logger: logger}

	s.srv = &http.Server{
		Addr:    cfg.BindAddr,
		Handler: s.Handler(),
		// WriteTimeout не ставим: /ws держит долгоживущие соединения
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler собирает маршруты сервера (отдельно от lifecycle — для тестов).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /new", s.handleNew)
	mux.HandleFunc("GET /chat/{chat_id}", s.handlePage)
	mux.HandleFunc("GET /convo/{chat_id}", s.handleView)
	mux.HandleFunc("POST /convo/{chat_id}", s.handleSubmit)
	mux.HandleFunc("GET /ws/{chat_id}", s.handleSocket)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("Chat server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Chat server stopped with error", "error", err)
		} else {
			s.logger.Infow("Chat server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("chat server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.cfg.BindAddr }

// handleIndex отправляет в чат из cookie, а новичка — на свежий чат.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(chatIDCookie); err == nil {
		if chatID, err := strconv.Atoi(c.Value); err == nil && chatID > 0 {
			http.Redirect(w, r, "/chat/"+c.Value, http.StatusFound)
			return
		}
	}
	s.handleNew(w, r)
}

// handleNew выделяет новый идентификатор чата и запоминает его в cookie.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	chatID, err := s.registry.GenerateChatID()
	if err != nil {
		s.logger.Errorw("Не удалось создать чат", "error", err)
		http.Error(w, "failed to create chat", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     chatIDCookie,
		Value:    strconv.Itoa(chatID),
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/chat/"+strconv.Itoa(chatID), http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, map[string]any{"ChatID": chatID}); err != nil {
		s.logger.Warnw("Ошибка рендера страницы", "chat_id", chatID, "error", err)
	}
}

// handleView отдаёт JSON-снимок переписки; клиент опрашивает его,
// пока pending не сбросится.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	view, err := s.registry.View(chatID)
	if err != nil {
		s.logger.Errorw("Не удалось собрать снимок чата", "chat_id", chatID, "error", err)
		http.Error(w, "failed to load chat", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// handleSubmit принимает вопрос; занятый чат получает 409 и опрашивает
// снимок дальше.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	message := r.FormValue("message")
	if message == "" {
		http.Error(w, "empty message", http.StatusBadRequest)
		return
	}

	err := s.registry.Submit(r.Context(), chatID, message)
	switch {
	case errors.Is(err, registry.ErrBusy):
		s.writeJSON(w, http.StatusConflict, map[string]string{"status": "busy"})
	case err != nil:
		s.logger.Errorw("Не удалось принять сообщение", "chat_id", chatID, "error", err)
		http.Error(w, "failed to submit message", http.StatusInternalServerError)
	default:
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

func (s *Server) chatID(w http.ResponseWriter, r *http.Request) (int, bool) {
	chatID, err := strconv.Atoi(r.PathValue("chat_id"))
	if err != nil || chatID <= 0 {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return 0, false
	}
	return chatID, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("Ошибка записи JSON-ответа", "error", err)
	}
}

package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

const socketWriteWait = 10 * time.Second

// handleSocket держит WebSocket и шлёт клиенту снимок переписки при каждом
// изменении сессии плюс по таймеру. Таймер обязателен: сигнал сессии несёт
// один слот на всех подписчиков, и второй клиент того же чата обновляется
// только по PushInterval; он же гасит pending без событий.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	session, err := s.registry.Find(chatID, true)
	if err != nil {
		s.logger.Errorw("Не удалось открыть сессию для WebSocket", "chat_id", chatID, "error", err)
		http.Error(w, "failed to open chat", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ клиенту
		s.logger.Warnw("WebSocket upgrade failed", "chat_id", chatID, "error", err)
		return
	}
	defer conn.Close()

	// Читатель нужен только чтобы заметить закрытие со стороны клиента
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.PushInterval)
	defer ticker.Stop()

	if !s.pushView(conn, chatID) {
		return
	}
	for {
		select {
		case <-session.NotifyCh():
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
		if !s.pushView(conn, chatID) {
			return
		}
	}
}

func (s *Server) pushView(conn *websocket.Conn, chatID int) bool {
	view, err := s.registry.View(chatID)
	if err != nil {
		s.logger.Errorw("Не удалось собрать снимок для WebSocket", "chat_id", chatID, "error", err)
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	if err := conn.WriteJSON(view); err != nil {
		return false
	}
	return true
}

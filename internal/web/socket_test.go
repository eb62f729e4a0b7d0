package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebChatBot/internal/ai"
	"WebChatBot/internal/registry"
)

func dialSocket(t *testing.T, ts *httptest.Server, chatID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + chatID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) registry.View {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var view registry.View
	require.NoError(t, conn.ReadJSON(&view))
	return view
}

func TestSocketPushesAfterAnswer(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	completer := completerFunc(func(_ context.Context, _ []ai.Message, _ ai.Params) ([]string, error) {
		<-gate
		return []string{"Привет!\n1) Дальше\n2) Стоп"}, nil
	})
	srv, reg := newTestServer(t, completer)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialSocket(t, ts, "1234")

	// Первый снимок приходит сразу после подключения
	view := readSnapshot(t, conn)
	assert.Empty(t, view.Entries)
	assert.False(t, view.Pending)

	form := url.Values{"message": {"привет"}}
	resp, err := http.PostForm(ts.URL+"/convo/1234", form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	close(gate)
	reg.Wait()

	// После завершения хода по сокету приходит снимок с полным обменом.
	// Промежуточные снимки (открытый вопрос, pending) пропускаем.
	for {
		view = readSnapshot(t, conn)
		if len(view.Entries) == 2 && !view.Pending {
			break
		}
	}
	assert.Equal(t, "привет<br>", view.Entries[0].Text)
	assert.Equal(t, "Привет!<br>", view.Entries[1].Text)
	require.Len(t, view.Options, 2)
	assert.Equal(t, "Дальше", view.Options[0].Caption)
	assert.True(t, view.HasControls)
}

func TestSocketRejectsBadChatID(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, ai.NewStubCompleter(""))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/abc"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

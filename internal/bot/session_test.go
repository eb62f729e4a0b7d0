package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebChatBot/internal/convo"
)

func writeRules(t *testing.T, rules string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.txt")
	require.NoError(t, os.WriteFile(path, []byte(rules), 0o644))
	return path
}

func newTestSession(t *testing.T, rules string) *Session {
	t.Helper()
	profile, err := NewFileProfile(writeRules(t, rules))
	require.NoError(t, err)
	s, err := NewSession(1234, filepath.Join(t.TempDir(), "Chatlogs"), profile)
	require.NoError(t, err)
	return s
}

func TestNewFileProfile(t *testing.T) {
	t.Parallel()

	t.Run("loads and trims rules", func(t *testing.T) {
		t.Parallel()
		profile, err := NewFileProfile(writeRules(t, "Ты помощник.\n"))
		require.NoError(t, err)
		assert.Equal(t, "Ты помощник.", profile.Rules())
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := NewFileProfile(filepath.Join(t.TempDir(), "нет.txt"))
		assert.Error(t, err)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := NewFileProfile(writeRules(t, "  \n"))
		assert.Error(t, err)
	})
}

func TestFileProfilePreAnswerRemember(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "Ты помощник.")

	answer, ok := s.PreAnswer("remember: кота зовут Барсик")
	require.True(t, ok)
	assert.Equal(t, "Запомнил.", answer)

	answer, ok = s.PreAnswer("Запомни: хозяин любит чай")
	require.True(t, ok)
	assert.Equal(t, "Запомнил.", answer)

	// Блокнот дописывается к правилам с новой строки
	assert.Equal(t, "Ты помощник.\nкота зовут Барсик\nхозяин любит чай", s.SystemPrompt())
}

func TestFileProfilePreAnswerEmptyFact(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "Ты помощник.")
	answer, ok := s.PreAnswer("remember:   ")
	require.True(t, ok)
	assert.Equal(t, "Что именно запомнить?", answer)
	assert.Equal(t, "Ты помощник.", s.SystemPrompt())
}

func TestFileProfilePreAnswerPassesOrdinaryQuestions(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "Ты помощник.")
	_, ok := s.PreAnswer("какая погода?")
	assert.False(t, ok)
}

func TestSessionAddExchange(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "Ты помощник.")
	s.AddExchange("привет")

	history := s.History()
	require.Len(t, history, 1)
	assert.False(t, history[0].IsAssistant)
	assert.Equal(t, "привет", history[0].Text)

	s.AddExchange("", "Привет!\n1) Продолжить\n2) Стоп")
	history = s.History()
	require.Len(t, history, 2)
	assert.True(t, history[1].IsAssistant)
	assert.Equal(t, "Привет!", history[1].Text)
	assert.Len(t, history[1].Options, 2)
}

func TestSessionSaveAndReload(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "Chatlogs")
	profile, err := NewFileProfile(writeRules(t, "Ты помощник."))
	require.NoError(t, err)

	s, err := NewSession(55, dir, profile)
	require.NoError(t, err)
	s.AddExchange("вопрос", "ответ")
	require.NoError(t, s.Save())

	reloaded, err := NewSession(55, dir, profile)
	require.NoError(t, err)
	history := reloaded.History()
	require.Len(t, history, 2)
	assert.Equal(t, "вопрос", history[0].Text)
	assert.Equal(t, "ответ", history[1].Text)
	assert.True(t, history[1].IsAssistant)
}

func TestSessionNotifyOnExchange(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "Ты помощник.")
	s.AddExchange("привет")

	select {
	case <-s.NotifyCh():
	default:
		t.Fatal("ожидался сигнал об изменении переписки")
	}
}

func TestSystemPromptWithoutMemory(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "Ты помощник.")
	assert.Equal(t, "Ты помощник.", s.SystemPrompt())
}

func TestMemoryViaTranscript(t *testing.T) {
	t.Parallel()

	tr := &convo.Transcript{ChatID: 1}
	profile := &FileProfile{rules: "правила"}
	_, ok := profile.PreAnswer(tr, "запомни: факт")
	require.True(t, ok)
	assert.Equal(t, "факт", tr.Memory())
}

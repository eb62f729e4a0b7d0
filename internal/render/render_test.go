package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebChatBot/internal/convo"
)

func TestBeautifyEscapesHTML(t *testing.T) {
	t.Parallel()

	got := Beautify([]convo.Entry{
		{Text: `<b>&"'</b>`},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "&lt;b&gt;&amp;&quot;&#39;&lt;/b&gt;<br>", got[0].Text)
}

func TestBeautifyCodeBlock(t *testing.T) {
	t.Parallel()

	got := Beautify([]convo.Entry{
		{IsAssistant: true, Text: "смотри\n```\nif a < b {}\n```\nдальше"},
	})

	require.Len(t, got, 1)
	// Внутри блока кода — перенос строки и HTML-сущности, снаружи <br>
	assert.Contains(t, got[0].Text, "смотри<br>")
	assert.Contains(t, got[0].Text, "</p><pre>")
	assert.Contains(t, got[0].Text, "if a &lt; b {}\n")
	assert.Contains(t, got[0].Text, "</pre><p>")
	assert.Contains(t, got[0].Text, "дальше<br>")
}

// Незакрытый блок кода в одной реплике продолжается в следующей.
func TestBeautifyCodeStatePersistsAcrossEntries(t *testing.T) {
	t.Parallel()

	got := Beautify([]convo.Entry{
		{IsAssistant: true, Text: "```\nвнутри"},
		{IsAssistant: true, Text: "всё ещё внутри"},
	})

	require.Len(t, got, 2)
	assert.Contains(t, got[0].Text, "</p><pre>")
	assert.Contains(t, got[0].Text, "внутри")
	assert.Equal(t, "всё ещё внутри", got[1].Text)
}

func TestBeautifyOptionSelection(t *testing.T) {
	t.Parallel()

	menu := convo.NewEntry(true, "Выбирай:\n1) Чай\n2) Кофе")

	tests := []struct {
		name     string
		selected string
		want     string
	}{
		{name: "valid index shows caption", selected: "2", want: "Кофе"},
		{name: "whitespace around number is ignored", selected: " 1 ", want: "Чай"},
		{name: "out of range falls back to literal text", selected: "5", want: "5<br>"},
		{name: "zero falls back to literal text", selected: "0", want: "0<br>"},
		{name: "non-numeric renders normally", selected: "кофе", want: "кофе<br>"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Beautify([]convo.Entry{menu, {Text: tc.selected}})
			require.Len(t, got, 2)
			assert.Equal(t, tc.want, got[1].Text)
		})
	}
}

// Число в самой первой реплике — не выбор варианта, предыдущей реплики нет.
func TestBeautifyFirstEntryNumberIsLiteral(t *testing.T) {
	t.Parallel()

	got := Beautify([]convo.Entry{{Text: "2"}})
	require.Len(t, got, 1)
	assert.Equal(t, "2<br>", got[0].Text)
}

func TestBeautifyKeepsOptionsAndSource(t *testing.T) {
	t.Parallel()

	src := []convo.Entry{convo.NewEntry(true, "Меню:\n1) Да\n2) Нет")}
	got := Beautify(src)

	require.Len(t, got, 1)
	assert.Equal(t, src[0].Options, got[0].Options)
	// Исходные реплики не изменились
	assert.Equal(t, "Меню:", src[0].Text)
	assert.Equal(t, "Меню:<br>", got[0].Text)
}

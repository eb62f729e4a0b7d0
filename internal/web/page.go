package web

import "html/template"

// Страница чата. Тексты реплик приходят из /convo уже экранированными
// (render.Beautify), поэтому вставляются как innerHTML.
var pageTemplate = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Чат #{{.ChatID}}</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 1em auto; padding: 0 1em; }
.entry { margin: .5em 0; padding: .5em .8em; border-radius: .6em; }
.user { background: #e8f0fe; }
.ai { background: #f1f3f4; }
.entry pre { background: #202124; color: #e8eaed; padding: .6em; overflow-x: auto; }
#options button { margin: .2em; }
#pending { color: #888; }
form { display: flex; gap: .5em; margin-top: 1em; }
input[type=text] { flex: 1; }
</style>
</head>
<body>
<h3>Чат #{{.ChatID}} <small><a href="/new">новый чат</a></small></h3>
<div id="chat"></div>
<div id="options"></div>
<div id="pending" hidden>ассистент печатает…</div>
<form id="form">
<input type="text" name="message" autocomplete="off" autofocus>
<button type="submit">Отправить</button>
</form>
<script>
const chatID = {{.ChatID}};
let pending = false;

function apply(view) {
	pending = view.pending;
	document.getElementById('pending').hidden = !view.pending;
	const chat = document.getElementById('chat');
	chat.innerHTML = '';
	for (const e of view.entries || []) {
		const div = document.createElement('div');
		div.className = 'entry ' + (e.is_assistant ? 'ai' : 'user');
		div.innerHTML = e.text; // уже экранировано сервером
		chat.appendChild(div);
	}
	const opts = document.getElementById('options');
	opts.innerHTML = '';
	if (!view.pending) {
		for (const o of view.options || []) {
			const b = document.createElement('button');
			b.textContent = o.id + ') ' + o.caption;
			b.onclick = () => send(o.id);
			opts.appendChild(b);
		}
	}
	window.scrollTo(0, document.body.scrollHeight);
}

async function refresh() {
	const resp = await fetch('/convo/' + chatID);
	if (resp.ok) apply(await resp.json());
}

async function send(text) {
	const body = new URLSearchParams({message: text});
	await fetch('/convo/' + chatID, {method: 'POST', body: body});
	await refresh();
}

document.getElementById('form').onsubmit = (ev) => {
	ev.preventDefault();
	const input = ev.target.message;
	if (input.value) send(input.value);
	input.value = '';
};

// WebSocket для живых обновлений; при недоступности — опрос снимка
try {
	const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
	const ws = new WebSocket(proto + location.host + '/ws/' + chatID);
	ws.onmessage = (ev) => apply(JSON.parse(ev.data));
	ws.onerror = () => setInterval(() => { if (pending) refresh(); }, 1500);
} catch (e) {
	setInterval(() => { if (pending) refresh(); }, 1500);
}

refresh();
</script>
</body>
</html>
`))

package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool   `env:"DEBUG_MODE"` // Режим дебага (подробные логи)
	BindAddr  string `env:"BIND_ADDR"`  // Адрес HTTP-сервера, напр. 127.0.0.1:8080
	DataDir   string `env:"DATA_DIR"`   // Корневая папка данных; переписки лежат в DataDir/Chatlogs

	// Настройки ассистента
	AssistantFile string `env:"ASSISTANT_FILE"` // Файл с правилами ассистента (системный промпт), относительно DataDir

	// Параметры запросов к модели
	Model             string  `env:"OPENAI_MODEL"`           // Имя модели для Chat Completions
	Temperature       float64 `env:"AI_TEMPERATURE"`         // Температура генерации
	MaxAnswerTokens   int     `env:"AI_MAX_ANSWER_TOKENS"`   // Максимум токенов в ответе модели
	ContextTokenLimit int     `env:"AI_CONTEXT_TOKEN_LIMIT"` // Потолок токенов контекста до урезания истории
	CandidateCount    int     `env:"AI_CANDIDATE_COUNT"`     // Сколько вариантов ответа запрашивать

	// Транспорт
	PushInterval time.Duration `env:"PUSH_INTERVAL"` // Интервал фонового push-обновления по WebSocket
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:     false,
		BindAddr:      "127.0.0.1:8080",
		DataDir:       "data",
		AssistantFile: "assistant.txt",
		// Лимиты подобраны под контекстное окно gpt-3.5/gpt-4o
		Model:             "gpt-4o",
		Temperature:       0.5,
		MaxAnswerTokens:   2500,
		ContextTokenLimit: 4000,
		CandidateCount:    1,
		PushInterval:      2 * time.Second,
	}
}

// NewConfig загружает конфигурацию приложения.
func NewConfig() *Config {
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением и флагами
	cfg := Defaults()
	_ = env.Parse(cfg)

	flag.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага для подробных логов")
	flag.StringVar(&cfg.BindAddr, "bind-addr", cfg.BindAddr, "адрес HTTP-сервера (напр. 127.0.0.1:8080)")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "корневая папка данных (переписки в <data-dir>/Chatlogs)")
	flag.StringVar(&cfg.AssistantFile, "assistant-file", cfg.AssistantFile, "файл с правилами ассистента относительно data-dir")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "имя модели OpenAI для Chat Completions")
	flag.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "температура генерации")
	flag.IntVar(&cfg.MaxAnswerTokens, "max-answer-tokens", cfg.MaxAnswerTokens, "максимум токенов в ответе модели")
	flag.IntVar(&cfg.ContextTokenLimit, "context-token-limit", cfg.ContextTokenLimit, "потолок токенов контекста до урезания истории")
	flag.IntVar(&cfg.CandidateCount, "candidate-count", cfg.CandidateCount, "сколько вариантов ответа запрашивать у модели")
	flag.DurationVar(&cfg.PushInterval, "push-interval", cfg.PushInterval, "интервал фонового push-обновления по WebSocket, напр. 2s")
	flag.Parse()

	return cfg
}

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"WebChatBot/internal/ai"
	"WebChatBot/internal/bot"
	"WebChatBot/internal/config"
	"WebChatBot/internal/registry"
	"WebChatBot/internal/web"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	var logger *zap.Logger
	var err error
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"BindAddr", cfg.BindAddr,
		"Model", cfg.Model,
	)

	// правила ассистента обязаны существовать до старта
	profile, err := bot.NewFileProfile(filepath.Join(cfg.DataDir, cfg.AssistantFile))
	if err != nil {
		sugar.Fatalw("Не удалось загрузить профиль ассистента", "error", err)
	}

	// реальный клиент OpenAI (использует переменные окружения, напр. OPENAI_API_KEY)
	oClient := openai.NewClient()
	completer := ai.NewOpenAIClient(&oClient, cfg.Model)

	chatlogDir := filepath.Join(cfg.DataDir, "Chatlogs")
	factory := func(chatID int) (*bot.Session, error) {
		return bot.NewSession(chatID, chatlogDir, profile)
	}

	reg := registry.New(cfg, factory, completer, sugar)
	srv := web.NewServer(cfg, reg, sugar)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		sugar.Fatalw("Не удалось запустить сервер", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	sugar.Infow("Stopping app")
	if err := srv.Stop(context.Background()); err != nil {
		sugar.Warnw("Ошибка останова сервера", "error", err)
	}
	// дождаться запросов, уже ушедших в модель
	reg.Wait()
}

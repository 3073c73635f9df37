package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weekTracker/internal/client"
	"weekTracker/internal/config"
	"weekTracker/internal/focus"
	"weekTracker/internal/logger"
	"weekTracker/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "путь к config.yml")
	taskID := flag.String("task", "", "ID задачи, которую открыть сразу")
	mode := flag.String("mode", string(focus.ModePomodoro), "режим таймера: pomodoro или stopwatch")
	logFile := flag.String("log", "focus.log", "файл журнала")
	flag.Parse()

	if err := run(*configPath, *taskID, focus.Mode(*mode), *logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, taskID string, mode focus.Mode, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("конфигурация: %w", err)
	}
	if err := cfg.ValidateClient(); err != nil {
		return fmt.Errorf("проверка конфигурации: %w", err)
	}
	if mode != focus.ModePomodoro && mode != focus.ModeStopwatch {
		return fmt.Errorf("неизвестный режим %q", mode)
	}

	var preselected uuid.UUID
	if taskID != "" {
		if preselected, err = uuid.Parse(taskID); err != nil {
			return fmt.Errorf("неверный ID задачи: %w", err)
		}
	}

	// stdout занят интерфейсом, журнал пишется только в файл
	if err := logger.Init(cfg.Logging.Development, logFile); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := []notify.Sink{notify.LogSink{}}
	if cfg.Notify.Telegram.Enabled() {
		tg, err := notify.NewTelegramSink(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			logger.Warn("Client: Telegram недоступен, уведомления только в журнал", zap.Error(err))
		} else {
			sinks = append(sinks, tg)
		}
	}
	notifier := notify.New(cfg.Notify.FlashDuration, sinks...)
	if err := notifier.Init(ctx); err != nil {
		return fmt.Errorf("уведомления: %w", err)
	}
	defer notifier.Dispose()

	api := client.New(cfg.Client.BaseURL, cfg.Client.Token, cfg.Client.Timeout)
	model := focus.New(ctx, api, api, focus.Options{
		Settings:  cfg.Pomodoro,
		Notifier:  notifier,
		TaskID:    preselected,
		Mode:      mode,
		TickEvery: focus.DefaultTickEvery,
	})

	logger.Info("Client: Запуск таймера", zap.String("api", cfg.Client.BaseURL), zap.String("mode", string(mode)))
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("интерфейс: %w", err)
	}
	return nil
}

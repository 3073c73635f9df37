package notify

import (
	"context"
	"fmt"

	"weekTracker/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type LogSink struct{}

func (LogSink) Name() string {
	return "log"
}

func (LogSink) Send(_ context.Context, n Notification) error {
	logger.Info("Notify: "+n.Title, zap.String("body", n.Body))
	return nil
}

// TelegramSink отправляет уведомления в один чат
type TelegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	return NewTelegramSinkWithEndpoint(token, tgbotapi.APIEndpoint, chatID)
}

func NewTelegramSinkWithEndpoint(token, endpoint string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("подключение к telegram: %w", err)
	}
	logger.Info("Notify: Подключен telegram бот", zap.String("bot", bot.Self.UserName))
	return &TelegramSink{bot: bot, chatID: chatID}, nil
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

func (s *TelegramSink) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chatID, n.String())
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("отправка сообщения: %w", err)
	}
	return nil
}

package service

import (
	"context"

	"lavka/pkg/logger"
)

// LogMessenger пишет исходящие сообщения в лог вместо реальной отправки
// Подменяется настоящим шлюзом мессенджера через интерфейс Messenger
type LogMessenger struct{}

// NewLogMessenger создает log-based отправитель сообщений
func NewLogMessenger() *LogMessenger {
	return &LogMessenger{}
}

// SendMessage логирует сообщение как доставленное
func (m *LogMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	logger.Info().
		Int64("chat_id", chatID).
		Str("text", text).
		Msg("outgoing message")
	return nil
}

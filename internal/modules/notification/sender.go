package notification

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers a message to a chat right away.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

var _ Sender = (*LogSender)(nil)

// LogSender writes messages to the log. Used when no chat transport is configured.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(_ context.Context, chatID int64, text string) error {
	s.Logger.Info("message", zap.Int64("chat_id", chatID), zap.String("text", text))
	return nil
}

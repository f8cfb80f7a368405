package telegram

import (
	"context"

	"github.com/eskrenkovic/slotbot/internal/modules/notification"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var _ notification.Sender = (*Sender)(nil)

// Sender posts fired notifications as markdown chat messages.
type Sender struct {
	api    botAPI
	logger *zap.Logger
}

func NewSender(api botAPI, logger *zap.Logger) *Sender {
	return &Sender{api: api, logger: logger}
}

func (s *Sender) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := s.api.Send(msg); err != nil {
		return err
	}

	s.logger.Debug("message sent", zap.Int64("chat_id", chatID))
	return nil
}

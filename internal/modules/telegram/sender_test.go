package telegram_test

import (
	"context"
	"testing"

	"github.com/eskrenkovic/slotbot/internal/modules/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_Sender_Sends_Markdown_Message(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	sender := telegram.NewSender(api, zap.NewNop())

	// Act
	err := sender.Send(context.Background(), 42, `\[_auto_] *20:00 EU*: @p1 go go!`)

	// Assert
	require.NoError(t, err)

	msg, ok := api.lastSent().(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, int64(42), msg.ChatID)
	require.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	require.Contains(t, msg.Text, "go go!")
}

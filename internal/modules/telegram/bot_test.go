package telegram_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/eskrenkovic/slotbot/internal/config"
	"github.com/eskrenkovic/slotbot/internal/modules/notification/notificationtest"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/queries"
	"github.com/eskrenkovic/slotbot/internal/modules/telegram"
	"github.com/eskrenkovic/slotbot/internal/server"

	"github.com/eskrenkovic/mediator-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var settings roster.Settings

func TestMain(m *testing.M) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	settings = roster.DefaultSettings()
	settings.Renderer = domain.NewRenderer(loc)
	settings.Now = func() time.Time { return time.Date(2024, 3, 5, 15, 0, 0, 0, loc) }

	_, err = server.RegisterModules(server.Modules{
		Rosters:   roster.NewMemoryStore(),
		Players:   player.NewMemoryStore(),
		Scheduler: notificationtest.NewRecordingScheduler(),
		Sender:    &notificationtest.RecordingSender{},
		Settings:  settings,
		Access:    config.RosterConfiguration{},
		Logger:    zap.NewNop(),
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newBot() (*telegram.Bot, *fakeAPI) {
	api := newFakeAPI()
	return telegram.NewBot(api, settings, zap.NewNop()), api
}

func lastReply(t *testing.T, api *fakeAPI) tgbotapi.MessageConfig {
	t.Helper()

	msg, ok := api.lastSent().(tgbotapi.MessageConfig)
	require.True(t, ok, "expected a new message, got %T", api.lastSent())
	return msg
}

func rostersOf(t *testing.T, chatID int64) []domain.Roster {
	t.Helper()

	rosters, err := mediator.Send[queries.ListRostersQuery, []domain.Roster](
		context.Background(),
		queries.ListRostersQuery{ChatID: chatID},
	)
	require.NoError(t, err)
	return rosters
}

func Test_Slot_Command_Creates_Roster_And_Replies_With_Status(t *testing.T) {
	// Arrange
	const chatID = -1001
	bot, api := newBot()

	// Act
	bot.HandleUpdate(context.Background(), commandUpdate(chatID, 1, "ann", "/slot 20:00"))

	// Assert
	reply := lastReply(t, api)
	require.Equal(t, int64(chatID), reply.ChatID)
	require.Equal(t, tgbotapi.ModeMarkdown, reply.ParseMode)
	require.Contains(t, reply.Text, "*20:00 EU*: 1 slot taken.")
	require.Contains(t, reply.Text, "ann")

	keyboard, ok := reply.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)

	rosters := rostersOf(t, chatID)
	require.Len(t, rosters, 1)
	require.Equal(t, fmt.Sprintf("leave_%d", rosters[0].ID), *keyboard.InlineKeyboard[0][0].CallbackData)
}

func Test_Slot_Command_Without_Arguments_Offers_Hours(t *testing.T) {
	// Arrange
	bot, api := newBot()

	// Act
	bot.HandleUpdate(context.Background(), commandUpdate(-1002, 1, "ann", "/slot"))

	// Assert
	reply := lastReply(t, api)
	require.Equal(t, "Pick an hour:", reply.Text)

	keyboard, ok := reply.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Equal(t, "18:00", *keyboard.InlineKeyboard[0][0].CallbackData)
}

func Test_Slot_Command_With_Bad_Time_Explains_Usage(t *testing.T) {
	// Arrange
	const chatID = -1003
	bot, api := newBot()

	// Act
	bot.HandleUpdate(context.Background(), commandUpdate(chatID, 1, "ann", "/slot 25:99"))

	// Assert
	require.Equal(t, "Use HH:MM, for example /slot 20:00.", lastReply(t, api).Text)
	require.Empty(t, rostersOf(t, chatID))
}

func Test_Join_And_Leave_Callbacks_Update_Roster(t *testing.T) {
	// Arrange
	const chatID = -1004
	ctx := context.Background()
	bot, api := newBot()

	bot.HandleUpdate(ctx, commandUpdate(chatID, 1, "ann", "/slot 21:00"))
	rosters := rostersOf(t, chatID)
	require.Len(t, rosters, 1)
	id := rosters[0].ID

	// Act
	bot.HandleUpdate(ctx, callbackUpdate(chatID, 2, "bob", fmt.Sprintf("join_%d", id)))

	// Assert
	answer, ok := api.lastRequest().(tgbotapi.CallbackConfig)
	require.True(t, ok)
	require.Equal(t, "You're in!", answer.Text)

	edit, ok := api.lastSent().(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	require.Equal(t, 10, edit.MessageID)
	require.Contains(t, edit.Text, "2 slots taken.")

	// Act
	bot.HandleUpdate(ctx, callbackUpdate(chatID, 2, "bob", fmt.Sprintf("leave_%d", id)))

	// Assert
	answer, ok = api.lastRequest().(tgbotapi.CallbackConfig)
	require.True(t, ok)
	require.Equal(t, "You're out.", answer.Text)
	require.Equal(t, 1, rostersOf(t, chatID)[0].SlotCount())
}

func Test_Leave_Callback_Of_Last_Player_Removes_Roster(t *testing.T) {
	// Arrange
	const chatID = -1005
	ctx := context.Background()
	bot, api := newBot()

	bot.HandleUpdate(ctx, commandUpdate(chatID, 1, "ann", "/slot 22:00"))
	id := rostersOf(t, chatID)[0].ID

	// Act
	bot.HandleUpdate(ctx, callbackUpdate(chatID, 1, "ann", fmt.Sprintf("leave_%d", id)))

	// Assert
	answer, ok := api.lastRequest().(tgbotapi.CallbackConfig)
	require.True(t, ok)
	require.Equal(t, "You left. The game was removed.", answer.Text)
	require.Empty(t, rostersOf(t, chatID))
}

func Test_Call_Callback_Without_Enough_Players_Is_Refused(t *testing.T) {
	// Arrange
	const chatID = -1006
	ctx := context.Background()
	bot, api := newBot()

	bot.HandleUpdate(ctx, commandUpdate(chatID, 1, "ann", "/slot 23:00"))
	id := rostersOf(t, chatID)[0].ID

	// Act
	bot.HandleUpdate(ctx, callbackUpdate(chatID, 1, "ann", fmt.Sprintf("call_%d", id)))

	// Assert
	answer, ok := api.lastRequest().(tgbotapi.CallbackConfig)
	require.True(t, ok)
	require.Equal(t, "Calling opens shortly before the game once enough players are in.", answer.Text)
}

func Test_All_In_Joins_Existing_Games_Only(t *testing.T) {
	// Arrange
	const chatID = -1007
	ctx := context.Background()
	bot, api := newBot()

	bot.HandleUpdate(ctx, commandUpdate(chatID, 1, "ann", "/slot 20:30"))

	// Act
	bot.HandleUpdate(ctx, commandUpdate(chatID, 2, "bob", "/all in"))

	// Assert
	rosters := rostersOf(t, chatID)
	require.Len(t, rosters, 1)
	require.Equal(t, 2, rosters[0].SlotCount())
	require.Contains(t, lastReply(t, api).Text, "*20:30 EU*: 2 slots taken.")
}

func Test_All_Out_Leaves_Off_Hour_Game(t *testing.T) {
	// Arrange
	const chatID = -1008
	ctx := context.Background()
	bot, api := newBot()

	bot.HandleUpdate(ctx, commandUpdate(chatID, 1, "ann", "/slot 20:30"))

	// Act
	bot.HandleUpdate(ctx, commandUpdate(chatID, 1, "ann", "/all out"))

	// Assert
	require.Empty(t, rostersOf(t, chatID))
	require.Equal(t, domain.EmptyChatStatus, lastReply(t, api).Text)
}

func Test_Tz_Command(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "known zone", arg: "Europe/London", want: "set to Europe/London."},
		{name: "unknown zone", arg: "Mars/Olympus", want: "Unknown timezone, use a name like Europe/London."},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			bot, api := newBot()

			// Act
			bot.HandleUpdate(context.Background(), commandUpdate(-1010, int64(100+i), "tz_user", "/tz "+tt.arg))

			// Assert
			require.Contains(t, lastReply(t, api).Text, tt.want)
		})
	}
}

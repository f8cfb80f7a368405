package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	playercommands "github.com/eskrenkovic/slotbot/internal/modules/player/commands"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/commands"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/queries"

	"github.com/eskrenkovic/mediator-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	callbackJoin       = "join_"
	callbackLeave      = "leave_"
	callbackCall       = "call_"
	callbackPickHour   = "pick_hour"
	callbackBackToMain = "back_to_main"
	callbackStatus     = "status_conv"
)

const helpText = `/slot HH:MM - create a game, or pick an hour without arguments
/in 18-21 - join the games at these hours
/out 22 - leave the games at these hours
/all in|out - join or leave every game tonight
/status - show tonight's games
/tz Europe/London - set your timezone`

// HandleUpdate routes one update. Errors end up as replies in the chat.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) resolvePlayer(ctx context.Context, chatID int64, user *tgbotapi.User) (context.Context, playerdomain.Player, error) {
	if user == nil {
		return ctx, playerdomain.Player{}, fmt.Errorf("update without sender")
	}

	p, err := mediator.Send[playercommands.ResolvePlayerCommand, playerdomain.Player](
		ctx,
		playercommands.ResolvePlayerCommand{
			UserID:    user.ID,
			Username:  user.UserName,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	)
	if err != nil {
		return ctx, playerdomain.Player{}, err
	}

	ctx = core.WithSession(ctx, core.ContextSession{ChatID: chatID, PlayerID: p.ID, UserID: user.ID})
	return ctx, p, nil
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	ctx, p, err := b.resolvePlayer(ctx, chatID, message.From)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "slot":
		if len(args) == 0 {
			b.replyHourPicker(ctx, chatID, p)
			return
		}
		b.createRoster(ctx, chatID, 0, p, args[0])

	case "in", "out":
		if len(args) == 0 {
			b.reply(ctx, chatID, fmt.Sprintf("Usage: /%s 18-21 or /%s 22", message.Command(), message.Command()), nil)
			return
		}
		b.slotInOut(ctx, chatID, p, message.Command(), args)

	case "all":
		if len(args) != 1 || (args[0] != commands.ActionIn && args[0] != commands.ActionOut) {
			b.reply(ctx, chatID, "Usage: /all in or /all out", nil)
			return
		}
		b.slotInOut(ctx, chatID, p, args[0], []string{commands.AllHours})

	case "status":
		b.replyStatus(ctx, chatID, p)

	case "tz":
		b.setTimezone(ctx, chatID, p, strings.Join(args, " "))

	case "start", "help":
		b.reply(ctx, chatID, helpText, nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	ctx, p, err := b.resolvePlayer(ctx, chatID, callback.From)
	if err != nil {
		b.answer(ctx, callback.ID, userMessage(err))
		return
	}

	data := callback.Data
	switch {
	case strings.HasPrefix(data, callbackJoin):
		b.onRosterAction(ctx, callback, p, strings.TrimPrefix(data, callbackJoin), b.join)

	case strings.HasPrefix(data, callbackLeave):
		b.onRosterAction(ctx, callback, p, strings.TrimPrefix(data, callbackLeave), b.leave)

	case strings.HasPrefix(data, callbackCall):
		b.onRosterAction(ctx, callback, p, strings.TrimPrefix(data, callbackCall), b.call)

	case data == callbackPickHour:
		b.answer(ctx, callback.ID, "")
		b.editHourPicker(ctx, chatID, messageID, p)

	case data == callbackBackToMain || data == callbackStatus:
		b.answer(ctx, callback.ID, "")
		b.editStatus(ctx, chatID, messageID, p)

	case domain.IsTimeslotToken(data):
		b.answer(ctx, callback.ID, "")
		b.createRoster(ctx, chatID, messageID, p, data)

	default:
		b.logger.Warn("unknown callback", zap.String("data", data), zap.Int64("chat_id", chatID))
		b.answer(ctx, callback.ID, "")
	}
}

type rosterAction func(ctx context.Context, chatID int64, p playerdomain.Player, rosterID int64) (string, error)

func (b *Bot) onRosterAction(
	ctx context.Context,
	callback *tgbotapi.CallbackQuery,
	p playerdomain.Player,
	rawID string,
	action rosterAction,
) {
	chatID := callback.Message.Chat.ID

	rosterID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.answer(ctx, callback.ID, "Unknown game.")
		return
	}

	notice, err := action(ctx, chatID, p, rosterID)
	if err != nil {
		b.answer(ctx, callback.ID, userMessage(err))
		return
	}

	b.answer(ctx, callback.ID, notice)
	b.editStatus(ctx, chatID, callback.Message.MessageID, p)
}

func (b *Bot) join(ctx context.Context, chatID int64, p playerdomain.Player, rosterID int64) (string, error) {
	_, err := mediator.Send[commands.JoinRosterCommand, domain.Roster](
		ctx,
		commands.JoinRosterCommand{ChatID: chatID, PlayerID: p.ID, RosterID: rosterID},
	)
	return "You're in!", err
}

func (b *Bot) leave(ctx context.Context, chatID int64, p playerdomain.Player, rosterID int64) (string, error) {
	response, err := mediator.Send[commands.LeaveRosterCommand, commands.LeaveRosterResponse](
		ctx,
		commands.LeaveRosterCommand{ChatID: chatID, PlayerID: p.ID, RosterID: rosterID},
	)
	if err == nil && response.Deleted {
		return "You left. The game was removed.", nil
	}
	return "You're out.", err
}

func (b *Bot) call(ctx context.Context, chatID int64, p playerdomain.Player, rosterID int64) (string, error) {
	_, err := mediator.Send[commands.CallEveryoneCommand, domain.Roster](
		ctx,
		commands.CallEveryoneCommand{ChatID: chatID, PlayerID: p.ID, RosterID: rosterID},
	)
	return "Calling everyone!", err
}

// createRoster answers in place of messageID when it is set.
func (b *Bot) createRoster(ctx context.Context, chatID int64, messageID int, p playerdomain.Player, token string) {
	_, err := mediator.Send[commands.CreateRosterCommand, commands.CreateRosterResponse](
		ctx,
		commands.CreateRosterCommand{ChatID: chatID, PlayerID: p.ID, Token: token},
	)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	if messageID != 0 {
		b.editStatus(ctx, chatID, messageID, p)
		return
	}
	b.replyStatus(ctx, chatID, p)
}

func (b *Bot) slotInOut(ctx context.Context, chatID int64, p playerdomain.Player, action string, args []string) {
	_, err := mediator.Send[commands.SlotInOutCommand, commands.SlotInOutResponse](
		ctx,
		commands.SlotInOutCommand{ChatID: chatID, PlayerID: p.ID, Action: action, Args: args},
	)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.replyStatus(ctx, chatID, p)
}

func (b *Bot) setTimezone(ctx context.Context, chatID int64, p playerdomain.Player, timezone string) {
	updated, err := mediator.Send[playercommands.SetTimezoneCommand, playerdomain.Player](
		ctx,
		playercommands.SetTimezoneCommand{PlayerID: p.ID, Timezone: timezone},
	)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("Timezone of %s set to %s.", updated.Mention(), playerdomain.EscapeMarkdown(updated.Timezone)), nil)
}

func (b *Bot) status(ctx context.Context, chatID int64, p playerdomain.Player) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	response, err := mediator.Send[queries.RenderStatusQuery, queries.RenderStatusResponse](
		ctx,
		queries.RenderStatusQuery{ChatID: chatID, PlayerID: p.ID},
	)
	if err != nil {
		return "", nil, err
	}

	keyboard := statusKeyboard(response.Rosters, p, b.settings)
	return response.Text, &keyboard, nil
}

func (b *Bot) replyStatus(ctx context.Context, chatID int64, p playerdomain.Player) {
	text, keyboard, err := b.status(ctx, chatID, p)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(ctx, chatID, text, keyboard)
}

func (b *Bot) editStatus(ctx context.Context, chatID int64, messageID int, p playerdomain.Player) {
	text, keyboard, err := b.status(ctx, chatID, p)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.edit(ctx, chatID, messageID, text, *keyboard)
}

func (b *Bot) hourPicker(ctx context.Context, chatID int64, p playerdomain.Player) (string, tgbotapi.InlineKeyboardMarkup, error) {
	hours, err := mediator.Send[queries.ListAvailableHoursQuery, []queries.AvailableHour](
		ctx,
		queries.ListAvailableHoursQuery{ChatID: chatID, PlayerID: p.ID},
	)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}

	if len(hours) == 0 {
		return "Every hour tonight is taken or already over.", backKeyboard(), nil
	}

	return "Pick an hour:", hourKeyboard(hours), nil
}

func (b *Bot) replyHourPicker(ctx context.Context, chatID int64, p playerdomain.Player) {
	text, keyboard, err := b.hourPicker(ctx, chatID, p)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(ctx, chatID, text, &keyboard)
}

func (b *Bot) editHourPicker(ctx context.Context, chatID int64, messageID int, p playerdomain.Player) {
	text, keyboard, err := b.hourPicker(ctx, chatID, p)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.edit(ctx, chatID, messageID, text, keyboard)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := b.api.Send(msg); err != nil {
		core.LogError(ctx, "failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(edit); err != nil {
		core.LogError(ctx, "failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		core.LogError(ctx, "failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	b.reply(ctx, chatID, playerdomain.EscapeMarkdown(userMessage(err)), nil)
}

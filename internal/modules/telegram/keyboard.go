package telegram

import (
	"strconv"

	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/queries"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const hoursPerRow = 4

// statusKeyboard has one row per roster with a leave button for members
// and a join button for everyone else. The call button only shows when
// viewer may call right now.
func statusKeyboard(rosters []domain.Roster, viewer playerdomain.Player, settings roster.Settings) tgbotapi.InlineKeyboardMarkup {
	loc := settings.Location(viewer.Timezone)
	now := settings.Time()

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rosters)+1)
	for _, r := range rosters {
		id := strconv.FormatInt(r.ID, 10)
		label := r.Timeslot.In(loc).Format("15:04")

		button := tgbotapi.NewInlineKeyboardButtonData("✅ "+label, callbackJoin+id)
		if r.HasPlayer(viewer.ID) {
			button = tgbotapi.NewInlineKeyboardButtonData("❌ "+label, callbackLeave+id)
		}

		row := tgbotapi.NewInlineKeyboardRow(button)
		if r.CanCall(viewer.ID, now, settings.Call) == nil {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("📣 Call", callbackCall+id))
		}

		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ New game", callbackPickHour),
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", callbackStatus),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func hourKeyboard(hours []queries.AvailableHour) tgbotapi.InlineKeyboardMarkup {
	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)

	for _, h := range hours {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(h.Token, h.Token))
		if len(row) == hoursPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(backRow())
}

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", callbackBackToMain),
	)
}

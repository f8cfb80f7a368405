package telegram

import (
	"errors"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

var userMessages = []struct {
	err  error
	text string
}{
	{domain.ErrInvalidTimeslot, "Use HH:MM, for example /slot 20:00."},
	{domain.ErrDuplicateSlot, "There is already a game at that time."},
	{domain.ErrRosterNotFound, "That game no longer exists."},
	{domain.ErrRosterExpired, "That game is already over."},
	{domain.ErrCallNotAllowed, "Calling opens shortly before the game once enough players are in."},
	{domain.ErrChatNotAllowed, "This chat is not allowed to use the bot."},
	{domain.ErrDayOff, "It's a day off. No games today!"},
	{playerdomain.ErrPlayerNotFound, "I don't know you yet, say /start first."},
	{playerdomain.ErrUnknownTimezone, "Unknown timezone, use a name like Europe/London."},
}

// userMessage turns err into a plain sentence for the chat. Internal
// failures never leak their details.
func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}

	if status := core.StatusCode(err); status >= 400 && status < 500 {
		return "That didn't work, check the command and try again."
	}

	return "Something went wrong, try again later."
}

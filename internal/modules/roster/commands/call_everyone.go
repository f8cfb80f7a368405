package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

// CallEveryoneCommand pings the active members of a roster right away,
// replacing any pending reminder.
type CallEveryoneCommand struct {
	ChatID   int64
	PlayerID int64
	RosterID int64
}

func (c CallEveryoneCommand) Chat() int64 {
	return c.ChatID
}

func (c CallEveryoneCommand) Validate() error {
	if c.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", c.ChatID)
	}

	if c.PlayerID == 0 {
		return fmt.Errorf("invalid PlayerID - '%d'", c.PlayerID)
	}

	if c.RosterID == 0 {
		return fmt.Errorf("invalid RosterID - '%d'", c.RosterID)
	}

	return nil
}

type CallEveryoneCommandHandler struct {
	store    roster.Store
	players  player.Store
	notifier *roster.Notifier
	settings roster.Settings
}

func NewCallEveryoneCommandHandler(
	store roster.Store,
	players player.Store,
	notifier *roster.Notifier,
	settings roster.Settings,
) *CallEveryoneCommandHandler {
	return &CallEveryoneCommandHandler{
		store:    store,
		players:  players,
		notifier: notifier,
		settings: settings,
	}
}

func (h *CallEveryoneCommandHandler) Handle(
	ctx context.Context,
	request CallEveryoneCommand,
) (domain.Roster, error) {
	p, err := loadPlayer(ctx, h.players, request.PlayerID)
	if err != nil {
		return domain.Roster{}, mapError(err)
	}

	r, err := loadLiveRoster(ctx, h.store, request.ChatID, request.RosterID)
	if err != nil {
		return domain.Roster{}, mapError(err)
	}

	if err := r.CanCall(p.ID, h.settings.Time(), h.settings.Call); err != nil {
		return domain.Roster{}, mapError(err)
	}

	if err := h.notifier.Call(ctx, r, p); err != nil {
		return domain.Roster{}, mapError(err)
	}

	return r, nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

type JoinRosterCommand struct {
	ChatID   int64
	PlayerID int64
	RosterID int64
}

func (c JoinRosterCommand) Chat() int64 {
	return c.ChatID
}

func (c JoinRosterCommand) Validate() error {
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

type JoinRosterCommandHandler struct {
	store    roster.Store
	players  player.Store
	settings roster.Settings
}

func NewJoinRosterCommandHandler(store roster.Store, players player.Store, settings roster.Settings) *JoinRosterCommandHandler {
	return &JoinRosterCommandHandler{store, players, settings}
}

// Handle adds the player to the roster. Joining twice changes nothing.
func (h *JoinRosterCommandHandler) Handle(
	ctx context.Context,
	request JoinRosterCommand,
) (domain.Roster, error) {
	p, err := loadPlayer(ctx, h.players, request.PlayerID)
	if err != nil {
		return domain.Roster{}, mapError(err)
	}

	r, err := loadLiveRoster(ctx, h.store, request.ChatID, request.RosterID)
	if err != nil {
		return domain.Roster{}, mapError(err)
	}

	r, err = join(ctx, h.store, r, p, h.settings.Time())
	if err != nil {
		return domain.Roster{}, mapError(err)
	}

	return r, nil
}

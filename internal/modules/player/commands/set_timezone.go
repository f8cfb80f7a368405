package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/player/domain"
)

type SetTimezoneCommand struct {
	PlayerID int64
	Timezone string
}

func (c SetTimezoneCommand) Validate() error {
	if c.PlayerID == 0 {
		return fmt.Errorf("invalid PlayerID - '%d'", c.PlayerID)
	}

	if _, err := domain.ValidateTimezone(c.Timezone); err != nil {
		return err
	}

	return nil
}

type SetTimezoneCommandHandler struct {
	store player.Store
}

func NewSetTimezoneCommandHandler(store player.Store) *SetTimezoneCommandHandler {
	return &SetTimezoneCommandHandler{store}
}

func (h *SetTimezoneCommandHandler) Handle(
	ctx context.Context,
	request SetTimezoneCommand,
) (domain.Player, error) {
	p, err := h.store.Get(ctx, request.PlayerID)
	if err != nil {
		return domain.Player{}, core.MapError(err, core.ErrorStatus{Err: domain.ErrPlayerNotFound, StatusCode: 404})
	}

	p.Timezone = request.Timezone
	if err := h.store.Save(ctx, p); err != nil {
		return domain.Player{}, core.MapError(err, core.ErrorStatus{Err: domain.ErrPlayerNotFound, StatusCode: 404})
	}

	return p, nil
}

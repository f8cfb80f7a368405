package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/player/domain"
)

// ResolvePlayerCommand maps a transport user onto a Player, creating it on
// first sight and keeping display names in sync afterwards.
type ResolvePlayerCommand struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

func (c ResolvePlayerCommand) Validate() error {
	if c.UserID == 0 {
		return fmt.Errorf("invalid UserID - '%d'", c.UserID)
	}

	return nil
}

type ResolvePlayerCommandHandler struct {
	store player.Store
}

func NewResolvePlayerCommandHandler(store player.Store) *ResolvePlayerCommandHandler {
	return &ResolvePlayerCommandHandler{store}
}

func (h *ResolvePlayerCommandHandler) Handle(
	ctx context.Context,
	request ResolvePlayerCommand,
) (domain.Player, error) {
	p, err := h.store.Upsert(ctx, domain.Player{
		UserID:    request.UserID,
		Username:  request.Username,
		FirstName: request.FirstName,
		LastName:  request.LastName,
	})
	if err != nil {
		return domain.Player{}, core.NewCommandError(500, err)
	}

	return p, nil
}

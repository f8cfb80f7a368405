package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/slotbot/internal/modules/roster"
)

type ExpireRostersCommand struct {
	ChatID int64
}

func (c ExpireRostersCommand) Chat() int64 {
	return c.ChatID
}

func (c ExpireRostersCommand) Validate() error {
	if c.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", c.ChatID)
	}

	return nil
}

type ExpireRostersResponse struct {
	Expired int `json:"expired"`
}

type ExpireRostersCommandHandler struct {
	store    roster.Store
	settings roster.Settings
}

func NewExpireRostersCommandHandler(store roster.Store, settings roster.Settings) *ExpireRostersCommandHandler {
	return &ExpireRostersCommandHandler{store, settings}
}

func (h *ExpireRostersCommandHandler) Handle(
	ctx context.Context,
	request ExpireRostersCommand,
) (ExpireRostersResponse, error) {
	expired, err := roster.ExpireStale(ctx, h.store, request.ChatID, h.settings.Time(), h.settings.ExpiryWindow)
	if err != nil {
		return ExpireRostersResponse{}, mapError(err)
	}

	return ExpireRostersResponse{Expired: expired}, nil
}

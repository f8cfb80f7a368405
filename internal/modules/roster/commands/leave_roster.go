package commands

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

type LeaveRosterCommand struct {
	ChatID   int64
	PlayerID int64
	RosterID int64
}

func (c LeaveRosterCommand) Chat() int64 {
	return c.ChatID
}

func (c LeaveRosterCommand) Validate() error {
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

type LeaveRosterResponse struct {
	Roster  domain.Roster `json:"roster"`
	Deleted bool          `json:"deleted"`
}

type LeaveRosterCommandHandler struct {
	store    roster.Store
	players  player.Store
	notifier *roster.Notifier
}

func NewLeaveRosterCommandHandler(store roster.Store, players player.Store, notifier *roster.Notifier) *LeaveRosterCommandHandler {
	return &LeaveRosterCommandHandler{store, players, notifier}
}

func (h *LeaveRosterCommandHandler) Handle(
	ctx context.Context,
	request LeaveRosterCommand,
) (LeaveRosterResponse, error) {
	p, err := loadPlayer(ctx, h.players, request.PlayerID)
	if err != nil {
		return LeaveRosterResponse{}, mapError(err)
	}

	r, err := loadRoster(ctx, h.store, request.ChatID, request.RosterID)
	if err != nil {
		return LeaveRosterResponse{}, mapError(err)
	}

	r, deleted, err := leave(ctx, h.store, h.notifier, r, p)
	if err != nil {
		return LeaveRosterResponse{}, mapError(err)
	}

	return LeaveRosterResponse{Roster: r, Deleted: deleted}, nil
}

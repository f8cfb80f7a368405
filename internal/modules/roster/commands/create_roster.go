package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

// CreateRosterCommand opens a game at Timeslot, or at Token ("HH:MM")
// read in the creator's timezone when Timeslot is zero.
type CreateRosterCommand struct {
	ChatID   int64
	PlayerID int64
	Timeslot time.Time
	Token    string
}

func (c CreateRosterCommand) Chat() int64 {
	return c.ChatID
}

func (c CreateRosterCommand) Validate() error {
	if c.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", c.ChatID)
	}

	if c.PlayerID == 0 {
		return fmt.Errorf("invalid PlayerID - '%d'", c.PlayerID)
	}

	if c.Timeslot.IsZero() && c.Token == "" {
		return fmt.Errorf("invalid Token - '%s'", c.Token)
	}

	return nil
}

type CreateRosterResponse struct {
	Roster domain.Roster `json:"roster"`
	// Existing is set when the slot was taken and the creator joined it instead.
	Existing bool `json:"existing"`
}

type CreateRosterCommandHandler struct {
	store    roster.Store
	players  player.Store
	notifier *roster.Notifier
	settings roster.Settings
}

func NewCreateRosterCommandHandler(
	store roster.Store,
	players player.Store,
	notifier *roster.Notifier,
	settings roster.Settings,
) *CreateRosterCommandHandler {
	return &CreateRosterCommandHandler{
		store:    store,
		players:  players,
		notifier: notifier,
		settings: settings,
	}
}

func (h *CreateRosterCommandHandler) Handle(
	ctx context.Context,
	request CreateRosterCommand,
) (CreateRosterResponse, error) {
	p, err := loadPlayer(ctx, h.players, request.PlayerID)
	if err != nil {
		return CreateRosterResponse{}, mapError(err)
	}

	now := h.settings.Time()

	timeslot := request.Timeslot.UTC()
	if request.Timeslot.IsZero() {
		timeslot, err = h.settings.Resolver.Resolve(request.Token, h.settings.Location(p.Timezone), now)
		if err != nil {
			return CreateRosterResponse{}, mapError(err)
		}
	}

	if !timeslot.After(now) {
		return CreateRosterResponse{}, mapError(fmt.Errorf("%w: %s is in the past", domain.ErrInvalidTimeslot, timeslot.Format(time.RFC3339)))
	}

	r, existing, err := createOrJoin(ctx, h.store, h.notifier, request.ChatID, timeslot, p, now)
	if err != nil {
		return CreateRosterResponse{}, mapError(err)
	}

	return CreateRosterResponse{Roster: r, Existing: existing}, nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/player"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

const (
	ActionIn  = "in"
	ActionOut = "out"

	// AllHours selects every live roster of the chat.
	AllHours = "all"
)

// SlotInOutCommand joins or leaves the games at several hours at once.
// Args hold hours ("22"), ranges over the main hours ("18-21") or "all",
// which acts on the rosters that already exist and never creates one.
type SlotInOutCommand struct {
	ChatID   int64
	PlayerID int64
	Action   string
	Args     []string
}

func (c SlotInOutCommand) Chat() int64 {
	return c.ChatID
}

func (c SlotInOutCommand) Validate() error {
	if c.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", c.ChatID)
	}

	if c.PlayerID == 0 {
		return fmt.Errorf("invalid PlayerID - '%d'", c.PlayerID)
	}

	if c.Action != ActionIn && c.Action != ActionOut {
		return fmt.Errorf("invalid Action - '%s'", c.Action)
	}

	if len(c.Args) == 0 {
		return fmt.Errorf("invalid Args - '%v'", c.Args)
	}

	return nil
}

type SlotInOutResponse struct {
	// Rosters lists the rosters that still exist after the change.
	Rosters []domain.Roster `json:"rosters"`
	Deleted []int64         `json:"deleted"`
	Hours   []int           `json:"hours"`
}

type SlotInOutCommandHandler struct {
	store    roster.Store
	players  player.Store
	notifier *roster.Notifier
	settings roster.Settings
}

func NewSlotInOutCommandHandler(
	store roster.Store,
	players player.Store,
	notifier *roster.Notifier,
	settings roster.Settings,
) *SlotInOutCommandHandler {
	return &SlotInOutCommandHandler{
		store:    store,
		players:  players,
		notifier: notifier,
		settings: settings,
	}
}

func (h *SlotInOutCommandHandler) Handle(
	ctx context.Context,
	request SlotInOutCommand,
) (SlotInOutResponse, error) {
	p, err := loadPlayer(ctx, h.players, request.PlayerID)
	if err != nil {
		return SlotInOutResponse{}, mapError(err)
	}

	now := h.settings.Time()

	if selectsAll(request.Args) {
		return h.handleAll(ctx, request, p, now)
	}

	hours := domain.ExpandHours(request.Args, h.settings.MainHours)
	if len(hours) == 0 {
		return SlotInOutResponse{}, mapError(fmt.Errorf("%w: %s", domain.ErrInvalidTimeslot, strings.Join(request.Args, " ")))
	}

	loc := h.settings.Location(p.Timezone)

	response := SlotInOutResponse{Hours: hours}
	for _, hour := range hours {
		timeslot, err := h.settings.Resolver.Resolve(domain.HourToken(hour), loc, now)
		if err != nil {
			return SlotInOutResponse{}, mapError(err)
		}

		r, err := h.store.FindByTimeslot(ctx, request.ChatID, timeslot)
		if errors.Is(err, domain.ErrRosterNotFound) {
			if request.Action != ActionIn || !timeslot.After(now) {
				continue
			}

			if r, _, err = createOrJoin(ctx, h.store, h.notifier, request.ChatID, timeslot, p, now); err != nil {
				return SlotInOutResponse{}, mapError(err)
			}
			response.Rosters = append(response.Rosters, r)
			continue
		}
		if err != nil {
			return SlotInOutResponse{}, mapError(err)
		}

		if err := h.apply(ctx, request.Action, r, p, now, &response); err != nil {
			return SlotInOutResponse{}, mapError(err)
		}
	}

	return response, nil
}

func (h *SlotInOutCommandHandler) handleAll(
	ctx context.Context,
	request SlotInOutCommand,
	p playerdomain.Player,
	now time.Time,
) (SlotInOutResponse, error) {
	rosters, err := h.store.ListByChat(ctx, request.ChatID, false)
	if err != nil {
		return SlotInOutResponse{}, mapError(err)
	}

	var response SlotInOutResponse
	for _, r := range rosters {
		if err := h.apply(ctx, request.Action, r, p, now, &response); err != nil {
			return SlotInOutResponse{}, mapError(err)
		}
	}

	return response, nil
}

// apply joins or leaves an existing roster and records the outcome.
func (h *SlotInOutCommandHandler) apply(
	ctx context.Context,
	action string,
	r domain.Roster,
	p playerdomain.Player,
	now time.Time,
	response *SlotInOutResponse,
) error {
	if action == ActionIn {
		r, err := join(ctx, h.store, r, p, now)
		if err != nil {
			return err
		}
		response.Rosters = append(response.Rosters, r)
		return nil
	}

	r, deleted, err := leave(ctx, h.store, h.notifier, r, p)
	if err != nil {
		return err
	}
	if deleted {
		response.Deleted = append(response.Deleted, r.ID)
	} else {
		response.Rosters = append(response.Rosters, r)
	}
	return nil
}

func selectsAll(args []string) bool {
	for _, arg := range args {
		if strings.EqualFold(strings.TrimSpace(arg), AllHours) {
			return true
		}
	}
	return false
}

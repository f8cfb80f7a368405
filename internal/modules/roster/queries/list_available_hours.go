package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

// ListAvailableHoursQuery finds the main hours a player can still open
// a game at: in the future and not taken by a live roster.
type ListAvailableHoursQuery struct {
	readOnlyQuery
	ChatID   int64
	PlayerID int64
}

func (q ListAvailableHoursQuery) Chat() int64 {
	return q.ChatID
}

func (q ListAvailableHoursQuery) Validate() error {
	if q.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", q.ChatID)
	}

	if q.PlayerID == 0 {
		return fmt.Errorf("invalid PlayerID - '%d'", q.PlayerID)
	}

	return nil
}

type AvailableHour struct {
	Hour     int       `json:"hour"`
	Token    string    `json:"token"`
	Timeslot time.Time `json:"timeslot"`
}

type ListAvailableHoursQueryHandler struct {
	store    roster.Store
	players  player.Store
	settings roster.Settings
}

func NewListAvailableHoursQueryHandler(
	store roster.Store,
	players player.Store,
	settings roster.Settings,
) *ListAvailableHoursQueryHandler {
	return &ListAvailableHoursQueryHandler{store, players, settings}
}

func (h *ListAvailableHoursQueryHandler) Handle(
	ctx context.Context,
	request ListAvailableHoursQuery,
) ([]AvailableHour, error) {
	p, err := h.players.Get(ctx, request.PlayerID)
	if err != nil {
		return nil, mapError(err)
	}

	rosters, err := h.store.ListByChat(ctx, request.ChatID, false)
	if err != nil {
		return nil, mapError(err)
	}

	now := h.settings.Time()
	loc := h.settings.Location(p.Timezone)

	hours := make([]AvailableHour, 0, len(h.settings.MainHours))
	for _, hour := range h.settings.MainHours {
		token := domain.HourToken(hour)

		timeslot, err := h.settings.Resolver.Resolve(token, loc, now)
		if err != nil {
			return nil, mapError(err)
		}

		if !timeslot.After(now) || taken(rosters, timeslot) {
			continue
		}

		hours = append(hours, AvailableHour{Hour: hour, Token: token, Timeslot: timeslot})
	}

	return hours, nil
}

func taken(rosters []domain.Roster, timeslot time.Time) bool {
	for _, r := range rosters {
		if r.Timeslot.Equal(timeslot) {
			return true
		}
	}
	return false
}

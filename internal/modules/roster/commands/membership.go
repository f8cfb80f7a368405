package commands

import (
	"context"
	"errors"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"go.uber.org/zap"
)

var errorStatuses = []core.ErrorStatus{
	{Err: domain.ErrInvalidTimeslot, StatusCode: 400},
	{Err: domain.ErrDuplicateSlot, StatusCode: 409},
	{Err: domain.ErrRosterNotFound, StatusCode: 404},
	{Err: playerdomain.ErrPlayerNotFound, StatusCode: 404},
	{Err: domain.ErrCallNotAllowed, StatusCode: 409},
	{Err: domain.ErrChatNotAllowed, StatusCode: 403},
	{Err: domain.ErrDayOff, StatusCode: 423},
	{Err: domain.ErrRosterExpired, StatusCode: 410},
}

func mapError(err error) error {
	return core.MapError(err, errorStatuses...)
}

// loadRoster fetches a roster and hides rosters of other chats.
func loadRoster(ctx context.Context, store roster.Store, chatID, rosterID int64) (domain.Roster, error) {
	r, err := store.Get(ctx, rosterID)
	if err != nil {
		return domain.Roster{}, err
	}

	if r.ChatID != chatID {
		return domain.Roster{}, domain.ErrRosterNotFound
	}

	return r, nil
}

func loadLiveRoster(ctx context.Context, store roster.Store, chatID, rosterID int64) (domain.Roster, error) {
	r, err := loadRoster(ctx, store, chatID, rosterID)
	if err != nil {
		return domain.Roster{}, err
	}

	if r.Expired {
		return domain.Roster{}, domain.ErrRosterExpired
	}

	return r, nil
}

func join(ctx context.Context, store roster.Store, r domain.Roster, p playerdomain.Player, now time.Time) (domain.Roster, error) {
	if !r.AddPlayer(p, now) {
		return r, nil
	}

	if err := store.Save(ctx, r); err != nil {
		return domain.Roster{}, err
	}

	return r, nil
}

// leave removes p and deletes the roster once nobody is left. Pending
// notifications are cancelled before the roster goes away.
func leave(
	ctx context.Context,
	store roster.Store,
	notifier *roster.Notifier,
	r domain.Roster,
	p playerdomain.Player,
) (domain.Roster, bool, error) {
	if !r.RemovePlayer(p.ID) {
		return r, false, nil
	}

	if !r.IsEmpty() {
		return r, false, store.Save(ctx, r)
	}

	if err := notifier.CancelAll(ctx, r.ID); err != nil {
		return domain.Roster{}, false, err
	}

	if err := store.Delete(ctx, r.ID); err != nil && !errors.Is(err, domain.ErrRosterNotFound) {
		return domain.Roster{}, false, err
	}

	return r, true, nil
}

// createOrJoin creates a roster for the timeslot with p as its first
// member. When a live roster already holds the slot, p joins that one.
// A reminder that fails to schedule is logged and the roster is kept.
func createOrJoin(
	ctx context.Context,
	store roster.Store,
	notifier *roster.Notifier,
	chatID int64,
	timeslot time.Time,
	p playerdomain.Player,
	now time.Time,
) (domain.Roster, bool, error) {
	r := domain.NewRoster(chatID, timeslot, now)
	r.AddPlayer(p, now)

	created, err := store.Create(ctx, r)
	if err == nil {
		if err := notifier.ScheduleReminder(ctx, created); err != nil {
			core.LogError(ctx, "failed to schedule reminder",
				zap.Int64("roster_id", created.ID),
				zap.Int64("chat_id", created.ChatID),
				zap.Error(err))
		}
		return created, false, nil
	}

	if !errors.Is(err, domain.ErrDuplicateSlot) {
		return domain.Roster{}, false, err
	}

	existing, err := store.FindByTimeslot(ctx, chatID, timeslot)
	if err != nil {
		return domain.Roster{}, false, err
	}

	existing, err = join(ctx, store, existing, p, now)
	return existing, true, err
}

func loadPlayer(ctx context.Context, players player.Store, playerID int64) (playerdomain.Player, error) {
	p, err := players.Get(ctx, playerID)
	if err != nil {
		return playerdomain.Player{}, err
	}
	return p, nil
}

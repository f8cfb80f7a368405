package roster

import (
	"context"
	"strconv"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/eskrenkovic/mediator-go"
	"go.uber.org/zap"
)

// readOnly marks requests that only look at state. They stay available
// on days off.
type readOnly interface {
	ReadOnly() bool
}

func isReadOnly(request interface{}) bool {
	r, ok := request.(readOnly)
	return ok && r.ReadOnly()
}

var _ mediator.PipelineBehavior = (*ChatAuthorizationBehavior)(nil)

// ChatAuthorizationBehavior rejects chats outside the allow-list and
// mutations on configured days off. An empty allow-list lets every chat in.
type ChatAuthorizationBehavior struct {
	AllowedChats []int64
	DaysOff      []time.Weekday
	Now          core.Clock
}

func (b *ChatAuthorizationBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	scoped, ok := request.(core.ChatScoped)
	if !ok {
		return next(ctx, request)
	}

	if len(b.AllowedChats) > 0 && !core.Contains(b.AllowedChats, scoped.Chat()) {
		return nil, core.NewCommandError(403, domain.ErrChatNotAllowed)
	}

	if !isReadOnly(request) && b.isDayOff() {
		return nil, core.NewCommandError(423, domain.ErrDayOff)
	}

	return next(ctx, request)
}

// A day off starts at the night cutoff (UTC) of the listed weekday and
// lasts until the cutoff of the following morning. The night after the
// day off is blocked too, not only the hours up to midnight.
func (b *ChatAuthorizationBehavior) isDayOff() bool {
	if len(b.DaysOff) == 0 {
		return false
	}

	now := core.SystemClock()
	if b.Now != nil {
		now = b.Now().UTC()
	}

	day := now.Add(-domain.DefaultNightCutoffHour * time.Hour).Weekday()
	return core.Contains(b.DaysOff, day)
}

var _ mediator.PipelineBehavior = (*ChatLockBehavior)(nil)

// ChatLockBehavior runs chat-scoped requests of one chat one at a time.
// Handlers must not send nested chat-scoped requests.
type ChatLockBehavior struct {
	Locks *core.KeyedMutex
}

func (b *ChatLockBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	scoped, ok := request.(core.ChatScoped)
	if !ok {
		return next(ctx, request)
	}

	unlock := b.Locks.Lock(chatLockKey(scoped.Chat()))
	defer unlock()

	return next(ctx, request)
}

func chatLockKey(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

var _ mediator.PipelineBehavior = (*ExpirySyncBehavior)(nil)

// ExpirySyncBehavior marks stale rosters of the chat as expired before
// the request sees them.
type ExpirySyncBehavior struct {
	Store    Store
	Settings Settings
	Logger   *zap.Logger
}

func (b *ExpirySyncBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	scoped, ok := request.(core.ChatScoped)
	if !ok {
		return next(ctx, request)
	}

	expired, err := ExpireStale(ctx, b.Store, scoped.Chat(), b.Settings.Time(), b.Settings.ExpiryWindow)
	if err != nil {
		return nil, core.NewCommandError(500, err)
	}

	if expired > 0 {
		b.Logger.Info("rosters expired",
			zap.Int64("chat_id", scoped.Chat()),
			zap.Int("count", expired))
	}

	return next(ctx, request)
}

// ExpireStale persists the expired flag on every live roster of the chat
// whose window has passed and returns how many flipped.
func ExpireStale(ctx context.Context, store Store, chatID int64, now time.Time, window time.Duration) (int, error) {
	rosters, err := store.ListByChat(ctx, chatID, false)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, r := range rosters {
		if !r.Expire(now, window) {
			continue
		}

		if err := store.Save(ctx, r); err != nil {
			return expired, err
		}
		expired++
	}

	return expired, nil
}

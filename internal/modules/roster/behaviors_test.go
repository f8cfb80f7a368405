package roster

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chatRequest struct {
	ChatID int64
}

func (r chatRequest) Chat() int64 { return r.ChatID }

type chatQuery struct {
	chatRequest
}

func (chatQuery) ReadOnly() bool { return true }

func passThrough(calls *int) func(context.Context, interface{}) (interface{}, error) {
	return func(context.Context, interface{}) (interface{}, error) {
		*calls++
		return "ok", nil
	}
}

// 2024-03-05 is a Tuesday.
var tuesdayNoon = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func Test_ChatAuthorizationBehavior_Allows_Everything_With_Empty_Config(t *testing.T) {
	// Arrange
	b := &ChatAuthorizationBehavior{Now: core.FixedClock(tuesdayNoon)}
	calls := 0

	// Act
	response, err := b.Handle(context.Background(), chatRequest{ChatID: 1}, passThrough(&calls))

	// Assert
	require.NoError(t, err)
	require.Equal(t, "ok", response)
	require.Equal(t, 1, calls)
}

func Test_ChatAuthorizationBehavior_Rejects_Chat_Outside_Allow_List(t *testing.T) {
	// Arrange
	b := &ChatAuthorizationBehavior{AllowedChats: []int64{1, 2}, Now: core.FixedClock(tuesdayNoon)}
	calls := 0

	// Act
	_, err := b.Handle(context.Background(), chatRequest{ChatID: 3}, passThrough(&calls))

	// Assert
	require.Equal(t, 403, core.StatusCode(err))
	require.ErrorIs(t, err, domain.ErrChatNotAllowed)
	require.Zero(t, calls)
}

func Test_ChatAuthorizationBehavior_Day_Off_Starts_At_Cutoff(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		blocked bool
	}{
		{name: "tuesday noon", now: tuesdayNoon, blocked: true},
		{name: "tuesday before cutoff", now: time.Date(2024, 3, 5, 3, 59, 0, 0, time.UTC), blocked: false},
		{name: "wednesday just after midnight", now: time.Date(2024, 3, 6, 0, 30, 0, 0, time.UTC), blocked: true},
		{name: "wednesday before cutoff", now: time.Date(2024, 3, 6, 3, 0, 0, 0, time.UTC), blocked: true},
		{name: "wednesday after cutoff", now: time.Date(2024, 3, 6, 4, 0, 0, 0, time.UTC), blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			b := &ChatAuthorizationBehavior{DaysOff: []time.Weekday{time.Tuesday}, Now: core.FixedClock(tt.now)}
			calls := 0

			// Act
			_, err := b.Handle(context.Background(), chatRequest{ChatID: 1}, passThrough(&calls))

			// Assert
			if tt.blocked {
				require.Equal(t, 423, core.StatusCode(err))
				require.Zero(t, calls)
			} else {
				require.NoError(t, err)
				require.Equal(t, 1, calls)
			}
		})
	}
}

func Test_ChatAuthorizationBehavior_Lets_Queries_Through_On_Day_Off(t *testing.T) {
	// Arrange
	b := &ChatAuthorizationBehavior{DaysOff: []time.Weekday{time.Tuesday}, Now: core.FixedClock(tuesdayNoon)}
	calls := 0

	// Act
	_, err := b.Handle(context.Background(), chatQuery{chatRequest{ChatID: 1}}, passThrough(&calls))

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func Test_ChatLockBehavior_Serializes_Requests_Of_One_Chat(t *testing.T) {
	// Arrange
	b := &ChatLockBehavior{Locks: core.NewKeyedMutex()}

	var (
		inside  int32
		overlap int32
		wg      sync.WaitGroup
	)

	next := func(context.Context, interface{}) (interface{}, error) {
		if atomic.AddInt32(&inside, 1) > 1 {
			atomic.StoreInt32(&overlap, 1)
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inside, -1)
		return nil, nil
	}

	// Act
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Handle(context.Background(), chatRequest{ChatID: 7}, next)
		}()
	}
	wg.Wait()

	// Assert
	require.Zero(t, atomic.LoadInt32(&overlap))
	require.Zero(t, b.Locks.Len())
}

func Test_ExpirySyncBehavior_Expires_Stale_Rosters_Before_Handler(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := NewMemoryStore()

	stale, err := store.Create(ctx, newRoster(1, slotTime))
	require.NoError(t, err)
	fresh, err := store.Create(ctx, newRoster(1, slotTime.Add(3*time.Hour)))
	require.NoError(t, err)

	settings := DefaultSettings()
	settings.Now = core.FixedClock(slotTime.Add(90 * time.Minute))

	b := &ExpirySyncBehavior{Store: store, Settings: settings, Logger: zap.NewNop()}

	var seen []domain.Roster
	next := func(ctx context.Context, _ interface{}) (interface{}, error) {
		seen, err = store.ListByChat(ctx, 1, false)
		return nil, err
	}

	// Act
	_, err = b.Handle(ctx, chatRequest{ChatID: 1}, next)

	// Assert
	require.NoError(t, err)
	require.Len(t, seen, 1)
	require.Equal(t, fresh.ID, seen[0].ID)

	loaded, err := store.Get(ctx, stale.ID)
	require.NoError(t, err)
	require.True(t, loaded.Expired)
}

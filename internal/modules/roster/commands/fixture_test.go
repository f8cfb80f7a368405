package commands

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/notification/notificationtest"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testChatID int64 = -100

type fixture struct {
	ctx       context.Context
	loc       *time.Location
	now       time.Time
	store     *roster.MemoryStore
	players   *player.MemoryStore
	scheduler *notificationtest.RecordingScheduler
	sender    *notificationtest.RecordingSender
	notifier  *roster.Notifier
	settings  roster.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	f := &fixture{
		ctx:       context.Background(),
		loc:       loc,
		now:       time.Date(2024, 3, 5, 15, 0, 0, 0, loc),
		store:     roster.NewMemoryStore(),
		players:   player.NewMemoryStore(),
		scheduler: notificationtest.NewRecordingScheduler(),
		sender:    &notificationtest.RecordingSender{},
	}

	f.settings = roster.DefaultSettings()
	f.settings.Renderer = domain.NewRenderer(loc)
	f.settings.Now = func() time.Time { return f.now }

	f.notifier = roster.NewNotifier(f.store, f.scheduler, f.sender, f.settings, zap.NewNop())
	require.NoError(t, f.scheduler.Start(f.ctx, f.notifier.Deliver))

	return f
}

// at moves the clock to hh:mm on the fixture's day in Amsterdam.
func (f *fixture) at(hour, minute int) {
	f.now = time.Date(2024, 3, 5, hour, minute, 0, 0, f.loc)
}

func (f *fixture) player(t *testing.T, n int) playerdomain.Player {
	t.Helper()

	p, err := f.players.Upsert(f.ctx, playerdomain.Player{
		UserID:   int64(1000 + n),
		Username: fmt.Sprintf("p%d", n),
		Timezone: "Europe/Amsterdam",
	})
	require.NoError(t, err)

	return p
}

func (f *fixture) create(t *testing.T, p playerdomain.Player, token string) CreateRosterResponse {
	t.Helper()

	handler := NewCreateRosterCommandHandler(f.store, f.players, f.notifier, f.settings)
	response, err := handler.Handle(f.ctx, CreateRosterCommand{ChatID: testChatID, PlayerID: p.ID, Token: token})
	require.NoError(t, err)

	return response
}

func (f *fixture) join(t *testing.T, p playerdomain.Player, rosterID int64) domain.Roster {
	t.Helper()

	handler := NewJoinRosterCommandHandler(f.store, f.players, f.settings)
	r, err := handler.Handle(f.ctx, JoinRosterCommand{ChatID: testChatID, PlayerID: p.ID, RosterID: rosterID})
	require.NoError(t, err)

	return r
}

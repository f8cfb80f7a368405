package commands

import (
	"testing"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/stretchr/testify/require"
)

func Test_SlotInOutCommand_In_All_Joins_Only_Existing_Rosters(t *testing.T) {
	// Arrange
	f := newFixture(t)
	owner := f.player(t, 1)
	f.create(t, owner, "20:00")
	f.create(t, owner, "20:30")
	p := f.player(t, 2)
	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	// Act
	response, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: p.ID, Action: ActionIn, Args: []string{"all"}})

	// Assert
	require.NoError(t, err)
	require.Len(t, response.Rosters, 2)
	for _, r := range response.Rosters {
		require.True(t, r.HasPlayer(p.ID))
		require.Equal(t, 2, r.SlotCount())
	}

	live, err := f.store.ListByChat(f.ctx, testChatID, false)
	require.NoError(t, err)
	require.Len(t, live, 2)
	require.Len(t, f.scheduler.Scheduled(), 2)
}

func Test_SlotInOutCommand_In_All_On_Empty_Chat_Creates_Nothing(t *testing.T) {
	// Arrange
	f := newFixture(t)
	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	// Act
	response, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: f.player(t, 1).ID, Action: ActionIn, Args: []string{"all"}})

	// Assert
	require.NoError(t, err)
	require.Empty(t, response.Rosters)
	require.Empty(t, f.scheduler.Scheduled())

	live, err := f.store.ListByChat(f.ctx, testChatID, false)
	require.NoError(t, err)
	require.Empty(t, live)
}

func Test_SlotInOutCommand_Out_All_Leaves_Off_Hour_Roster(t *testing.T) {
	// Arrange
	f := newFixture(t)
	p := f.player(t, 1)
	created := f.create(t, p, "20:30")
	require.Len(t, f.scheduler.Pending(created.Roster.ID), 1)

	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	// Act
	response, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: p.ID, Action: ActionOut, Args: []string{"all"}})

	// Assert
	require.NoError(t, err)
	require.Equal(t, []int64{created.Roster.ID}, response.Deleted)
	require.Empty(t, f.scheduler.Pending(created.Roster.ID))

	_, err = f.store.Get(f.ctx, created.Roster.ID)
	require.ErrorIs(t, err, domain.ErrRosterNotFound)
}

func Test_SlotInOutCommand_In_Joins_Existing_Roster(t *testing.T) {
	// Arrange
	f := newFixture(t)
	created := f.create(t, f.player(t, 1), "20:00")
	p := f.player(t, 2)
	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	// Act
	response, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: p.ID, Action: ActionIn, Args: []string{"20"}})

	// Assert
	require.NoError(t, err)
	require.Len(t, response.Rosters, 1)
	require.Equal(t, created.Roster.ID, response.Rosters[0].ID)
	require.Equal(t, 2, response.Rosters[0].SlotCount())
}

func Test_SlotInOutCommand_In_Does_Not_Create_Past_Hours(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.at(22, 30)
	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	// Act
	response, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: f.player(t, 1).ID, Action: ActionIn, Args: []string{"18-21"}})

	// Assert
	require.NoError(t, err)
	require.Empty(t, response.Rosters)

	live, err := f.store.ListByChat(f.ctx, testChatID, false)
	require.NoError(t, err)
	require.Empty(t, live)
}

func Test_SlotInOutCommand_Out_Range_Deletes_Emptied_Rosters(t *testing.T) {
	// Arrange
	f := newFixture(t)
	p := f.player(t, 1)
	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	_, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: p.ID, Action: ActionIn, Args: []string{"18-1"}})
	require.NoError(t, err)

	// Act
	response, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: p.ID, Action: ActionOut, Args: []string{"18-21"}})

	// Assert
	require.NoError(t, err)
	require.Len(t, response.Deleted, 4)
	require.Empty(t, response.Rosters)

	for _, id := range response.Deleted {
		require.Empty(t, f.scheduler.Pending(id))
	}

	live, err := f.store.ListByChat(f.ctx, testChatID, false)
	require.NoError(t, err)
	require.Len(t, live, 4)
}

func Test_SlotInOutCommand_Rejects_Args_Outside_Main_Hours(t *testing.T) {
	// Arrange
	f := newFixture(t)
	handler := NewSlotInOutCommandHandler(f.store, f.players, f.notifier, f.settings)

	// Act
	_, err := handler.Handle(f.ctx, SlotInOutCommand{ChatID: testChatID, PlayerID: f.player(t, 1).ID, Action: ActionIn, Args: []string{"9"}})

	// Assert
	require.Equal(t, 400, core.StatusCode(err))
}

func Test_SlotInOutCommand_Validate(t *testing.T) {
	require.Error(t, SlotInOutCommand{ChatID: 1, PlayerID: 1, Action: "maybe", Args: []string{"all"}}.Validate())
	require.Error(t, SlotInOutCommand{ChatID: 1, PlayerID: 1, Action: ActionIn}.Validate())
	require.NoError(t, SlotInOutCommand{ChatID: 1, PlayerID: 1, Action: ActionOut, Args: []string{"all"}}.Validate())
}

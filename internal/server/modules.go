package server

import (
	"github.com/eskrenkovic/slotbot/internal/config"
	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/notification"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	playercommands "github.com/eskrenkovic/slotbot/internal/modules/player/commands"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	playerqueries "github.com/eskrenkovic/slotbot/internal/modules/player/queries"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	rostercommands "github.com/eskrenkovic/slotbot/internal/modules/roster/commands"
	rosterdomain "github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
	rosterqueries "github.com/eskrenkovic/slotbot/internal/modules/roster/queries"

	"github.com/eskrenkovic/mediator-go"
	"go.uber.org/zap"
)

// Modules are the collaborators the slices are built from.
type Modules struct {
	Rosters   roster.Store
	Players   player.Store
	Scheduler notification.Scheduler
	Sender    notification.Sender
	Settings  roster.Settings
	Access    config.RosterConfiguration
	Logger    *zap.Logger
}

// RegisterModules installs the pipeline behaviors and every request
// handler on the global mediator. It must run once per process.
func RegisterModules(m Modules) (*roster.Notifier, error) {
	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: m.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: m.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}
	chatAuthorizationBehavior := roster.ChatAuthorizationBehavior{
		AllowedChats: m.Access.AllowedChats,
		DaysOff:      m.Access.DaysOff,
		Now:          m.Settings.Now,
	}
	chatLockBehavior := roster.ChatLockBehavior{Locks: core.NewKeyedMutex()}
	expirySyncBehavior := roster.ExpirySyncBehavior{Store: m.Rosters, Settings: m.Settings, Logger: m.Logger}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)
	mediator.RegisterPipelineBehavior(&chatAuthorizationBehavior)
	mediator.RegisterPipelineBehavior(&chatLockBehavior)
	mediator.RegisterPipelineBehavior(&expirySyncBehavior)

	notifier := roster.NewNotifier(m.Rosters, m.Scheduler, m.Sender, m.Settings, m.Logger)

	// player

	err := mediator.RegisterRequestHandler[playercommands.ResolvePlayerCommand, playerdomain.Player](
		playercommands.NewResolvePlayerCommandHandler(m.Players),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[playercommands.SetTimezoneCommand, playerdomain.Player](
		playercommands.NewSetTimezoneCommandHandler(m.Players),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[playerqueries.GetPlayerByUserIDQuery, playerdomain.Player](
		playerqueries.NewGetPlayerByUserIDQueryHandler(m.Players),
	)
	if err != nil {
		return nil, err
	}

	// roster

	err = mediator.RegisterRequestHandler[rostercommands.CreateRosterCommand, rostercommands.CreateRosterResponse](
		rostercommands.NewCreateRosterCommandHandler(m.Rosters, m.Players, notifier, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rostercommands.JoinRosterCommand, rosterdomain.Roster](
		rostercommands.NewJoinRosterCommandHandler(m.Rosters, m.Players, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rostercommands.LeaveRosterCommand, rostercommands.LeaveRosterResponse](
		rostercommands.NewLeaveRosterCommandHandler(m.Rosters, m.Players, notifier),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rostercommands.CallEveryoneCommand, rosterdomain.Roster](
		rostercommands.NewCallEveryoneCommandHandler(m.Rosters, m.Players, notifier, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rostercommands.SlotInOutCommand, rostercommands.SlotInOutResponse](
		rostercommands.NewSlotInOutCommandHandler(m.Rosters, m.Players, notifier, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rostercommands.ExpireRostersCommand, rostercommands.ExpireRostersResponse](
		rostercommands.NewExpireRostersCommandHandler(m.Rosters, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rosterqueries.GetRosterQuery, rosterdomain.Roster](
		rosterqueries.NewGetRosterQueryHandler(m.Rosters),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rosterqueries.ListRostersQuery, []rosterdomain.Roster](
		rosterqueries.NewListRostersQueryHandler(m.Rosters),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rosterqueries.RenderStatusQuery, rosterqueries.RenderStatusResponse](
		rosterqueries.NewRenderStatusQueryHandler(m.Rosters, m.Players, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[rosterqueries.ListAvailableHoursQuery, []rosterqueries.AvailableHour](
		rosterqueries.NewListAvailableHoursQueryHandler(m.Rosters, m.Players, m.Settings),
	)
	if err != nil {
		return nil, err
	}

	return notifier, nil
}

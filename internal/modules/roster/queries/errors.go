package queries

import (
	"github.com/eskrenkovic/slotbot/internal/modules/core"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

func mapError(err error) error {
	return core.MapError(err,
		core.ErrorStatus{Err: domain.ErrRosterNotFound, StatusCode: 404},
		core.ErrorStatus{Err: playerdomain.ErrPlayerNotFound, StatusCode: 404},
		core.ErrorStatus{Err: domain.ErrInvalidTimeslot, StatusCode: 400},
	)
}

// queries never change state, so they stay open on days off.
type readOnlyQuery struct{}

func (readOnlyQuery) ReadOnly() bool {
	return true
}

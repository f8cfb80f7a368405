package domain

import "errors"

var (
	ErrInvalidTimeslot = errors.New("invalid timeslot")
	ErrDuplicateSlot   = errors.New("a game already exists for this timeslot")
	ErrRosterNotFound  = errors.New("game not found")
	ErrRosterExpired   = errors.New("game has expired")
	ErrCallNotAllowed  = errors.New("call is not available for this game")
	ErrChatNotAllowed  = errors.New("chat is not allowed")
	ErrDayOff          = errors.New("it's a day off")
)

package roster

import (
	"time"

	"github.com/eskrenkovic/slotbot/internal/config"
	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"
)

// Settings are the roster rules shared by every handler of the slice.
type Settings struct {
	ExpiryWindow time.Duration
	ReminderLead time.Duration
	Call         domain.CallPolicy
	MainHours    []int
	Resolver     domain.Resolver
	Renderer     domain.Renderer
	Now          core.Clock
}

func NewSettings(c config.RosterConfiguration) Settings {
	return Settings{
		ExpiryWindow: c.ExpiryWindow,
		ReminderLead: c.ReminderLead,
		Call: domain.CallPolicy{
			MinPlayers: c.CallMinPlayers,
			Window:     c.CallWindow,
		},
		MainHours: domain.OrderHours(c.MainHours, c.NightCutoffHour),
		Resolver:  domain.NewResolver(c.NightCutoffHour),
		Renderer:  domain.NewRenderer(c.DefaultTimezone),
		Now:       core.SystemClock,
	}
}

func DefaultSettings() Settings {
	return NewSettings(config.RosterConfiguration{
		ExpiryWindow:    time.Hour,
		ReminderLead:    5 * time.Minute,
		CallMinPlayers:  3,
		CallWindow:      30 * time.Minute,
		DefaultTimezone: time.UTC,
		MainHours:       []int{18, 19, 20, 21, 22, 23, 0, 1},
		NightCutoffHour: domain.DefaultNightCutoffHour,
	})
}

// Time is the current instant according to the configured clock.
func (s Settings) Time() time.Time {
	if s.Now == nil {
		return core.SystemClock()
	}
	return s.Now().UTC()
}

// Location picks the zone a player reads and writes times in.
func (s Settings) Location(timezone string) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	return s.Renderer.DefaultLocation
}

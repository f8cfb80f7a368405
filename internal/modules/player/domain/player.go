package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrUnknownTimezone = errors.New("unknown timezone")
)

const DefaultTimezone = "Europe/Amsterdam"

// Player is a chat user known to the bot. UserID is the transport's own
// identifier, ID is ours.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username,omitempty"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName,omitempty"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (p Player) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	if p.FirstName == "" {
		return fmt.Sprintf("player %d", p.UserID)
	}
	return p.FirstName
}

// Mention renders a markdown mention that pings the player.
func (p Player) Mention() string {
	if p.Username != "" {
		return EscapeMarkdown("@" + p.Username)
	}
	return fmt.Sprintf("[%s](tg://user?id=%d)", EscapeMarkdown(p.DisplayName()), p.UserID)
}

// Location falls back to fallback when the stored zone cannot be loaded.
func (p Player) Location(fallback *time.Location) *time.Location {
	if p.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// SyncNames copies display fields from a fresh profile and reports whether
// anything changed.
func (p *Player) SyncNames(username, firstName, lastName string) bool {
	if p.Username == username && p.FirstName == firstName && p.LastName == lastName {
		return false
	}
	p.Username, p.FirstName, p.LastName = username, firstName, lastName
	return true
}

func ValidateTimezone(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimezone, name)
	}
	return loc, nil
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes legacy Telegram markdown control characters.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

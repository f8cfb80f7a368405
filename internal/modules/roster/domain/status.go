package domain

import (
	"fmt"
	"strings"
	"time"

	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
)

const (
	DefaultNewMemberWindow = 2 * time.Minute

	EmptyChatStatus = "No games yet. Create one with /slot"

	newMemberMarker = "🔥"
	pistol          = "🔫"
)

var zoneCodes = map[string]string{
	"Europe/Amsterdam": "EU",
	"Europe/London":    "UK",
	"Asia/Almaty":      "KZ",
	"Asia/Atyrau":      "KZ+1",
}

// ZoneCode is a short label for loc, falling back to the zone abbreviation.
func ZoneCode(loc *time.Location, at time.Time) string {
	if code, ok := zoneCodes[loc.String()]; ok {
		return code
	}
	return at.In(loc).Format("MST")
}

func (b Bucket) Headline(slots int) string {
	switch b {
	case BucketEmpty:
		return "All slots are available!"
	case BucketPartial:
		if slots == 1 {
			return "1 slot taken."
		}
		return fmt.Sprintf("%d slots taken.", slots)
	case BucketFullParty:
		return "Full party! " + pistol
	default:
		return "5x5! " + pistol + pistol
	}
}

// Renderer turns rosters into the markdown text shown in chats.
type Renderer struct {
	DefaultLocation *time.Location
	NewMemberWindow time.Duration
}

func NewRenderer(defaultLocation *time.Location) Renderer {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return Renderer{
		DefaultLocation: defaultLocation,
		NewMemberWindow: DefaultNewMemberWindow,
	}
}

func (r Renderer) location(p playerdomain.Player) *time.Location {
	return p.Location(r.DefaultLocation)
}

func (r Renderer) viewer(loc *time.Location) *time.Location {
	if loc == nil {
		return r.DefaultLocation
	}
	return loc
}

func timeIn(t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s %s", t.In(loc).Format("15:04"), ZoneCode(loc, t))
}

// TimeHeader shows the timeslot for the viewer, followed by the other
// zones used by members in join order.
func (r Renderer) TimeHeader(roster Roster, viewer *time.Location) string {
	viewer = r.viewer(viewer)
	header := timeIn(roster.Timeslot, viewer)

	seen := map[string]bool{viewer.String(): true}
	var others []string
	for _, m := range roster.Members {
		loc := r.location(m.Player)
		if seen[loc.String()] {
			continue
		}
		seen[loc.String()] = true
		others = append(others, timeIn(roster.Timeslot, loc))
	}

	if len(others) == 0 {
		return header
	}
	return fmt.Sprintf("%s (%s)", header, strings.Join(others, ", "))
}

func (r Renderer) Status(roster Roster, viewer *time.Location, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*%s*: %s", r.TimeHeader(roster, viewer), roster.Bucket().Headline(roster.SlotCount())))

	for _, m := range roster.Members {
		line := fmt.Sprintf("- %s%s", m.Tier.Tag(), playerdomain.EscapeMarkdown(m.Player.DisplayName()))
		if m.IsNew(now, r.NewMemberWindow) {
			line += " " + newMemberMarker
		}
		b.WriteString("\n")
		b.WriteString(line)
	}

	return b.String()
}

func (r Renderer) StatusAll(rosters []Roster, viewer *time.Location, now time.Time) string {
	if len(rosters) == 0 {
		return EmptyChatStatus
	}

	parts := make([]string, 0, len(rosters))
	for _, roster := range rosters {
		parts = append(parts, r.Status(roster, viewer, now))
	}
	return strings.Join(parts, "\n\n")
}

// Call renders a broadcast that pings the active members only.
func (r Renderer) Call(roster Roster, viewer *time.Location, prefix, message string) string {
	return fmt.Sprintf(
		`\[_%s_] *%s*: %s %s`,
		playerdomain.EscapeMarkdown(prefix),
		r.TimeHeader(roster, viewer),
		roster.MentionActive(),
		message,
	)
}

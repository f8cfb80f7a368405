package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultNightCutoffHour splits the day: hours below it belong to the
// night that started the previous evening.
const DefaultNightCutoffHour = 4

var (
	timeTokenPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	hourRangePattern = regexp.MustCompile(`^([0-9]{1,2})-([0-9]{1,2})$`)
	hourPattern      = regexp.MustCompile(`^[0-9]{1,2}$`)
)

type Resolver struct {
	NightCutoffHour int
}

func NewResolver(nightCutoffHour int) Resolver {
	return Resolver{NightCutoffHour: nightCutoffHour}
}

// IsTimeslotToken reports whether s looks like "HH:MM".
func IsTimeslotToken(s string) bool {
	return timeTokenPattern.MatchString(s)
}

func ResolveTimeslot(token string, loc *time.Location, now time.Time) (time.Time, error) {
	return NewResolver(DefaultNightCutoffHour).Resolve(token, loc, now)
}

// Resolve turns an "HH:MM" token into a UTC instant. A night token picked
// during the day means the coming night, so it lands on tomorrow's date.
func (r Resolver) Resolve(token string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	m := timeTokenPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeslot, token)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	local := now.In(loc)
	isDaytime := local.Hour() >= r.NightCutoffHour
	isNightGame := hour < r.NightCutoffHour

	day := local
	if isDaytime && isNightGame {
		day = local.AddDate(0, 0, 1)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc).UTC(), nil
}

func HourToken(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// ExpandHours turns arguments like "18-21" or "22" into main hours. Ranges
// follow the order of mainHours, so "23-1" crosses midnight. Arguments that
// are not main hours are ignored.
func ExpandHours(args []string, mainHours []int) []int {
	index := make(map[int]int, len(mainHours))
	for i, h := range mainHours {
		index[h] = i
	}

	selected := make(map[int]bool)
	for _, arg := range args {
		arg = strings.TrimSpace(arg)

		if m := hourRangePattern.FindStringSubmatch(arg); m != nil {
			first, _ := strconv.Atoi(m[1])
			last, _ := strconv.Atoi(m[2])
			fi, okFirst := index[first]
			li, okLast := index[last]
			if okFirst && okLast && fi < li {
				for _, h := range mainHours[fi : li+1] {
					selected[h] = true
				}
			}
			continue
		}

		if hourPattern.MatchString(arg) {
			h, _ := strconv.Atoi(arg)
			if _, ok := index[h]; ok {
				selected[h] = true
			}
		}
	}

	var hours []int
	for _, h := range mainHours {
		if selected[h] {
			hours = append(hours, h)
			delete(selected, h)
		}
	}

	return hours
}

// OrderHours sorts hours so the ones past midnight come last.
func OrderHours(hours []int, nightCutoffHour int) []int {
	var evening, night []int
	for _, h := range hours {
		if h < nightCutoffHour {
			night = append(night, h)
		} else {
			evening = append(evening, h)
		}
	}
	sort.Ints(evening)
	sort.Ints(night)
	return append(evening, night...)
}

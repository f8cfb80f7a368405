package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidJob       = errors.New("invalid job")
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// Job is a one-shot deferred message. Every job belongs to a roster so
// that all jobs of a roster can be cancelled together.
type Job struct {
	Key      string    `json:"key"`
	RosterID int64     `json:"rosterId"`
	FireAt   time.Time `json:"fireAt"`
	Payload  []byte    `json:"payload"`
}

func (j Job) Validate() error {
	if j.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidJob)
	}
	if j.RosterID == 0 {
		return fmt.Errorf("%w: missing roster id", ErrInvalidJob)
	}
	return nil
}

// Handler delivers a fired job. Errors are logged and never retried.
type Handler func(ctx context.Context, job Job) error

// Scheduler registers and cancels deferred jobs. A zero or past FireAt
// fires as soon as possible. Schedule and CancelAll for the same roster
// never interleave. A job that already started firing is not recalled.
type Scheduler interface {
	Schedule(ctx context.Context, job Job) error
	CancelAll(ctx context.Context, rosterID int64) (int, error)
	Start(ctx context.Context, handler Handler) error
	Stop() error
}

// NewJobKey builds a unique key of the form "<rosterID>_<kind>_<uuid>".
func NewJobKey(rosterID int64, kind string) string {
	return fmt.Sprintf("%s%s_%s", KeyPrefix(rosterID), kind, uuid.NewString())
}

func KeyPrefix(rosterID int64) string {
	return strconv.FormatInt(rosterID, 10) + "_"
}

func rosterLockKey(rosterID int64) string {
	return "roster:" + strconv.FormatInt(rosterID, 10)
}

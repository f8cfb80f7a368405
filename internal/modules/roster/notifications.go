package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/notification"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"go.uber.org/zap"
)

// Notifier turns roster events into scheduled jobs and delivers them
// once they fire. Message text is rendered at delivery time from the
// roster as it is then.
type Notifier struct {
	store     Store
	scheduler notification.Scheduler
	sender    notification.Sender
	settings  Settings
	logger    *zap.Logger
}

func NewNotifier(
	store Store,
	scheduler notification.Scheduler,
	sender notification.Sender,
	settings Settings,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		store:     store,
		scheduler: scheduler,
		sender:    sender,
		settings:  settings,
		logger:    logger,
	}
}

// ScheduleReminder queues the automatic heads-up before the game starts.
// A reminder time that already passed fires right away.
func (n *Notifier) ScheduleReminder(ctx context.Context, r domain.Roster) error {
	fireAt := r.Timeslot.Add(-n.settings.ReminderLead)
	if now := n.settings.Time(); fireAt.Before(now) {
		fireAt = now
	}

	return n.schedule(ctx, r, domain.Notification{
		RosterID: r.ID,
		ChatID:   r.ChatID,
		Kind:     domain.NotificationAuto,
		Message:  domain.ReminderMessage(n.settings.ReminderLead),
	}, fireAt)
}

// Call replaces whatever is pending for the roster with an immediate
// call to arms from caller.
func (n *Notifier) Call(ctx context.Context, r domain.Roster, caller playerdomain.Player) error {
	if err := n.CancelAll(ctx, r.ID); err != nil {
		return err
	}

	return n.schedule(ctx, r, domain.Notification{
		RosterID: r.ID,
		ChatID:   r.ChatID,
		Kind:     domain.NotificationCall,
		Sender:   caller.DisplayName(),
		Message:  domain.CallMessage,
		Timezone: caller.Timezone,
	}, n.settings.Time())
}

func (n *Notifier) CancelAll(ctx context.Context, rosterID int64) error {
	cancelled, err := n.scheduler.CancelAll(ctx, rosterID)
	if err != nil {
		return fmt.Errorf("cancel notifications of roster %d: %w", rosterID, err)
	}

	if cancelled > 0 {
		n.logger.Info("notifications cancelled",
			zap.Int64("roster_id", rosterID),
			zap.Int("count", cancelled))
	}

	return nil
}

func (n *Notifier) schedule(ctx context.Context, r domain.Roster, msg domain.Notification, fireAt time.Time) error {
	payload, err := msg.Marshal()
	if err != nil {
		return err
	}

	job := notification.Job{
		Key:      notification.NewJobKey(r.ID, string(msg.Kind)),
		RosterID: r.ID,
		FireAt:   fireAt,
		Payload:  payload,
	}

	if err := n.scheduler.Schedule(ctx, job); err != nil {
		return fmt.Errorf("schedule %s notification: %w", msg.Kind, err)
	}

	n.logger.Info("notification scheduled",
		zap.String("job_key", job.Key),
		zap.Int64("roster_id", r.ID),
		zap.Time("fire_at", fireAt))

	return nil
}

// Deliver is the scheduler handler. Jobs of rosters that no longer
// exist are dropped.
func (n *Notifier) Deliver(ctx context.Context, job notification.Job) error {
	msg, err := domain.UnmarshalNotification(job.Payload)
	if err != nil {
		return fmt.Errorf("decode job %s: %w", job.Key, err)
	}

	r, err := n.store.Get(ctx, msg.RosterID)
	if err != nil {
		if errors.Is(err, domain.ErrRosterNotFound) {
			n.logger.Info("notification dropped, roster is gone",
				zap.String("job_key", job.Key),
				zap.Int64("roster_id", msg.RosterID))
			return nil
		}
		return err
	}

	text := n.settings.Renderer.Call(r, n.settings.Location(msg.Timezone), msg.Prefix(), msg.Message)
	if err := n.sender.Send(ctx, r.ChatID, text); err != nil {
		return fmt.Errorf("send notification %s: %w", job.Key, err)
	}

	n.logger.Info("notification delivered",
		zap.String("job_key", job.Key),
		zap.Int64("roster_id", r.ID),
		zap.Int64("chat_id", r.ChatID))

	return nil
}

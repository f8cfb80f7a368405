// Package notificationtest has in-memory doubles for handler tests.
package notificationtest

import (
	"context"
	"sync"

	"github.com/eskrenkovic/slotbot/internal/modules/notification"
)

var _ notification.Scheduler = (*RecordingScheduler)(nil)

// RecordingScheduler keeps jobs in memory and fires them only when told to.
type RecordingScheduler struct {
	mu        sync.Mutex
	pending   []notification.Job
	scheduled []notification.Job
	cancelled map[int64]int
	handler   notification.Handler
}

func NewRecordingScheduler() *RecordingScheduler {
	return &RecordingScheduler{cancelled: make(map[int64]int)}
}

func (s *RecordingScheduler) Schedule(_ context.Context, job notification.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, job)
	s.scheduled = append(s.scheduled, job)
	return nil
}

func (s *RecordingScheduler) CancelAll(_ context.Context, rosterID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pending[:0]
	cancelled := 0
	for _, job := range s.pending {
		if job.RosterID == rosterID {
			cancelled++
			continue
		}
		kept = append(kept, job)
	}
	s.pending = kept
	s.cancelled[rosterID] += cancelled

	return cancelled, nil
}

func (s *RecordingScheduler) Start(_ context.Context, handler notification.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
	return nil
}

func (s *RecordingScheduler) Stop() error {
	return nil
}

// Pending returns the jobs of rosterID that were neither fired nor cancelled.
func (s *RecordingScheduler) Pending(rosterID int64) []notification.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs []notification.Job
	for _, job := range s.pending {
		if job.RosterID == rosterID {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// Scheduled returns every job ever scheduled, in order.
func (s *RecordingScheduler) Scheduled() []notification.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Job(nil), s.scheduled...)
}

func (s *RecordingScheduler) Cancelled(rosterID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled[rosterID]
}

// FireAll hands every pending job to the handler passed to Start.
func (s *RecordingScheduler) FireAll(ctx context.Context) error {
	s.mu.Lock()
	jobs := s.pending
	s.pending = nil
	handler := s.handler
	s.mu.Unlock()

	for _, job := range jobs {
		if err := handler(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

var _ notification.Sender = (*RecordingSender)(nil)

type Message struct {
	ChatID int64
	Text   string
}

type RecordingSender struct {
	mu       sync.Mutex
	messages []Message
}

func (s *RecordingSender) Send(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{ChatID: chatID, Text: text})
	return nil
}

func (s *RecordingSender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

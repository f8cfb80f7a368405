package notification

import (
	"context"
	"testing"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/tests"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startAsynqScheduler(t *testing.T, h *recordingHandler) *AsynqScheduler {
	t.Helper()
	tests.SkipInfrastructure(t)

	ctx := context.Background()
	fixture, err := tests.StartRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fixture.Stop(ctx) })

	rdb, err := NewRedisClient(ctx, fixture.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewAsynqScheduler(rdb, zap.NewNop(), WithQueue("notifications_test"))
	require.NoError(t, s.Start(ctx, h.handle))
	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func Test_AsynqScheduler_Delivers_Immediate_Job(t *testing.T) {
	// Arrange
	h := &recordingHandler{}
	s := startAsynqScheduler(t, h)
	job := Job{Key: NewJobKey(11, "call"), RosterID: 11, Payload: []byte(`{"kind":"call"}`)}

	// Act
	require.NoError(t, s.Schedule(context.Background(), job))

	// Assert
	require.Eventually(t, func() bool { return h.count() == 1 }, 10*time.Second, 50*time.Millisecond)
	require.Equal(t, job.Key, h.jobs[0].Key)
	require.Equal(t, job.Payload, h.jobs[0].Payload)
}

func Test_AsynqScheduler_CancelAll_Removes_Scheduled_Jobs(t *testing.T) {
	// Arrange
	h := &recordingHandler{}
	s := startAsynqScheduler(t, h)
	ctx := context.Background()
	fireAt := time.Now().Add(2 * time.Second)

	require.NoError(t, s.Schedule(ctx, Job{Key: NewJobKey(12, "auto"), RosterID: 12, FireAt: fireAt}))

	// Act
	cancelled, err := s.CancelAll(ctx, 12)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, cancelled)
	time.Sleep(4 * time.Second)
	require.Zero(t, h.count())
}

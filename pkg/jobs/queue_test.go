package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("alerts", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "j1"})
	require.Error(t, err)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	handler := func(_ context.Context, _ Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("relay refused connection")
		}
		close(done)
		return nil
	}

	q := NewQueue("alerts", handler, QueueConfig{
		Workers:    2,
		MaxRetries: 5,
		RetryDelay: time.Millisecond,
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "region-alert"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded after retries")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var attempts int32
	handler := func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent failure")
	}

	q := NewQueue("alerts", handler, QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1"}))

	// first attempt plus two retries, then the job is dropped
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) == 3
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestQueueBackoffGrowsWithAttempt(t *testing.T) {
	q := NewQueue("alerts", func(context.Context, Job) error { return nil }, QueueConfig{
		RetryDelay: 100 * time.Millisecond,
	})
	assert.Equal(t, 100*time.Millisecond, q.backoff(1))
	assert.Equal(t, 300*time.Millisecond, q.backoff(3))
}

package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

func TestHubLateSubscriberGetsNoBacklog(t *testing.T) {
	hub := NewHub(8, zap.NewNop())

	early := hub.Subscribe()
	hub.Publish(models.Report{ID: "r1"})
	hub.Publish(models.Report{ID: "r2"})

	late := hub.Subscribe()
	hub.Publish(models.Report{ID: "r3"})

	require.Len(t, early.Events(), 3)
	assert.Equal(t, "r1", (<-early.Events()).ID)
	assert.Equal(t, "r2", (<-early.Events()).ID)
	assert.Equal(t, "r3", (<-early.Events()).ID)

	require.Len(t, late.Events(), 1)
	assert.Equal(t, "r3", (<-late.Events()).ID)
}

func TestHubDeliversFIFOPerSubscriber(t *testing.T) {
	hub := NewHub(64, zap.NewNop())
	sub := hub.Subscribe()

	for i := 0; i < 50; i++ {
		hub.Publish(models.Report{ID: fmt.Sprintf("r%d", i)})
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t, fmt.Sprintf("r%d", i), (<-sub.Events()).ID)
	}
}

func TestHubLaggingSubscriberNeverBlocksPublish(t *testing.T) {
	hub := NewHub(2, zap.NewNop())
	lagging := hub.Subscribe()
	healthy := hub.Subscribe()

	// Far more events than the lagging subscriber's buffer can hold; the
	// overflow is dropped and nothing stalls.
	for i := 0; i < 10; i++ {
		hub.Publish(models.Report{ID: fmt.Sprintf("r%d", i)})
		// Drain healthy as we go so only lagging falls behind.
		<-healthy.Events()
	}

	assert.Len(t, lagging.Events(), 2)
	assert.Equal(t, "r0", (<-lagging.Events()).ID)
	assert.Equal(t, "r1", (<-lagging.Events()).ID)
}

func TestHubUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	sub := hub.Subscribe()

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Len())

	// Channel is closed so the receive side terminates.
	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestHubConcurrentPublishAndChurn(t *testing.T) {
	hub := NewHub(256, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				hub.Publish(models.Report{ID: "r"})
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := hub.Subscribe()
				hub.Unsubscribe(sub)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
}

type recordingObserver struct {
	mu        sync.Mutex
	published int
	dropped   int
	lastCount int
}

func (o *recordingObserver) SetFeedSubscribers(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastCount = n
}

func (o *recordingObserver) IncFeedPublished() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published++
}

func (o *recordingObserver) IncFeedDropped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

func TestHubObserverSignals(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	obs := &recordingObserver{}
	hub.SetObserver(obs)

	sub := hub.Subscribe()
	assert.Equal(t, 1, obs.lastCount)

	hub.Publish(models.Report{ID: "r1"})
	hub.Publish(models.Report{ID: "r2"})
	assert.Equal(t, 2, obs.published)
	assert.Equal(t, 1, obs.dropped)

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, obs.lastCount)
}

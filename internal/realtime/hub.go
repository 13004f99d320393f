package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

// Publisher is the write side of the live feed. The report service publishes
// through this interface so tests can substitute a recorder.
type Publisher interface {
	Publish(report models.Report)
}

// Subscriber receives published reports over a buffered channel. The channel
// is owned by the hub: it is closed on Unsubscribe and must not be closed by
// the consumer.
type Subscriber struct {
	id     uint64
	events chan models.Report
}

// Events exposes the subscriber's receive channel. Delivery is FIFO in
// publish order; events are dropped, never delayed, when the consumer lags.
func (s *Subscriber) Events() <-chan models.Report {
	return s.events
}

// Observer receives hub lifecycle signals, typically for metrics.
type Observer interface {
	SetFeedSubscribers(n int)
	IncFeedPublished()
	IncFeedDropped()
}

type nopObserver struct{}

func (nopObserver) SetFeedSubscribers(int) {}
func (nopObserver) IncFeedPublished()      {}
func (nopObserver) IncFeedDropped()        {}

// Hub fans newly created reports out to every connected subscriber. There is
// no backlog: a subscriber only sees reports published while it is connected.
type Hub struct {
	mu       sync.RWMutex
	nextID   uint64
	subs     map[uint64]*Subscriber
	queue    int
	logger   *zap.Logger
	observer Observer
}

// NewHub builds a hub. queue is each subscriber's buffer depth.
func NewHub(queue int, logger *zap.Logger) *Hub {
	if queue <= 0 {
		queue = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:     make(map[uint64]*Subscriber),
		queue:    queue,
		logger:   logger,
		observer: nopObserver{},
	}
}

// SetObserver installs a metrics sink. Call before the hub starts serving.
func (h *Hub) SetObserver(o Observer) {
	if o != nil {
		h.observer = o
	}
}

// Subscribe registers a new viewer and returns its handle.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &Subscriber{
		id:     h.nextID,
		events: make(chan models.Report, h.queue),
	}
	h.subs[sub.id] = sub
	h.observer.SetFeedSubscribers(len(h.subs))
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// once per subscriber; callers must stop using the handle afterwards.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.events)
	h.observer.SetFeedSubscribers(len(h.subs))
}

// Publish delivers the report to every subscriber connected right now.
// Each delivery is a non-blocking send onto the subscriber's own channel, so
// one dead or slow viewer can neither block the caller nor starve the rest.
// The read lock excludes Unsubscribe's channel close, so a send can never hit
// a closed channel.
func (h *Hub) Publish(report models.Report) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.observer.IncFeedPublished()
	for _, sub := range h.subs {
		select {
		case sub.events <- report:
		default:
			h.observer.IncFeedDropped()
			h.logger.Warn("feed subscriber lagging, event dropped",
				zap.Uint64("subscriber_id", sub.id),
				zap.String("report_id", report.ID))
		}
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

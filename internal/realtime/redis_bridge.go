package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

// bridgeEnvelope tags each relayed report with its origin instance so an
// instance never re-delivers its own publishes.
type bridgeEnvelope struct {
	Origin string        `json:"origin"`
	Report models.Report `json:"report"`
}

// RedisBridge extends the local hub across instances: publishes are relayed
// over a Redis channel and remote publishes are fanned out locally. Delivery
// stays best-effort; a relay failure never fails the publish.
type RedisBridge struct {
	hub        *Hub
	client     *redis.Client
	channel    string
	instanceID string
	logger     *zap.Logger
}

// NewRedisBridge wraps the hub with cross-instance relay.
func NewRedisBridge(hub *Hub, client *redis.Client, channel string, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "anonsafety:new_report"
	}
	return &RedisBridge{
		hub:        hub,
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

// Publish fans out locally, then relays to peers.
func (b *RedisBridge) Publish(report models.Report) {
	b.hub.Publish(report)

	payload, err := json.Marshal(bridgeEnvelope{Origin: b.instanceID, Report: report})
	if err != nil {
		b.logger.Warn("bridge marshal failed", zap.Error(err), zap.String("report_id", report.ID))
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		b.logger.Warn("bridge relay failed", zap.Error(err), zap.String("report_id", report.ID))
	}
}

// Run consumes the relay channel until ctx is cancelled, fanning remote
// reports out to local subscribers.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close() //nolint:errcheck

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var envelope bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				b.logger.Warn("bridge payload invalid", zap.Error(err))
				continue
			}
			if envelope.Origin == b.instanceID {
				continue
			}
			b.hub.Publish(envelope.Report)
		}
	}
}

// Package events publishes live simulation events to Redis Pub/Sub so
// external subscribers (session dashboards, log tails) can follow NPC
// state without polling the API.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/need"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeNeedCrossing EventType = "need.crossing"
	EventTypeMoodChanged  EventType = "mood.changed"
	EventTypeThought      EventType = "npc.thought"
)

// globalChannel carries every event; per-NPC channels carry only that
// NPC's events.
const globalChannel = "npc-events"

// Event is the wire shape published to subscribers.
type Event struct {
	Type  EventType              `json:"type"`
	NPCID string                 `json:"npc_id,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes simulation events to Redis Pub/Sub.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishCrossing publishes a need.crossing event.
func (b *Broadcaster) PublishCrossing(ctx context.Context, ev need.CrossingEvent) error {
	event := Event{
		Type:  EventTypeNeedCrossing,
		NPCID: ev.NPCID.String(),
		Data: map[string]interface{}{
			"need":          ev.NeedID,
			"old_value":     ev.OldValue,
			"new_value":     ev.NewValue,
			"old_threshold": ev.OldThreshold,
			"new_threshold": ev.NewThreshold,
		},
	}
	return b.publishToNPC(ctx, ev.NPCID, event)
}

// PublishMood publishes a mood.changed event.
func (b *Broadcaster) PublishMood(ctx context.Context, npcID uuid.UUID, name string, eval mood.Evaluation) error {
	event := Event{
		Type:  EventTypeMoodChanged,
		NPCID: npcID.String(),
		Data: map[string]interface{}{
			"name":      name,
			"score":     eval.Score,
			"attitude":  string(eval.Attitude),
			"social_dc": eval.SocialDC,
		},
	}
	return b.publishToNPC(ctx, npcID, event)
}

// Emit publishes an npc.thought event. Satisfies the worker's
// ThoughtEmitter boundary.
func (b *Broadcaster) Emit(ctx context.Context, npcName string, thought string) error {
	event := Event{
		Type: EventTypeThought,
		Data: map[string]interface{}{
			"name":    npcName,
			"thought": thought,
		},
	}
	return b.publish(ctx, globalChannel, event)
}

// publishToNPC publishes to the NPC-specific channel and the global one.
func (b *Broadcaster) publishToNPC(ctx context.Context, npcID uuid.UUID, event Event) error {
	channel := fmt.Sprintf("%s:%s", globalChannel, npcID.String())
	if err := b.publish(ctx, channel, event); err != nil {
		return err
	}
	return b.publish(ctx, globalChannel, event)
}

func (b *Broadcaster) publish(ctx context.Context, channel string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)
	return nil
}

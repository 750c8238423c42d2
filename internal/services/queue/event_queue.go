package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

// eventsKey is the global list of serialized crossing events awaiting the
// simulation worker.
const eventsKey = "need-events"

// EventQueue manages the queue of threshold-crossing events produced by
// time advancement and consumed by the worker. It owns its Redis
// connection; Close releases it.
type EventQueue struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewEventQueue connects to Redis at addr (host:port) and returns a
// ready queue.
func NewEventQueue(addr string, logger *slog.Logger) (*EventQueue, error) {
	rdb, err := dial(addr, logger)
	if err != nil {
		return nil, err
	}
	return &EventQueue{
		rdb:    rdb,
		logger: logger,
	}, nil
}

func npcEventsKey(npcID uuid.UUID) string {
	return fmt.Sprintf("need-events:%s", npcID.String())
}

// Enqueue appends a crossing event to the global queue and to the
// per-NPC history list consumers can peek without draining the worker's
// feed.
func (eq *EventQueue) Enqueue(ctx context.Context, ev need.CrossingEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize crossing event: %w", err)
	}

	if err := eq.rdb.RPush(ctx, eventsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue crossing event: %w", err)
	}
	if err := eq.rdb.RPush(ctx, npcEventsKey(ev.NPCID), data).Err(); err != nil {
		return fmt.Errorf("failed to record npc crossing event: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next event from the global queue.
// Returns nil if the queue is empty.
func (eq *EventQueue) Dequeue(ctx context.Context) (*need.CrossingEvent, error) {
	result, err := eq.rdb.LPop(ctx, eventsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue crossing event: %w", err)
	}
	return parseEvent([]byte(result))
}

// BlockingDequeue blocks until an event is available, then returns it.
// Cancellation comes from the context.
func (eq *EventQueue) BlockingDequeue(ctx context.Context) (*need.CrossingEvent, error) {
	result, err := eq.rdb.BLPop(ctx, 0, eventsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue crossing event: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return parseEvent([]byte(result[1]))
}

// PeekNPC returns up to limit recorded events for one NPC without
// removing them. limit <= 0 returns all.
func (eq *EventQueue) PeekNPC(ctx context.Context, npcID uuid.UUID, limit int) ([]need.CrossingEvent, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}
	items, err := eq.rdb.LRange(ctx, npcEventsKey(npcID), 0, end).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to peek npc events: %w", err)
	}

	events := make([]need.CrossingEvent, 0, len(items))
	for _, item := range items {
		ev, err := parseEvent([]byte(item))
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, nil
}

// ClearNPC removes all recorded events for one NPC.
func (eq *EventQueue) ClearNPC(ctx context.Context, npcID uuid.UUID) error {
	if err := eq.rdb.Del(ctx, npcEventsKey(npcID)).Err(); err != nil {
		return fmt.Errorf("failed to clear npc events: %w", err)
	}
	return nil
}

// Depth returns the number of events waiting in the global queue.
func (eq *EventQueue) Depth(ctx context.Context) (int, error) {
	count, err := eq.rdb.LLen(ctx, eventsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get event queue depth: %w", err)
	}
	return int(count), nil
}

func parseEvent(data []byte) (*need.CrossingEvent, error) {
	var ev need.CrossingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse crossing event: %w", err)
	}
	return &ev, nil
}

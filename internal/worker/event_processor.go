package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// EventBroadcaster publishes processed events to live subscribers. The
// Redis Pub/Sub broadcaster implements it.
type EventBroadcaster interface {
	PublishCrossing(ctx context.Context, ev need.CrossingEvent) error
	PublishMood(ctx context.Context, npcID uuid.UUID, name string, eval mood.Evaluation) error
}

// ThoughtEmitter is the boundary to the external thoughts subsystem.
// The engine only hands over thought text; what happens to it is the
// host's business.
type ThoughtEmitter interface {
	Emit(ctx context.Context, npcName string, thought string) error
}

// logThoughts is the default emitter: it just logs.
type logThoughts struct {
	log *slog.Logger
}

func (lt *logThoughts) Emit(ctx context.Context, npcName string, thought string) error {
	lt.log.Info("NPC thought", "npc", npcName, "thought", thought)
	return nil
}

// EventProcessor reacts to threshold-crossing events: it refreshes the
// NPC's derived mood, records a mood snapshot, and emits a thought when a
// need has entered a more urgent band.
type EventProcessor struct {
	storage   storage.Storage
	policy    mood.Policy
	thoughts  ThoughtEmitter
	broadcast EventBroadcaster
	log       *slog.Logger
}

// NewEventProcessor creates an event processor. thoughts may be nil, in
// which case thoughts are logged.
func NewEventProcessor(st storage.Storage, policy mood.Policy, thoughts ThoughtEmitter, log *slog.Logger) *EventProcessor {
	if thoughts == nil {
		thoughts = &logThoughts{log: log}
	}
	return &EventProcessor{
		storage:  st,
		policy:   policy,
		thoughts: thoughts,
		log:      log,
	}
}

// WithBroadcaster adds a live-event broadcaster. Returns the processor
// for chaining.
func (p *EventProcessor) WithBroadcaster(b EventBroadcaster) *EventProcessor {
	p.broadcast = b
	return p
}

// Process handles one crossing event. A missing NPC is not an error: it
// was deleted after the event was queued.
func (p *EventProcessor) Process(ctx context.Context, ev *need.CrossingEvent) error {
	n, err := p.storage.LoadNPC(ctx, ev.NPCID)
	if err != nil {
		return fmt.Errorf("failed to load npc for event: %w", err)
	}
	if n == nil {
		p.log.Debug("Dropping event for deleted NPC", "npc_id", ev.NPCID.String())
		return nil
	}

	eval := mood.Evaluate(n.Needs, "", p.policy)

	if ev.NewThreshold != "" && ev.NewThreshold != ev.OldThreshold && ev.NewValue < ev.OldValue {
		thought := fmt.Sprintf("%s is feeling %s", n.Name, ev.NewThreshold)
		if err := p.thoughts.Emit(ctx, n.Name, thought); err != nil {
			p.log.Warn("Failed to emit thought", "npc", n.Name, "error", err)
		}
	}

	// The advancer writes the same key on its own schedule. Re-load
	// before saving so a tick that landed during evaluation survives;
	// only the mood snapshot is appended here.
	n, err = p.storage.LoadNPC(ctx, ev.NPCID)
	if err != nil {
		return fmt.Errorf("failed to reload npc for event: %w", err)
	}
	if n == nil {
		return nil
	}
	n.RecordMood(eval.Score, string(eval.Attitude), time.Now())

	if err := p.storage.SaveNPC(ctx, n); err != nil {
		return fmt.Errorf("failed to save npc after event: %w", err)
	}

	// Live subscribers hear about the crossing and the fresh mood.
	if p.broadcast != nil {
		if err := p.broadcast.PublishCrossing(ctx, *ev); err != nil {
			p.log.Warn("Failed to broadcast crossing event", "npc", n.Name, "error", err)
		}
		if err := p.broadcast.PublishMood(ctx, n.ID, n.Name, eval); err != nil {
			p.log.Warn("Failed to broadcast mood", "npc", n.Name, "error", err)
		}
	}
	return nil
}

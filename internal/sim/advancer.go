// Package sim advances simulated time across NPCs: batch decay, derived
// mood recomputation, and an optional repeating timer that maps real
// ticks to simulated hours.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

const advanceTimeout = 30 * time.Second

// EventSink receives crossing events produced during time advancement.
// The Redis event queue implements it; tests use in-memory sinks.
type EventSink interface {
	Enqueue(ctx context.Context, ev need.CrossingEvent) error
}

// NPCResult is the per-NPC outcome of one batch advance.
type NPCResult struct {
	NPCID  uuid.UUID            `json:"npc_id"`
	Name   string               `json:"name"`
	Mood   mood.Evaluation      `json:"mood"`
	Events []need.CrossingEvent `json:"events,omitempty"`
}

// BatchResult aggregates one advance over many NPCs.
type BatchResult struct {
	HoursElapsed float64              `json:"hours_elapsed"`
	PerNPC       []NPCResult          `json:"per_npc"`
	Events       []need.CrossingEvent `json:"events,omitempty"`
}

// Advancer applies elapsed-time decay across NPCs. Batch advancement is
// synchronous; continuous mode runs a single goroutine on a repeating
// timer. Control state (running flag, time scale) is the only shared
// state and sits behind a mutex; NPC mutation itself stays single-owner.
type Advancer struct {
	store   *npc.Store
	storage storage.Storage
	events  EventSink
	policy  mood.Policy
	logger  *slog.Logger

	mu        sync.Mutex
	interval  time.Duration
	timeScale float64
	stop      chan struct{}
	done      chan struct{}
}

// NewAdvancer builds an advancer. events may be nil when no queue is
// wired (crossing events are still returned to the caller).
func NewAdvancer(store *npc.Store, st storage.Storage, events EventSink, policy mood.Policy, interval time.Duration, timeScale float64, logger *slog.Logger) *Advancer {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Advancer{
		store:     store,
		storage:   st,
		events:    events,
		policy:    policy,
		logger:    logger,
		interval:  interval,
		timeScale: timeScale,
	}
}

// Advance applies hoursElapsed of decay to each NPC in memory, recomputes
// mood, and records a mood snapshot per NPC. The caller owns persistence.
func (a *Advancer) Advance(ctx context.Context, npcs []*npc.NPC, hoursElapsed float64, environment string) BatchResult {
	now := time.Now()
	result := BatchResult{HoursElapsed: hoursElapsed}

	for _, n := range npcs {
		events := a.store.DecayAll(n, hoursElapsed, environment, now)

		eval := mood.Evaluate(n.Needs, environment, a.policy)
		n.RecordMood(eval.Score, string(eval.Attitude), now)

		result.PerNPC = append(result.PerNPC, NPCResult{
			NPCID:  n.ID,
			Name:   n.Name,
			Mood:   eval,
			Events: events,
		})
		result.Events = append(result.Events, events...)

		if a.events != nil {
			for _, ev := range events {
				if err := a.events.Enqueue(ctx, ev); err != nil {
					a.logger.Error("Failed to enqueue crossing event",
						"npc", n.Name, "need", ev.NeedID, "error", err)
				}
			}
		}
	}
	return result
}

// AdvanceAll loads every stored NPC, advances it, and saves it back.
func (a *Advancer) AdvanceAll(ctx context.Context, hoursElapsed float64, environment string) (BatchResult, error) {
	ids, err := a.storage.ListNPCs(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list npcs: %w", err)
	}

	npcs := make([]*npc.NPC, 0, len(ids))
	for _, id := range ids {
		n, err := a.storage.LoadNPC(ctx, id)
		if err != nil {
			return BatchResult{}, fmt.Errorf("failed to load npc %s: %w", id, err)
		}
		if n == nil {
			continue // Deleted between list and load
		}
		npcs = append(npcs, n)
	}

	result := a.Advance(ctx, npcs, hoursElapsed, environment)

	for _, n := range npcs {
		if err := a.storage.SaveNPC(ctx, n); err != nil {
			return result, fmt.Errorf("failed to save npc %s: %w", n.ID, err)
		}
	}
	return result, nil
}

// Start begins automatic updates: every interval, timeScale simulated
// hours elapse for all stored NPCs. Calling Start while running is a
// no-op.
func (a *Advancer) Start(environment string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return // Already running
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	a.stop = stop
	a.done = done

	interval := a.interval
	a.logger.Info("Automatic updates started",
		"interval", interval, "time_scale", a.timeScale)

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				a.tick(environment)
			}
		}
	}()
}

// Stop halts automatic updates and waits for any in-flight tick to
// complete. Stopping when not running is a no-op.
func (a *Advancer) Stop() {
	a.mu.Lock()
	stop, done := a.stop, a.done
	a.stop = nil
	a.done = nil
	a.mu.Unlock()

	if stop == nil {
		return // Not running
	}
	close(stop)
	<-done
	a.logger.Info("Automatic updates stopped")
}

// Running reports whether automatic updates are active.
func (a *Advancer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stop != nil
}

// SetTimeScale changes how many simulated hours elapse per tick. Takes
// effect on the next tick.
func (a *Advancer) SetTimeScale(scale float64) {
	if scale <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeScale = scale
}

// TimeScale returns the current simulated-hours-per-tick multiplier.
func (a *Advancer) TimeScale() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeScale
}

func (a *Advancer) tick(environment string) {
	ctx, cancel := context.WithTimeout(context.Background(), advanceTimeout)
	defer cancel()

	hours := a.TimeScale()
	result, err := a.AdvanceAll(ctx, hours, environment)
	if err != nil {
		a.logger.Error("Automatic update failed", "error", err)
		return
	}
	a.logger.Debug("Automatic update applied",
		"npcs", len(result.PerNPC),
		"hours", hours,
		"events", len(result.Events))
}

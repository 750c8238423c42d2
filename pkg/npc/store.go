package npc

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

// ErrNotReady is returned when a Store is constructed without a loaded
// needs configuration. The host must sequence need.LoadConfig before
// building the store; there is no hidden readiness flag to poll.
var ErrNotReady = errors.New("needs configuration not loaded")

// DefaultCriticalUrgency is the urgency filter CriticalNeeds applies when
// the caller doesn't name one.
const DefaultCriticalUrgency = "critical"

// Store applies need mutations to NPCs using a loaded configuration.
// It holds no per-NPC state of its own: all mutation happens on the NPC
// the caller passes in.
type Store struct {
	cfg *need.Config
}

// NewStore builds a Store from a loaded configuration.
func NewStore(cfg *need.Config) (*Store, error) {
	if cfg == nil || len(cfg.Needs) == 0 {
		return nil, ErrNotReady
	}
	return &Store{cfg: cfg}, nil
}

// Config exposes the loaded configuration to collaborators.
func (s *Store) Config() *need.Config {
	return s.cfg
}

// InitializeNeeds seeds an instance for every configured need the NPC
// doesn't already have. Personality modifiers are resolved here:
// decay-rate multipliers stack multiplicatively, threshold shifts sum,
// and the last personality in NPC order wins a base-value override.
// Idempotent: existing instances are left alone.
func (s *Store) InitializeNeeds(n *NPC, now time.Time) {
	if n.Needs == nil {
		n.Needs = make(map[string]*need.Instance, len(s.cfg.Needs))
	}

	for id, def := range s.cfg.Needs {
		if _, ok := n.Needs[id]; ok {
			continue
		}

		rate := def.BaseDecayRate
		shift := 0.0
		baseValue := def.BaseComfortValue
		for _, personality := range n.Personalities {
			mod, ok := def.PersonalityModifiers[personality]
			if !ok {
				continue
			}
			if mod.DecayRateMultiplier != nil {
				rate *= *mod.DecayRateMultiplier
			}
			shift += mod.ThresholdShift
			if mod.BaseValue != nil {
				baseValue = mod.BaseValue
			}
		}

		n.Needs[id] = need.NewInstance(def, rate, shift, baseValue, now)
	}
	n.LastDynamicUpdate = now
}

// Satisfy applies a one-shot delta to a need. When amount is zero and a
// method id is given, the configured method supplies the amount and the
// thoughts to emit. An unknown need id yields a failure result with no
// mutation. The result always carries a threshold comparison.
func (s *Store) Satisfy(n *NPC, needID string, amount float64, methodID string, now time.Time) need.SatisfactionResult {
	in := n.Need(needID)
	if in == nil {
		return need.SatisfactionResult{
			Success: false,
			Error:   fmt.Sprintf("need %q not found", needID),
			NeedID:  needID,
		}
	}

	var thoughts []string
	if methodID != "" {
		if method, ok := s.cfg.Method(needID, methodID); ok {
			if amount == 0 {
				amount = method.Amount
			}
			thoughts = method.Thoughts
		}
	}

	result := in.Apply(amount, now)
	result.Thoughts = thoughts
	return result
}

// DecayAll advances every need on the NPC by hoursElapsed, applying any
// environmental adjustment for the named environment. A crossing event is
// emitted only for changes of significant magnitude.
func (s *Store) DecayAll(n *NPC, hoursElapsed float64, environment string, now time.Time) []need.CrossingEvent {
	if hoursElapsed <= 0 || len(n.Needs) == 0 {
		return nil
	}

	var events []need.CrossingEvent
	for _, id := range sortedNeedIDs(n.Needs) {
		in := n.Needs[id]
		oldTh, _ := in.Threshold()
		oldValue, newValue := in.Decay(hoursElapsed, s.cfg.EnvironmentDelta(id, environment), now)
		if !need.Significant(oldValue, newValue) {
			continue
		}
		newTh, _ := in.Threshold()
		events = append(events, need.CrossingEvent{
			NPCID:        n.ID,
			NeedID:       id,
			OldValue:     oldValue,
			NewValue:     newValue,
			OldThreshold: oldTh.Label,
			NewThreshold: newTh.Label,
		})
	}
	n.LastDynamicUpdate = now
	return events
}

// CriticalNeeds returns the NPC's needs whose current threshold matches
// the given urgency, most depleted first. An empty urgency filters on
// DefaultCriticalUrgency.
func (s *Store) CriticalNeeds(n *NPC, urgency string) []*need.Instance {
	if urgency == "" {
		urgency = DefaultCriticalUrgency
	}

	var matched []*need.Instance
	for _, id := range sortedNeedIDs(n.Needs) {
		if in := n.Needs[id]; in.Urgency() == urgency {
			matched = append(matched, in)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Depletion() > matched[j].Depletion()
	})
	return matched
}

// sortedNeedIDs gives deterministic iteration order over a needs map.
func sortedNeedIDs(needs map[string]*need.Instance) []string {
	ids := make([]string, 0, len(needs))
	for id := range needs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

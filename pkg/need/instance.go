package need

import (
	"math"
	"sort"
	"time"
)

// decayToBaseRate is the fraction of the gap to the comfort baseline that
// closes per simulated hour. The approach is asymptotic: the value nears
// the baseline but never lands on it exactly.
const decayToBaseRate = 0.1

// Instance is the mutable per-NPC state of one need. Current is always an
// integer in [0, Max]; every mutation rounds and clamps.
type Instance struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Category    string      `json:"category,omitempty"`
	Current     int         `json:"current"`
	Max         int         `json:"max"`
	DecayRate   float64     `json:"decay_rate"`
	Thresholds  []Threshold `json:"thresholds"`
	DecayToBase bool        `json:"decay_to_base,omitempty"`
	BaseValue   int         `json:"base_value,omitempty"`
	LastUpdated time.Time   `json:"last_updated"`
}

// NewInstance builds an instance from a definition with personality
// modifiers already resolved by the caller: decayRate is the effective
// rate, shift is the additive threshold shift, and baseValue (when
// non-nil) marks the need as decay-to-base. Current is seeded at the
// baseline for decay-to-base needs, otherwise at 75% of max.
func NewInstance(def *Definition, decayRate, shift float64, baseValue *float64, now time.Time) *Instance {
	max := int(math.Round(def.BaseMax))

	thresholds := make([]Threshold, len(def.Thresholds))
	copy(thresholds, def.Thresholds)
	if shift != 0 {
		for i := range thresholds {
			thresholds[i].Value += shift
		}
		sort.SliceStable(thresholds, func(i, j int) bool {
			return thresholds[i].Value < thresholds[j].Value
		})
	}

	in := &Instance{
		ID:          def.ID,
		Name:        def.Name,
		Category:    def.Category,
		Max:         max,
		DecayRate:   decayRate,
		Thresholds:  thresholds,
		LastUpdated: now,
	}

	if baseValue != nil {
		in.DecayToBase = true
		in.BaseValue = clampInt(int(math.Round(*baseValue)), 0, max)
		in.Current = in.BaseValue
	} else {
		in.Current = clampInt(int(math.Round(def.BaseMax*0.75)), 0, max)
	}
	return in
}

// Threshold resolves the instance's current threshold band.
func (in *Instance) Threshold() (Threshold, bool) {
	return Resolve(in.Thresholds, float64(in.Current))
}

// Urgency returns the urgency label of the current threshold band.
func (in *Instance) Urgency() string {
	th, ok := in.Threshold()
	if !ok {
		return ""
	}
	return th.Urgency
}

// Depletion is how far the need is from full. CriticalNeeds sorts on it.
func (in *Instance) Depletion() int {
	return in.Max - in.Current
}

// Apply adjusts the need by amount (positive or negative), clamping to
// [0, Max] and rounding to the nearest integer. The result always carries
// the before/after threshold comparison, even when the band is unchanged.
func (in *Instance) Apply(amount float64, now time.Time) SatisfactionResult {
	oldValue := in.Current
	oldTh, _ := in.Threshold()

	in.Current = clampInt(int(math.Round(float64(in.Current)+amount)), 0, in.Max)
	in.LastUpdated = now

	newTh, _ := in.Threshold()
	return SatisfactionResult{
		Success:          true,
		NeedID:           in.ID,
		OldValue:         oldValue,
		NewValue:         in.Current,
		AmountApplied:    in.Current - oldValue,
		OldThreshold:     &oldTh,
		NewThreshold:     &newTh,
		ThresholdChanged: oldTh != newTh,
	}
}

// Decay advances the need by hoursElapsed. Decay-to-base needs close
// decayToBaseRate of the gap to the baseline per hour, capped so a large
// step never overshoots the baseline. Other needs lose
// DecayRate*hoursElapsed, less any environmental delta (a positive delta
// slows decay, never reverses it). Returns the value before and after.
func (in *Instance) Decay(hoursElapsed, envDelta float64, now time.Time) (oldValue, newValue int) {
	oldValue = in.Current

	var next float64
	if in.DecayToBase {
		gap := float64(in.BaseValue - in.Current)
		delta := gap * decayToBaseRate * hoursElapsed
		if math.Abs(delta) > math.Abs(gap) {
			delta = gap
		}
		next = float64(in.Current) + delta
	} else {
		rate := in.DecayRate - envDelta
		if rate < 0 {
			rate = 0
		}
		next = float64(in.Current) - rate*hoursElapsed
	}

	in.Current = clampInt(int(math.Round(next)), 0, in.Max)
	in.LastUpdated = now
	return oldValue, in.Current
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

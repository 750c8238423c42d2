package need

import "github.com/google/uuid"

// SatisfactionResult reports the outcome of a single need mutation.
// Recoverable failures (unknown need id) are reported here with
// Success=false rather than as Go errors; the need is left untouched.
type SatisfactionResult struct {
	Success          bool       `json:"success"`
	Error            string     `json:"error,omitempty"`
	NeedID           string     `json:"need_id"`
	OldValue         int        `json:"old_value"`
	NewValue         int        `json:"new_value"`
	AmountApplied    int        `json:"amount_applied"`
	OldThreshold     *Threshold `json:"old_threshold,omitempty"`
	NewThreshold     *Threshold `json:"new_threshold,omitempty"`
	ThresholdChanged bool       `json:"threshold_changed"`
	Thoughts         []string   `json:"thoughts,omitempty"`
}

// CrossingEvent records a significant change in a need's value during
// time advancement. Bulk decay emits one only when the change is at least
// significantChange units; direct satisfaction calls always report the
// transition via SatisfactionResult instead.
type CrossingEvent struct {
	NPCID        uuid.UUID `json:"npc_id"`
	NeedID       string    `json:"need_id"`
	OldValue     int       `json:"old_value"`
	NewValue     int       `json:"new_value"`
	OldThreshold string    `json:"old_threshold,omitempty"`
	NewThreshold string    `json:"new_threshold,omitempty"`
}

// significantChange is the minimum absolute value change that produces a
// CrossingEvent during bulk decay.
const significantChange = 10

// Significant reports whether a value change is large enough to emit a
// crossing event from bulk decay.
func Significant(oldValue, newValue int) bool {
	d := newValue - oldValue
	if d < 0 {
		d = -d
	}
	return d >= significantChange
}

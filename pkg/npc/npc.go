package npc

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

// MoodHistoryLimit bounds the mood history ring.
const MoodHistoryLimit = 20

// MoodSnapshot is one entry in an NPC's mood history.
type MoodSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
	Attitude  string    `json:"attitude"`
}

// NPC is the aggregate the engine operates on. The host application owns
// the instance and passes it in; the engine never holds references across
// calls. Single owner at a time by convention, no locking.
type NPC struct {
	ID                uuid.UUID                 `json:"id"`
	Name              string                    `json:"name"`
	Personalities     []string                  `json:"personalities,omitempty"`
	Needs             map[string]*need.Instance `json:"needs,omitempty"`
	MoodHistory       []MoodSnapshot            `json:"mood_history,omitempty"`
	LastDynamicUpdate time.Time                 `json:"last_dynamic_update,omitempty"`
}

// New creates an NPC with no needs yet. Needs are seeded lazily by
// Store.InitializeNeeds the first time the engine touches the NPC.
func New(name string, personalities ...string) *NPC {
	return &NPC{
		ID:            uuid.New(),
		Name:          name,
		Personalities: personalities,
	}
}

// RecordMood appends a mood snapshot, trimming history to MoodHistoryLimit.
func (n *NPC) RecordMood(score float64, attitude string, now time.Time) {
	n.MoodHistory = append(n.MoodHistory, MoodSnapshot{
		Timestamp: now,
		Score:     score,
		Attitude:  attitude,
	})
	if len(n.MoodHistory) > MoodHistoryLimit {
		n.MoodHistory = n.MoodHistory[len(n.MoodHistory)-MoodHistoryLimit:]
	}
}

// Need returns the named need instance, or nil when the NPC doesn't have it.
func (n *NPC) Need(id string) *need.Instance {
	if n.Needs == nil {
		return nil
	}
	return n.Needs[id]
}

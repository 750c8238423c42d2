// Package interaction applies social-action definitions to NPCs: a skill
// check against the target's social DC, followed by the configured need
// satisfaction on success.
package interaction

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

// NeedEffect is one need-satisfaction delta an interaction applies on a
// successful check. When Amount is zero the named satisfaction method
// supplies it.
type NeedEffect struct {
	NeedID   string  `json:"needId"`
	MethodID string  `json:"methodId,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
}

// Definition describes one social interaction. Skill names the initiator
// attribute that modifies the roll; DCModifier adjusts the target's
// social DC for this interaction specifically.
type Definition struct {
	ID                string       `json:"id"`
	Name              string       `json:"name,omitempty"`
	Skill             string       `json:"skill,omitempty"`
	DCModifier        int          `json:"dcModifier,omitempty"`
	NeedEffects       []NeedEffect `json:"needEffects,omitempty"`
	RelationshipDelta float64      `json:"relationshipDelta,omitempty"`
}

// Initiator is the acting character. The d20 actor is optional; without
// one the raw check value stands alone.
type Initiator struct {
	Name  string
	Actor *d20.Actor
}

// SkillModifier reads the named attribute off the initiator's actor.
func (i *Initiator) SkillModifier(skill string) int {
	if i == nil || i.Actor == nil || skill == "" {
		return 0
	}
	if v, ok := i.Actor.Attribute(skill); ok {
		return v
	}
	return 0
}

// Result is the combined outcome of one interaction. Replaying the same
// interaction re-applies its satisfaction; there is no idempotency key.
type Result struct {
	Success           bool                      `json:"success"`
	Error             string                    `json:"error,omitempty"`
	InteractionID     string                    `json:"interaction_id"`
	CheckTotal        int                       `json:"check_total"`
	DC                int                       `json:"dc"`
	Passed            bool                      `json:"passed"`
	NeedResults       []need.SatisfactionResult `json:"need_results,omitempty"`
	RelationshipDelta float64                   `json:"relationship_delta,omitempty"`
}

// LoadDefinitions reads interaction definitions from a JSON file shaped
// as {"interactions": [Definition, ...]}.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interactions file: %w", err)
	}

	var doc struct {
		Interactions []Definition `json:"interactions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interactions: %w", err)
	}

	for i, def := range doc.Interactions {
		if def.ID == "" {
			return nil, fmt.Errorf("interaction %d is missing an id", i)
		}
	}
	return doc.Interactions, nil
}

package interaction

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// Processor resolves interactions against NPCs.
type Processor struct {
	store  *npc.Store
	defs   map[string]Definition
	policy mood.Policy
	logger *slog.Logger
}

// NewProcessor builds a processor over a set of interaction definitions.
func NewProcessor(store *npc.Store, defs []Definition, policy mood.Policy, logger *slog.Logger) *Processor {
	byID := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}
	return &Processor{
		store:  store,
		defs:   byID,
		policy: policy,
		logger: logger,
	}
}

// Definitions returns the known interaction definitions keyed by id.
func (p *Processor) Definitions() map[string]Definition {
	return p.defs
}

// Process resolves one interaction: the skill check (caller-supplied roll
// plus the initiator's skill modifier) is compared against the target's
// current social DC adjusted by the interaction. On success every
// configured need effect is applied through the store; the target's
// satisfaction transitions surface in NeedResults. A failed check mutates
// nothing. An unknown interaction id yields a failure result, mirroring
// how unknown needs are reported.
func (p *Processor) Process(initiator *Initiator, target *npc.NPC, interactionID string, skillCheck int, context string, now time.Time) Result {
	def, ok := p.defs[interactionID]
	if !ok {
		return Result{
			Success:       false,
			Error:         fmt.Sprintf("interaction %q not found", interactionID),
			InteractionID: interactionID,
		}
	}

	eval := mood.Evaluate(target.Needs, context, p.policy)
	dc := eval.SocialDC + def.DCModifier
	total := skillCheck + initiator.SkillModifier(def.Skill)
	passed := total >= dc

	result := Result{
		Success:       true,
		InteractionID: interactionID,
		CheckTotal:    total,
		DC:            dc,
		Passed:        passed,
	}

	if !passed {
		p.logger.Debug("interaction check failed",
			"interaction", interactionID,
			"npc", target.Name,
			"total", total,
			"dc", dc)
		return result
	}

	for _, effect := range def.NeedEffects {
		sr := p.store.Satisfy(target, effect.NeedID, effect.Amount, effect.MethodID, now)
		result.NeedResults = append(result.NeedResults, sr)
		if !sr.Success {
			p.logger.Warn("interaction references unknown need",
				"interaction", interactionID,
				"need", effect.NeedID)
		}
	}
	result.RelationshipDelta = def.RelationshipDelta

	// Interactions shift mood immediately; record the new reading.
	after := mood.Evaluate(target.Needs, context, p.policy)
	target.RecordMood(after.Score, string(after.Attitude), now)

	return result
}

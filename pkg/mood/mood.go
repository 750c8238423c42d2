// Package mood derives an NPC's aggregate mood, attitude and social DC
// from the threshold bands its needs currently sit in, plus scalar
// contributions from collaborating subsystems (thoughts, relationships)
// that are opaque to this package.
package mood

import (
	"math"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

// Attitude is a coarse disposition bucket derived from mood score.
type Attitude string

const (
	AttitudeHostile     Attitude = "hostile"
	AttitudeUnfriendly  Attitude = "unfriendly"
	AttitudeIndifferent Attitude = "indifferent"
	AttitudeFriendly    Attitude = "friendly"
	AttitudeHelpful     Attitude = "helpful"
)

// DefaultBaseDC is the social DC for an uninitialized or unrecognized state.
const DefaultBaseDC = 15

// Policy is the host-supplied mapping from mood score and context to a
// social DC. The exact mapping is game policy, not engine behavior.
type Policy struct {
	BaseDC      int
	ContextMods map[string]int
	MinDC       int
	MaxDC       int
}

// DefaultPolicy is the stock DC policy: base 15, DC clamped to [5, 30],
// no context adjustments.
func DefaultPolicy() Policy {
	return Policy{
		BaseDC: DefaultBaseDC,
		MinDC:  5,
		MaxDC:  30,
	}
}

// Evaluation is the derived mood state for one NPC at one moment.
type Evaluation struct {
	Score    float64  `json:"score"`
	Attitude Attitude `json:"attitude"`
	SocialDC int      `json:"social_dc"`
}

// Evaluate sums the mood effects of each need's resolved threshold with
// any external contributions, then derives attitude and social DC.
// With no needs and no contributions the result is the neutral default:
// score 0, indifferent, DC from policy base.
func Evaluate(needs map[string]*need.Instance, context string, policy Policy, contributions ...float64) Evaluation {
	score := Score(needs, contributions...)
	return Evaluation{
		Score:    score,
		Attitude: AttitudeFor(score),
		SocialDC: SocialDC(score, context, policy),
	}
}

// Score computes the aggregate mood score.
func Score(needs map[string]*need.Instance, contributions ...float64) float64 {
	var score float64
	for _, in := range needs {
		if th, ok := in.Threshold(); ok {
			score += th.MoodEffect
		}
	}
	for _, c := range contributions {
		score += c
	}
	return score
}

// AttitudeFor maps a mood score to an attitude. The mapping is a
// monotonic step function: a higher score never yields a less friendly
// attitude.
func AttitudeFor(score float64) Attitude {
	switch {
	case score <= -20:
		return AttitudeHostile
	case score <= -5:
		return AttitudeUnfriendly
	case score < 5:
		return AttitudeIndifferent
	case score < 20:
		return AttitudeFriendly
	default:
		return AttitudeHelpful
	}
}

// SocialDC derives the DC for social checks against the NPC. Better mood
// lowers the DC; the named context applies any policy modifier. An
// unrecognized context contributes nothing.
func SocialDC(score float64, context string, policy Policy) int {
	base := policy.BaseDC
	if base == 0 {
		base = DefaultBaseDC
	}
	dc := base - int(math.Round(score/5)) + policy.ContextMods[context]

	if policy.MaxDC > 0 && dc > policy.MaxDC {
		dc = policy.MaxDC
	}
	if dc < policy.MinDC {
		dc = policy.MinDC
	}
	return dc
}

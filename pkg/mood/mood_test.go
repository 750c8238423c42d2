package mood

import (
	"testing"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

func testNeeds() map[string]*need.Instance {
	def := &need.Definition{
		ID:            "hunger",
		BaseMax:       100,
		BaseDecayRate: 2,
		Thresholds: []need.Threshold{
			{Value: 0, Label: "starving", Urgency: "critical", MoodEffect: -15},
			{Value: 30, Label: "hungry", Urgency: "medium", MoodEffect: -5},
			{Value: 70, Label: "satiated", Urgency: "none", MoodEffect: 2},
		},
	}
	hunger := need.NewInstance(def, 2, 0, nil, time.Now()) // seeds at 75, satiated

	def2 := &need.Definition{
		ID:            "rest",
		BaseMax:       100,
		BaseDecayRate: 1,
		Thresholds: []need.Threshold{
			{Value: 0, Label: "exhausted", Urgency: "critical", MoodEffect: -12},
			{Value: 60, Label: "rested", Urgency: "none", MoodEffect: 3},
		},
	}
	rest := need.NewInstance(def2, 1, 0, nil, time.Now()) // 75, rested

	return map[string]*need.Instance{"hunger": hunger, "rest": rest}
}

func TestScore(t *testing.T) {
	needs := testNeeds()

	if got := Score(needs); got != 5 { // 2 + 3
		t.Errorf("Score = %v, want 5", got)
	}
	if got := Score(needs, -3, 1); got != 3 {
		t.Errorf("Score with contributions = %v, want 3", got)
	}
	if got := Score(nil); got != 0 {
		t.Errorf("Score(nil) = %v, want 0", got)
	}
}

func TestAttitudeFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Attitude
	}{
		{-25, AttitudeHostile},
		{-20, AttitudeHostile},
		{-19, AttitudeUnfriendly},
		{-5, AttitudeUnfriendly},
		{-4, AttitudeIndifferent},
		{0, AttitudeIndifferent},
		{4, AttitudeIndifferent},
		{5, AttitudeFriendly},
		{19, AttitudeFriendly},
		{20, AttitudeHelpful},
		{50, AttitudeHelpful},
	}

	for _, tt := range tests {
		if got := AttitudeFor(tt.score); got != tt.want {
			t.Errorf("AttitudeFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSocialDC(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name    string
		score   float64
		context string
		want    int
	}{
		{"neutral", 0, "", 15},
		{"good mood lowers DC", 10, "", 13},
		{"bad mood raises DC", -10, "", 17},
		{"clamps at minimum", 100, "", 5},
		{"clamps at maximum", -100, "", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SocialDC(tt.score, tt.context, policy); got != tt.want {
				t.Errorf("SocialDC(%v) = %d, want %d", tt.score, got, tt.want)
			}
		})
	}

	t.Run("context modifier", func(t *testing.T) {
		p := DefaultPolicy()
		p.ContextMods = map[string]int{"combat": 5}
		if got := SocialDC(0, "combat", p); got != 20 {
			t.Errorf("SocialDC in combat = %d, want 20", got)
		}
		if got := SocialDC(0, "teatime", p); got != 15 {
			t.Errorf("SocialDC in unknown context = %d, want 15", got)
		}
	})

	t.Run("zero base falls back to default", func(t *testing.T) {
		if got := SocialDC(0, "", Policy{MinDC: 5, MaxDC: 30}); got != DefaultBaseDC {
			t.Errorf("SocialDC = %d, want %d", got, DefaultBaseDC)
		}
	})
}

func TestEvaluate(t *testing.T) {
	needs := testNeeds()

	eval := Evaluate(needs, "", DefaultPolicy())
	if eval.Score != 5 {
		t.Errorf("Score = %v, want 5", eval.Score)
	}
	if eval.Attitude != AttitudeFriendly {
		t.Errorf("Attitude = %q, want friendly", eval.Attitude)
	}
	if eval.SocialDC != 14 {
		t.Errorf("SocialDC = %d, want 14", eval.SocialDC)
	}

	t.Run("empty state is neutral", func(t *testing.T) {
		eval := Evaluate(nil, "", DefaultPolicy())
		if eval.Score != 0 || eval.Attitude != AttitudeIndifferent || eval.SocialDC != 15 {
			t.Errorf("neutral evaluation = %+v", eval)
		}
	})
}

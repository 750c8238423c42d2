package interaction

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func testStore(t *testing.T) *npc.Store {
	t.Helper()
	cfg := &need.Config{
		Needs: map[string]*need.Definition{
			"social_contact": {
				ID:            "social_contact",
				Name:          "Social Contact",
				BaseMax:       100,
				BaseDecayRate: 1,
				Thresholds: []need.Threshold{
					{Value: 0, Label: "isolated", Urgency: "high", MoodEffect: -10},
					{Value: 50, Label: "content", Urgency: "none", MoodEffect: 0},
				},
			},
		},
		SatisfactionMethods: map[string][]need.SatisfactionMethod{
			"social_contact": {
				{ID: "conversation", Amount: 25, Thoughts: []string{"Good company."}},
			},
		},
	}
	store, err := npc.NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	defs := []Definition{
		{
			ID:    "chat",
			Name:  "Chat",
			Skill: "cha",
			NeedEffects: []NeedEffect{
				{NeedID: "social_contact", MethodID: "conversation"},
			},
			RelationshipDelta: 3,
		},
		{
			ID:         "grovel",
			DCModifier: -5,
		},
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewProcessor(testStore(t), defs, mood.DefaultPolicy(), log)
}

func testTarget(t *testing.T) *npc.NPC {
	t.Helper()
	n := npc.New("Greta")
	testStore(t).InitializeNeeds(n, time.Now())
	return n
}

func TestProcessUnknownInteraction(t *testing.T) {
	p := testProcessor(t)
	result := p.Process(&Initiator{Name: "Finn"}, testTarget(t), "juggle", 20, "", time.Now())

	if result.Success {
		t.Error("unknown interaction should yield a failure result")
	}
	if result.Error == "" {
		t.Error("failure result should carry an error message")
	}
}

func TestProcessPassedCheck(t *testing.T) {
	p := testProcessor(t)
	n := testTarget(t)
	n.Need("social_contact").Current = 30 // isolated band: mood -10, DC 17

	result := p.Process(&Initiator{Name: "Finn"}, n, "chat", 17, "", time.Now())
	if !result.Success {
		t.Fatalf("Process failed: %s", result.Error)
	}
	if result.DC != 17 {
		t.Errorf("DC = %d, want 17", result.DC)
	}
	if !result.Passed {
		t.Fatal("check of 17 against DC 17 should pass")
	}
	if len(result.NeedResults) != 1 {
		t.Fatalf("NeedResults = %+v, want one entry", result.NeedResults)
	}
	if got := n.Need("social_contact").Current; got != 55 {
		t.Errorf("social_contact = %d, want 55 after conversation", got)
	}
	if result.RelationshipDelta != 3 {
		t.Errorf("RelationshipDelta = %v, want 3", result.RelationshipDelta)
	}
	if len(n.MoodHistory) != 1 {
		t.Errorf("mood history length = %d, want 1", len(n.MoodHistory))
	}
}

func TestProcessFailedCheckMutatesNothing(t *testing.T) {
	p := testProcessor(t)
	n := testTarget(t)
	n.Need("social_contact").Current = 30

	result := p.Process(&Initiator{Name: "Finn"}, n, "chat", 1, "", time.Now())
	if !result.Success {
		t.Fatalf("Process failed: %s", result.Error)
	}
	if result.Passed {
		t.Fatal("check of 1 should fail")
	}
	if len(result.NeedResults) != 0 {
		t.Errorf("failed check should apply no effects: %+v", result.NeedResults)
	}
	if got := n.Need("social_contact").Current; got != 30 {
		t.Errorf("social_contact = %d, want 30 untouched", got)
	}
	if len(n.MoodHistory) != 0 {
		t.Errorf("failed check should not record mood: %d entries", len(n.MoodHistory))
	}
}

func TestProcessDCModifier(t *testing.T) {
	p := testProcessor(t)
	n := testTarget(t)
	n.Need("social_contact").Current = 60 // content band: mood 0, DC 15

	result := p.Process(&Initiator{Name: "Finn"}, n, "grovel", 10, "", time.Now())
	if result.DC != 10 { // 15 - 5
		t.Errorf("DC = %d, want 10", result.DC)
	}
	if !result.Passed {
		t.Error("check of 10 against DC 10 should pass")
	}
}

func TestInitiatorSkillModifier(t *testing.T) {
	actor, err := d20.NewActor("Finn").
		WithAttributes(map[string]int{"cha": 3}).
		Build()
	if err != nil {
		t.Fatalf("failed to build actor: %v", err)
	}
	init := &Initiator{Name: "Finn", Actor: actor}

	if got := init.SkillModifier("cha"); got != 3 {
		t.Errorf("SkillModifier(cha) = %d, want 3", got)
	}
	if got := init.SkillModifier("str"); got != 0 {
		t.Errorf("SkillModifier(str) = %d, want 0 for a missing attribute", got)
	}
	if got := (&Initiator{Name: "Finn"}).SkillModifier("cha"); got != 0 {
		t.Errorf("SkillModifier without an actor = %d, want 0", got)
	}
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "interactions.json")
	doc := `{"interactions": [
		{"id": "chat", "name": "Chat", "skill": "cha",
		 "needEffects": [{"needId": "social_contact", "amount": 10}]}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadDefinitions(path)
	if err != nil {
		t.Fatalf("LoadDefinitions failed: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "chat" {
		t.Fatalf("defs = %+v", defs)
	}
	if defs[0].NeedEffects[0].Amount != 10 {
		t.Errorf("effect amount = %v, want 10", defs[0].NeedEffects[0].Amount)
	}

	t.Run("missing id fails", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte(`{"interactions": [{"name": "Nameless"}]}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadDefinitions(bad); err == nil {
			t.Error("expected an error for a definition without an id")
		}
	})
}

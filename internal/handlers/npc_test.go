package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func float64Ptr(v float64) *float64 { return &v }

func testNeedsConfig() *need.Config {
	return &need.Config{
		Needs: map[string]*need.Definition{
			"hunger": {
				ID:            "hunger",
				Name:          "Hunger",
				BaseMax:       100,
				BaseDecayRate: 4,
				Thresholds: []need.Threshold{
					{Value: 0, Label: "starving", Urgency: "critical", MoodEffect: -15},
					{Value: 30, Label: "hungry", Urgency: "medium", MoodEffect: -5},
					{Value: 70, Label: "satiated", Urgency: "none", MoodEffect: 2},
				},
			},
			"social_contact": {
				ID:               "social_contact",
				Name:             "Social Contact",
				BaseMax:          100,
				BaseDecayRate:    1,
				BaseComfortValue: float64Ptr(60),
				Thresholds: []need.Threshold{
					{Value: 0, Label: "isolated", Urgency: "high", MoodEffect: -10},
					{Value: 50, Label: "content", Urgency: "none", MoodEffect: 0},
				},
			},
		},
		SatisfactionMethods: map[string][]need.SatisfactionMethod{
			"hunger": {
				{ID: "meal", Amount: 40, Thoughts: []string{"A proper meal at last."}},
			},
		},
	}
}

func testInteractions() []interaction.Definition {
	return []interaction.Definition{
		{
			ID:    "chat",
			Name:  "Chat",
			Skill: "cha",
			NeedEffects: []interaction.NeedEffect{
				{NeedID: "social_contact", Amount: 20},
			},
			RelationshipDelta: 3,
		},
	}
}

// newTestHandler wires an NPCHandler over mock storage and a
// miniredis-backed event queue.
func newTestHandler(t *testing.T) (*NPCHandler, *storage.MockStorage, *npc.Store, *queue.EventQueue) {
	t.Helper()

	mockStorage := storage.NewMockStorage()
	store, err := npc.NewStore(testNeedsConfig())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	log := testLogger()
	processor := interaction.NewProcessor(store, testInteractions(), mood.DefaultPolicy(), log)

	mr := miniredis.RunT(t)
	events, err := queue.NewEventQueue(mr.Addr(), log)
	if err != nil {
		t.Fatalf("Failed to create event queue: %v", err)
	}
	t.Cleanup(func() {
		_ = events.Close()
	})

	handler := NewNPCHandler(mockStorage, store, processor, events, mood.DefaultPolicy(), log)
	return handler, mockStorage, store, events
}

func seedTestNPC(t *testing.T, mockStorage *storage.MockStorage, store *npc.Store) *npc.NPC {
	t.Helper()
	n := npc.New("Greta", "gregarious")
	store.InitializeNeeds(n, time.Now())
	if err := mockStorage.SaveNPC(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestNPCHandler_Create(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	reqBody := `{"name":"Greta","personalities":["gregarious"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/npcs", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	var response NPCStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.NPC.ID == uuid.Nil {
		t.Error("Expected non-nil NPC ID")
	}
	if len(response.Needs) != 2 {
		t.Errorf("Needs = %+v, want 2 entries", response.Needs)
	}
	// Needs come back sorted by id.
	if response.Needs[0].ID != "hunger" || response.Needs[1].ID != "social_contact" {
		t.Errorf("needs not sorted: %+v", response.Needs)
	}
	if response.Mood.SocialDC == 0 {
		t.Error("Mood evaluation missing from status")
	}
}

func TestNPCHandler_CreateValidation(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
	}{
		{"missing name", `{"personalities":["gregarious"]}`, http.StatusBadRequest},
		{"blank name", `{"name":"   "}`, http.StatusBadRequest},
		{"invalid JSON", `{invalid json}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/npcs", strings.NewReader(tt.requestBody))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestNPCHandler_List(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	seedTestNPC(t, mockStorage, store)
	seedTestNPC(t, mockStorage, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/npcs", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var response map[string][]uuid.UUID
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response["npcs"]) != 2 {
		t.Errorf("npcs = %v, want 2 ids", response["npcs"])
	}
}

func TestNPCHandler_Status(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+n.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var response NPCStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.NPC.Name != "Greta" {
		t.Errorf("Name = %q, want Greta", response.NPC.Name)
	}
}

func TestNPCHandler_StatusErrors(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+uuid.New().String(), nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rr.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/npcs/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})

	t.Run("unknown subroute", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+uuid.New().String()+"/juggle", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rr.Code)
		}
	})

	t.Run("method not allowed on collection", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/npcs", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", rr.Code)
		}
	})
}

func TestNPCHandler_Delete(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)

	req := httptest.NewRequest(http.MethodDelete, "/v1/npcs/"+n.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	loaded, err := mockStorage.LoadNPC(context.Background(), n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Error("NPC should be gone after delete")
	}
}

func TestNPCHandler_Satisfy(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)
	n.Need("hunger").Current = 30

	reqBody := `{"need_id":"hunger","method_id":"meal"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/satisfy", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var result need.SatisfactionResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.NewValue != 70 {
		t.Errorf("NewValue = %d, want 70 after a meal", result.NewValue)
	}
	if len(result.Thoughts) == 0 {
		t.Error("method thoughts missing from result")
	}

	// Mutation must be persisted.
	saved, _ := mockStorage.LoadNPC(context.Background(), n.ID)
	if got := saved.Need("hunger").Current; got != 70 {
		t.Errorf("persisted hunger = %d, want 70", got)
	}
}

func TestNPCHandler_SatisfyErrors(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)

	t.Run("unknown need", func(t *testing.T) {
		reqBody := `{"need_id":"bloodlust","amount":10}`
		req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/satisfy", strings.NewReader(reqBody))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", rr.Code)
		}
		var result need.SatisfactionResult
		if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.Success {
			t.Error("result should report failure")
		}
	})

	t.Run("missing need_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/satisfy", strings.NewReader(`{"amount":10}`))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})
}

func TestNPCHandler_Critical(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)
	n.Need("hunger").Current = 10 // critical band

	req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+n.ID.String()+"/critical", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var response map[string][]NeedStatus
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response["needs"]) != 1 || response["needs"][0].ID != "hunger" {
		t.Errorf("needs = %+v, want just hunger", response["needs"])
	}

	t.Run("urgency filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+n.ID.String()+"/critical?urgency=high", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		var response map[string][]NeedStatus
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response["needs"]) != 0 {
			t.Errorf("needs = %+v, want none at high urgency", response["needs"])
		}
	})
}

func TestNPCHandler_Events(t *testing.T) {
	handler, mockStorage, store, events := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)

	ev := need.CrossingEvent{
		NPCID:        n.ID,
		NeedID:       "hunger",
		OldValue:     80,
		NewValue:     60,
		OldThreshold: "satiated",
		NewThreshold: "hungry",
	}
	if err := events.Enqueue(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+n.ID.String()+"/events", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var response struct {
		Events []need.CrossingEvent `json:"events"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Events) != 1 || response.Events[0].NeedID != "hunger" {
		t.Errorf("events = %+v", response.Events)
	}

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/npcs/"+n.ID.String()+"/events?limit=bogus", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})
}

func TestNPCHandler_Interaction(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)
	n.Need("social_contact").Current = 30 // isolated: mood -10 with hunger +2 -> -8, DC 17

	reqBody := `{"interaction_id":"chat","initiator":"Finn","skill_check":20}`
	req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/interactions", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var result interaction.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !result.Passed {
		t.Errorf("check of 20 should pass (DC %d)", result.DC)
	}
	if len(result.NeedResults) != 1 {
		t.Errorf("NeedResults = %+v, want one entry", result.NeedResults)
	}

	saved, _ := mockStorage.LoadNPC(context.Background(), n.ID)
	if got := saved.Need("social_contact").Current; got != 50 {
		t.Errorf("persisted social_contact = %d, want 50", got)
	}
}

func TestNPCHandler_InteractionSkillModifier(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)
	n.Need("social_contact").Current = 30 // isolated: DC 17

	// A raw 15 misses DC 17; the initiator's cha +3 carries it to 18.
	reqBody := `{"interaction_id":"chat","initiator":"Finn","attributes":{"cha":3},"skill_check":15}`
	req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/interactions", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var result interaction.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.CheckTotal != 18 {
		t.Errorf("CheckTotal = %d, want 18 (15 roll + cha 3)", result.CheckTotal)
	}
	if !result.Passed {
		t.Errorf("check should pass with the modifier (DC %d)", result.DC)
	}

	t.Run("without attributes the raw roll stands", func(t *testing.T) {
		other := seedTestNPC(t, mockStorage, store)
		other.Need("social_contact").Current = 30

		reqBody := `{"interaction_id":"chat","initiator":"Finn","skill_check":15}`
		req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+other.ID.String()+"/interactions", strings.NewReader(reqBody))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		var result interaction.Result
		if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.CheckTotal != 15 {
			t.Errorf("CheckTotal = %d, want the raw 15", result.CheckTotal)
		}
		if result.Passed {
			t.Error("a raw 15 should miss DC 17")
		}
	})
}

func TestNPCHandler_InteractionErrors(t *testing.T) {
	handler, mockStorage, store, _ := newTestHandler(t)
	n := seedTestNPC(t, mockStorage, store)

	t.Run("unknown interaction", func(t *testing.T) {
		reqBody := `{"interaction_id":"juggle","skill_check":20}`
		req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/interactions", strings.NewReader(reqBody))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rr.Code)
		}
	})

	t.Run("missing interaction_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/npcs/"+n.ID.String()+"/interactions", strings.NewReader(`{"skill_check":20}`))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/npc-engine/pkg/interaction"
)

// InteractionRequest is the body for POST /v1/npcs/{id}/interactions.
// SkillCheck is the caller's raw roll. Attributes are the initiator's
// d20 attribute scores; the one named by the interaction's skill is
// added to the roll server-side.
type InteractionRequest struct {
	InteractionID string         `json:"interaction_id"`
	Initiator     string         `json:"initiator,omitempty"`
	Attributes    map[string]int `json:"attributes,omitempty"`
	SkillCheck    int            `json:"skill_check"`
	Context       string         `json:"context,omitempty"`
}

func (h *NPCHandler) handleInteraction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.processor == nil {
		h.writeError(w, http.StatusNotImplemented, "Interactions not configured")
		return
	}

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.InteractionID) == "" {
		h.writeError(w, http.StatusBadRequest, "interaction_id is required")
		return
	}

	n, ok := h.loadNPC(w, r, id)
	if !ok {
		return
	}

	initiator := &interaction.Initiator{Name: req.Initiator}
	if len(req.Attributes) > 0 {
		actor, err := d20.NewActor(req.Initiator).
			WithAttributes(req.Attributes).
			Build()
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid initiator attributes")
			return
		}
		initiator.Actor = actor
	}

	result := h.processor.Process(initiator, n, req.InteractionID, req.SkillCheck, req.Context, time.Now())
	if !result.Success {
		w.WriteHeader(http.StatusNotFound)
		h.writeJSON(w, result)
		return
	}

	if err := h.storage.SaveNPC(r.Context(), n); err != nil {
		h.logger.Error("Failed to save NPC after interaction", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save NPC")
		return
	}

	h.logger.Info("Interaction processed",
		"npc", n.Name,
		"interaction", req.InteractionID,
		"total", result.CheckTotal,
		"dc", result.DC,
		"passed", result.Passed)
	h.writeJSON(w, result)
}

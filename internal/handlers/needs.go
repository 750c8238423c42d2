package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SatisfyRequest is the body for POST /v1/npcs/{id}/satisfy. Amount may
// be omitted when a method id supplies it.
type SatisfyRequest struct {
	NeedID   string  `json:"need_id"`
	Amount   float64 `json:"amount,omitempty"`
	MethodID string  `json:"method_id,omitempty"`
}

func (h *NPCHandler) handleSatisfy(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req SatisfyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.NeedID) == "" {
		h.writeError(w, http.StatusBadRequest, "need_id is required")
		return
	}

	n, ok := h.loadNPC(w, r, id)
	if !ok {
		return
	}

	result := h.store.Satisfy(n, req.NeedID, req.Amount, req.MethodID, time.Now())
	if !result.Success {
		// Unknown need: failure result, nothing was mutated.
		w.WriteHeader(http.StatusNotFound)
		h.writeJSON(w, result)
		return
	}

	if err := h.storage.SaveNPC(r.Context(), n); err != nil {
		h.logger.Error("Failed to save NPC after satisfy", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save NPC")
		return
	}

	h.logger.Debug("Need satisfied",
		"npc", n.Name,
		"need", req.NeedID,
		"old", result.OldValue,
		"new", result.NewValue,
		"applied", result.AmountApplied)
	h.writeJSON(w, result)
}

func (h *NPCHandler) handleCritical(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	n, ok := h.loadNPC(w, r, id)
	if !ok {
		return
	}

	urgency := r.URL.Query().Get("urgency")
	critical := h.store.CriticalNeeds(n, urgency)

	needs := make([]NeedStatus, 0, len(critical))
	for _, in := range critical {
		needs = append(needs, needStatusFor(in))
	}
	h.writeJSON(w, map[string][]NeedStatus{"needs": needs})
}

func (h *NPCHandler) handleEvents(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.events == nil {
		h.writeError(w, http.StatusNotImplemented, "Event queue not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.events.PeekNPC(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("Failed to peek NPC events", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to read events")
		return
	}
	h.writeJSON(w, map[string]interface{}{"events": events})
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// SimulationHandler controls time advancement.
// Routes:
//
//	POST /v1/simulation/advance - Advance simulated hours for all or named NPCs
//	GET  /v1/simulation/auto    - Automatic-update status
//	POST /v1/simulation/auto    - Start/stop automatic updates, set time scale
type SimulationHandler struct {
	advancer *sim.Advancer
	storage  storage.Storage
	logger   *slog.Logger
}

func NewSimulationHandler(advancer *sim.Advancer, storage storage.Storage, logger *slog.Logger) *SimulationHandler {
	return &SimulationHandler{
		advancer: advancer,
		storage:  storage,
		logger:   logger,
	}
}

// AdvanceRequest is the body for POST /v1/simulation/advance. With no
// npc_ids, every stored NPC advances.
type AdvanceRequest struct {
	Hours       float64     `json:"hours"`
	Environment string      `json:"environment,omitempty"`
	NPCIDs      []uuid.UUID `json:"npc_ids,omitempty"`
}

// AutoRequest is the body for POST /v1/simulation/auto.
type AutoRequest struct {
	Action      string  `json:"action"` // "start" or "stop"
	Environment string  `json:"environment,omitempty"`
	TimeScale   float64 `json:"time_scale,omitempty"`
}

// AutoStatusResponse reports the automatic-update state.
type AutoStatusResponse struct {
	Running   bool    `json:"running"`
	TimeScale float64 `json:"time_scale"`
}

func (h *SimulationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/v1/simulation/advance" && r.Method == http.MethodPost:
		h.handleAdvance(w, r)
	case r.URL.Path == "/v1/simulation/auto" && r.Method == http.MethodGet:
		h.writeJSON(w, AutoStatusResponse{
			Running:   h.advancer.Running(),
			TimeScale: h.advancer.TimeScale(),
		})
	case r.URL.Path == "/v1/simulation/auto" && r.Method == http.MethodPost:
		h.handleAuto(w, r)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown simulation route")
	}
}

func (h *SimulationHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Hours <= 0 {
		h.writeError(w, http.StatusBadRequest, "hours must be positive")
		return
	}

	// Named NPCs advance in memory and save here; otherwise the advancer
	// sweeps the whole store.
	if len(req.NPCIDs) > 0 {
		npcs := make([]*npc.NPC, 0, len(req.NPCIDs))
		for _, id := range req.NPCIDs {
			n, err := h.storage.LoadNPC(r.Context(), id)
			if err != nil {
				h.logger.Error("Failed to load NPC", "id", id, "error", err)
				h.writeError(w, http.StatusInternalServerError, "Failed to load NPC")
				return
			}
			if n == nil {
				h.writeError(w, http.StatusNotFound, "NPC not found: "+id.String())
				return
			}
			npcs = append(npcs, n)
		}

		result := h.advancer.Advance(r.Context(), npcs, req.Hours, req.Environment)
		for _, n := range npcs {
			if err := h.storage.SaveNPC(r.Context(), n); err != nil {
				h.logger.Error("Failed to save NPC after advance", "id", n.ID, "error", err)
				h.writeError(w, http.StatusInternalServerError, "Failed to save NPC")
				return
			}
		}
		h.writeJSON(w, result)
		return
	}

	result, err := h.advancer.AdvanceAll(r.Context(), req.Hours, req.Environment)
	if err != nil {
		h.logger.Error("Failed to advance time", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to advance time")
		return
	}
	h.writeJSON(w, result)
}

func (h *SimulationHandler) handleAuto(w http.ResponseWriter, r *http.Request) {
	var req AutoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TimeScale > 0 {
		h.advancer.SetTimeScale(req.TimeScale)
		h.logger.Info("Time scale updated", "time_scale", req.TimeScale)
	}

	switch req.Action {
	case "start":
		h.advancer.Start(req.Environment)
	case "stop":
		h.advancer.Stop()
	case "":
		// Time-scale-only update is fine.
	default:
		h.writeError(w, http.StatusBadRequest, "action must be \"start\" or \"stop\"")
		return
	}

	h.writeJSON(w, AutoStatusResponse{
		Running:   h.advancer.Running(),
		TimeScale: h.advancer.TimeScale(),
	})
}

func (h *SimulationHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *SimulationHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.writeJSON(w, ErrorResponse{Error: msg})
}

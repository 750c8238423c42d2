package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// NPCHandler serves the NPC resource and its subresources.
// Routes:
//
//	POST   /v1/npcs                     - Create and initialize an NPC
//	GET    /v1/npcs/{id}                - NPC status (needs, mood, social DC)
//	DELETE /v1/npcs/{id}                - Delete an NPC
//	POST   /v1/npcs/{id}/satisfy        - Apply a one-shot need satisfaction
//	GET    /v1/npcs/{id}/critical       - Needs at a given urgency, most depleted first
//	GET    /v1/npcs/{id}/events         - Recorded crossing events for the NPC
//	POST   /v1/npcs/{id}/interactions   - Resolve a social interaction
type NPCHandler struct {
	storage   storage.Storage
	store     *npc.Store
	processor *interaction.Processor
	events    *queue.EventQueue
	policy    mood.Policy
	logger    *slog.Logger
}

func NewNPCHandler(storage storage.Storage, store *npc.Store, processor *interaction.Processor, events *queue.EventQueue, policy mood.Policy, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		storage:   storage,
		store:     store,
		processor: processor,
		events:    events,
		policy:    policy,
		logger:    logger,
	}
}

// CreateNPCRequest is the body for POST /v1/npcs.
type CreateNPCRequest struct {
	Name          string   `json:"name"`
	Personalities []string `json:"personalities,omitempty"`
}

// NeedStatus is the per-need view in a status response.
type NeedStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Current   int    `json:"current"`
	Max       int    `json:"max"`
	Threshold string `json:"threshold"`
	Urgency   string `json:"urgency"`
}

// NPCStatusResponse is the full derived view of one NPC.
type NPCStatusResponse struct {
	NPC   *npc.NPC        `json:"npc"`
	Needs []NeedStatus    `json:"needs"`
	Mood  mood.Evaluation `json:"mood"`
}

func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/npcs")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid NPC ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid NPC ID format")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleStatus(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case sub == "satisfy" && r.Method == http.MethodPost:
		h.handleSatisfy(w, r, id)
	case sub == "critical" && r.Method == http.MethodGet:
		h.handleCritical(w, r, id)
	case sub == "events" && r.Method == http.MethodGet:
		h.handleEvents(w, r, id)
	case sub == "interactions" && r.Method == http.MethodPost:
		h.handleInteraction(w, r, id)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown NPC route")
	}
}

func (h *NPCHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateNPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "NPC name is required")
		return
	}

	n := npc.New(req.Name, req.Personalities...)
	h.store.InitializeNeeds(n, time.Now())

	if err := h.storage.SaveNPC(r.Context(), n); err != nil {
		h.logger.Error("Failed to save NPC", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save NPC")
		return
	}

	h.logger.Info("NPC created", "id", n.ID, "name", n.Name)
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, h.statusResponse(n, r.URL.Query().Get("context")))
}

func (h *NPCHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListNPCs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list NPCs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list NPCs")
		return
	}
	h.writeJSON(w, map[string][]uuid.UUID{"npcs": ids})
}

func (h *NPCHandler) handleStatus(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	n, ok := h.loadNPC(w, r, id)
	if !ok {
		return
	}
	h.writeJSON(w, h.statusResponse(n, r.URL.Query().Get("context")))
}

func (h *NPCHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteNPC(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete NPC", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete NPC")
		return
	}
	if h.events != nil {
		if err := h.events.ClearNPC(r.Context(), id); err != nil {
			h.logger.Warn("Failed to clear NPC events", "id", id, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadNPC fetches an NPC or writes the appropriate error response.
func (h *NPCHandler) loadNPC(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*npc.NPC, bool) {
	n, err := h.storage.LoadNPC(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load NPC", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load NPC")
		return nil, false
	}
	if n == nil {
		h.writeError(w, http.StatusNotFound, "NPC not found")
		return nil, false
	}
	return n, true
}

func (h *NPCHandler) statusResponse(n *npc.NPC, context string) NPCStatusResponse {
	needs := make([]NeedStatus, 0, len(n.Needs))
	for id, in := range n.Needs {
		th, _ := in.Threshold()
		needs = append(needs, NeedStatus{
			ID:        id,
			Name:      in.Name,
			Current:   in.Current,
			Max:       in.Max,
			Threshold: th.Label,
			Urgency:   th.Urgency,
		})
	}
	sort.Slice(needs, func(i, j int) bool { return needs[i].ID < needs[j].ID })

	return NPCStatusResponse{
		NPC:   n,
		Needs: needs,
		Mood:  mood.Evaluate(n.Needs, context, h.policy),
	}
}

func (h *NPCHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *NPCHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.writeJSON(w, ErrorResponse{Error: msg})
}

// needStatusFor is shared by the satisfy/critical subresource handlers.
func needStatusFor(in *need.Instance) NeedStatus {
	th, _ := in.Threshold()
	return NeedStatus{
		ID:        in.ID,
		Name:      in.Name,
		Current:   in.Current,
		Max:       in.Max,
		Threshold: th.Label,
		Urgency:   th.Urgency,
	}
}

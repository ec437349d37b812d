package swaps

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/swap-requests", func(sr chi.Router) {
		sr.Post("/", createSwapRequestHandler(svc))
		sr.Get("/", listSwapRequestsHandler(svc))
		sr.Post("/{requestID}/respond", respondHandler(svc))
	})
}

// createSwapRequestRequest: my_slot_id se ofrece a cambio de their_slot_id.
type createSwapRequestRequest struct {
	MySlotID    string `json:"my_slot_id"`
	TheirSlotID string `json:"their_slot_id"`
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

type slotResponse struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Title     string        `json:"title"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    events.Status `json:"status"`
}

// swapRequestResponse representa una solicitud de swap devuelta por la API.
type swapRequestResponse struct {
	ID               string     `json:"id"`
	RequesterID      string     `json:"requester_id"`
	RequesterName    string     `json:"requester_name,omitempty"`
	OfferedEventID   string     `json:"offered_event_id"`
	RequestedEventID string     `json:"requested_event_id"`
	RequestedOwnerID string     `json:"requested_owner_id"`
	Status           Status     `json:"status" enums:"PENDING,ACCEPTED,REJECTED"`
	CreatedAt        time.Time  `json:"created_at"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`

	// Foto actual de los slots; null si fueron borrados.
	OfferedEvent   *slotResponse `json:"offered_event,omitempty"`
	RequestedEvent *slotResponse `json:"requested_event,omitempty"`
}

type inboxResponse struct {
	Incoming []swapRequestResponse `json:"incoming"`
	Outgoing []swapRequestResponse `json:"outgoing"`
}

// createSwapRequestHandler godoc
// @Summary Solicitar swap
// @Description Ofrece un slot SWAPPABLE propio a cambio de un slot SWAPPABLE ajeno. Ambos pasan a SWAP_PENDING.
// @Tags swaps
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param payload body createSwapRequestRequest true "Slots a intercambiar"
// @Success 201 {object} swapRequestResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 422 {string} string "invalid slot"
// @Router /swap-requests [post]
func createSwapRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createSwapRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sr, err := svc.RequestSwap(r.Context(), claims.UserID, req.MySlotID, req.TheirSlotID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toSwapRequestResponse(sr))
	}
}

// listSwapRequestsHandler godoc
// @Summary Listar solicitudes
// @Description Devuelve las solicitudes recibidas (incoming) y enviadas (outgoing) por el usuario, más recientes primero. La clasificación se fija al crear la solicitud.
// @Tags swaps
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} inboxResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /swap-requests [get]
func listSwapRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		inbox, err := svc.ListForViewer(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, inboxResponse{
			Incoming: toViewResponses(inbox.Incoming),
			Outgoing: toViewResponses(inbox.Outgoing),
		})
	}
}

// respondHandler godoc
// @Summary Responder solicitud
// @Description Acepta (intercambia dueños, ambos slots BUSY) o rechaza (ambos vuelven a SWAPPABLE) una solicitud PENDING. Solo el dueño del slot pedido puede responder.
// @Tags swaps
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param requestID path string true "ID de la solicitud"
// @Param payload body respondRequest true "accept=true acepta, false rechaza"
// @Success 200 {object} swapRequestResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "swap request not found"
// @Failure 409 {string} string "request already resolved"
// @Router /swap-requests/{requestID}/respond [post]
func respondHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req respondRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sr, err := svc.RespondAs(r.Context(), chi.URLParam(r, "requestID"), claims.UserID, req.Accept)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSwapRequestResponse(sr))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidSlot):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "swap request not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toSwapRequestResponse(sr SwapRequest) swapRequestResponse {
	return swapRequestResponse{
		ID:               sr.ID,
		RequesterID:      sr.RequesterID,
		OfferedEventID:   sr.OfferedEventID,
		RequestedEventID: sr.RequestedEventID,
		RequestedOwnerID: sr.RequestedOwnerID,
		Status:           sr.Status,
		CreatedAt:        sr.CreatedAt,
		RespondedAt:      sr.RespondedAt,
	}
}

func toViewResponses(items []RequestView) []swapRequestResponse {
	out := make([]swapRequestResponse, 0, len(items))
	for _, v := range items {
		resp := toSwapRequestResponse(v.Request)
		resp.RequesterName = v.RequesterName
		resp.OfferedEvent = toSlotResponse(v.OfferedEvent)
		resp.RequestedEvent = toSlotResponse(v.RequestedEvent)
		out = append(out, resp)
	}
	return out
}

func toSlotResponse(e *events.Event) *slotResponse {
	if e == nil {
		return nil
	}
	return &slotResponse{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Status:    e.Status,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

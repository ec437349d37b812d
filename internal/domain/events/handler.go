package events

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"slot-swapper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const maxImportBytes = 1 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc))
		er.Get("/", listEventsHandler(svc))

		// Rutas fijas antes de /{eventID}
		er.Post("/series", createSeriesHandler(svc))
		er.Get("/export.ics", exportICSHandler(svc))
		er.Post("/import", importICSHandler(svc))

		er.Patch("/{eventID}", updateEventHandler(svc))
		er.Delete("/{eventID}", deleteEventHandler(svc))
		er.Post("/{eventID}/swappable", setSwappableHandler(svc))
	})
}

// createEventRequest es el cuerpo para crear un slot en el calendario propio.
type createEventRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"` // RFC3339
	EndTime   string `json:"end_time"`   // RFC3339
}

// updateEventRequest: los campos omitidos no se tocan.
type updateEventRequest struct {
	Title     *string `json:"title"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type setSwappableRequest struct {
	Swappable bool `json:"swappable"`
}

type createSeriesRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	RRule     string `json:"rrule"` // ej: FREQ=WEEKLY;COUNT=4
	Max       int    `json:"max"`
}

// eventResponse representa un slot devuelto por la API.
type eventResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status" enums:"BUSY,SWAPPABLE,SWAP_PENDING"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type importResponse struct {
	Created []eventResponse `json:"created"`
	Skipped int             `json:"skipped"`
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Crea un slot en el calendario del usuario autenticado. El status inicial es BUSY. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>`.
// @Tags events
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param payload body createEventRequest true "Datos del evento; fechas en RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / fechas inválidas"
// @Failure 401 {string} string "unauthorized"
// @Router /events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, end, err := parseRange(req.StartTime, req.EndTime)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Title:     req.Title,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// listEventsHandler godoc
// @Summary Listar mis eventos
// @Description Lista los slots del usuario autenticado ordenados por start_time.
// @Tags events
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

// updateEventHandler godoc
// @Summary Editar evento
// @Description Edita título y/o horario de un slot propio. No se puede editar un slot con un swap pendiente.
// @Tags events
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param eventID path string true "ID del evento"
// @Param payload body updateEventRequest true "Campos a modificar"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "event has a pending swap"
// @Router /events/{eventID} [patch]
func updateEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		patch := Patch{Title: req.Title}
		if req.StartTime != nil {
			t, err := time.Parse(time.RFC3339, *req.StartTime)
			if err != nil {
				http.Error(w, "start_time must be RFC3339", http.StatusBadRequest)
				return
			}
			patch.StartTime = &t
		}
		if req.EndTime != nil {
			t, err := time.Parse(time.RFC3339, *req.EndTime)
			if err != nil {
				http.Error(w, "end_time must be RFC3339", http.StatusBadRequest)
				return
			}
			patch.EndTime = &t
		}

		e, err := svc.Update(r.Context(), chi.URLParam(r, "eventID"), claims.UserID, patch)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// deleteEventHandler godoc
// @Summary Borrar evento
// @Description Borra un slot propio. No se puede borrar un slot con un swap pendiente.
// @Tags events
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param eventID path string true "ID del evento"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "event has a pending swap"
// @Router /events/{eventID} [delete]
func deleteEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "eventID"), claims.UserID); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// setSwappableHandler godoc
// @Summary Marcar/desmarcar como swappable
// @Description Alterna un slot propio entre BUSY y SWAPPABLE.
// @Tags events
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param eventID path string true "ID del evento"
// @Param payload body setSwappableRequest true "swappable=true => SWAPPABLE, false => BUSY"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "event has a pending swap"
// @Router /events/{eventID}/swappable [post]
func setSwappableHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req setSwappableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.SetSwappable(r.Context(), chi.URLParam(r, "eventID"), claims.UserID, req.Swappable)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// createSeriesHandler godoc
// @Summary Crear serie recurrente
// @Description Expande una RRULE (RFC 5545) desde start_time y crea un slot BUSY por ocurrencia (máx 52, por defecto 10).
// @Tags events
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param payload body createSeriesRequest true "Primera ocurrencia + RRULE"
// @Success 201 {array} eventResponse
// @Failure 400 {string} string "invalid json / rrule inválida"
// @Failure 401 {string} string "unauthorized"
// @Router /events/series [post]
func createSeriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createSeriesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, end, err := parseRange(req.StartTime, req.EndTime)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.CreateSeries(r.Context(), claims.UserID, SeriesInput{
			Title:     req.Title,
			StartTime: start,
			EndTime:   end,
			RRule:     req.RRule,
			Max:       req.Max,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponses(items))
	}
}

// exportICSHandler godoc
// @Summary Exportar calendario
// @Description Devuelve los slots del usuario como iCalendar (text/calendar).
// @Tags events
// @Produce text/calendar
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Success 200 {string} string "VCALENDAR"
// @Failure 401 {string} string "unauthorized"
// @Router /events/export.ics [get]
func exportICSHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		body, err := svc.ExportICS(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="slots.ics"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// importICSHandler godoc
// @Summary Importar calendario
// @Description Crea un slot BUSY por cada VEVENT válido del documento iCalendar recibido.
// @Tags events
// @Accept text/calendar
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Success 201 {object} importResponse
// @Failure 400 {string} string "calendario inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /events/import [post]
func importICSHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			http.Error(w, "calendar too large", http.StatusBadRequest)
			return
		}

		res, err := svc.ImportICS(r.Context(), claims.UserID, body)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, importResponse{
			Created: toEventResponses(res.Created),
			Skipped: res.Skipped,
		})
	}
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_time must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(endRaw))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_time must be RFC3339")
	}
	return start, end, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEventResponse(e Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toEventResponses(items []Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEventResponse(e))
	}
	return out
}

// writeJSON está duplicado en cada módulo: no hay paquete compartido de helpers HTTP.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

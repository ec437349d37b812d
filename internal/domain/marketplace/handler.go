package marketplace

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/marketplace", listMarketplaceHandler(svc))
}

// listingResponse es un slot SWAPPABLE de otro usuario.
type listingResponse struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	OwnerName string        `json:"owner_name"`
	Title     string        `json:"title"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    events.Status `json:"status"`
}

// listMarketplaceHandler godoc
// @Summary Marketplace
// @Description Lista los slots SWAPPABLE de otros usuarios, ordenados por start_time.
// @Tags marketplace
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} listingResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /marketplace [get]
func listMarketplaceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListSwappable(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].Event, items[j].Event
			if !a.StartTime.Equal(b.StartTime) {
				return a.StartTime.Before(b.StartTime)
			}
			return a.ID < b.ID
		})

		out := make([]listingResponse, 0, len(items))
		for _, l := range items {
			out = append(out, listingResponse{
				ID:        l.Event.ID,
				OwnerID:   l.Event.OwnerID,
				OwnerName: l.OwnerName,
				Title:     l.Event.Title,
				StartTime: l.Event.StartTime,
				EndTime:   l.Event.EndTime,
				Status:    l.Event.Status,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

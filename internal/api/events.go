package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/borza/internal/model"
	"github.com/erazemk/borza/internal/store"
)

// EventsHandler handles changelog endpoints.
type EventsHandler struct {
	DB *sql.DB
}

type createReleaseRequest struct {
	Title   string  `json:"title"`
	Slug    string  `json:"slug"`
	Comment string  `json:"comment"`
	Product string  `json:"product"`
	Version float64 `json:"version"`
	ItemIDs []int64 `json:"item_ids"`
}

type createImprovementRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Comment string `json:"comment"`
	ItemID  int64  `json:"item_id"`
}

// List handles GET /api/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := store.ListEvents(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Get handles GET /api/events/{slug}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := store.GetEventBySlug(r.Context(), h.DB, r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	if event == nil {
		jsonError(w, http.StatusNotFound, "event not found")
		return
	}

	items, err := store.ListEventItems(r.Context(), h.DB, event)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"event": event,
		"items": items,
	})
}

// CreateRelease handles POST /api/events/releases.
func (h *EventsHandler) CreateRelease(w http.ResponseWriter, r *http.Request) {
	var req createReleaseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slug == "" || req.Product == "" {
		jsonError(w, http.StatusBadRequest, "slug and product required")
		return
	}

	admin := CurrentUser(r.Context())
	event, err := store.CreateProductRelease(r.Context(), h.DB, admin.ID,
		req.Title, req.Slug, req.Comment, req.Product, req.Version, req.ItemIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("release published", "slug", event.Slug, "by", admin.ID)
	jsonResponse(w, http.StatusCreated, event)
}

// CreateImprovement handles POST /api/events/improvements.
func (h *EventsHandler) CreateImprovement(w http.ResponseWriter, r *http.Request) {
	var req createImprovementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slug == "" || req.ItemID == 0 {
		jsonError(w, http.StatusBadRequest, "slug and item_id required")
		return
	}

	admin := CurrentUser(r.Context())
	event, err := store.CreateRandomImprovement(r.Context(), h.DB, admin.ID,
		req.Title, req.Slug, req.Comment, req.ItemID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("improvement published", "slug", event.Slug, "by", admin.ID)
	jsonResponse(w, http.StatusCreated, event)
}

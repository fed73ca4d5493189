package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/borza/internal/model"
	"github.com/erazemk/borza/internal/store"
)

// ItemsHandler handles item lifecycle and devlog endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *model.DueDate `json:"due_date"`
}

type transitionRequest struct {
	State string `json:"state"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type devLogRequest struct {
	Message string `json:"message"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state != "" && !model.ValidState(state) {
		jsonError(w, http.StatusBadRequest, "invalid state")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, state)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	bids, err := store.ListItemBids(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}

	priority, err := store.ItemPriority(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}

	response := map[string]any{
		"item":     item,
		"bids":     bids,
		"priority": priority,
	}

	if item.State == model.StateCancelled {
		cancellation, err := store.GetCancellation(r.Context(), h.DB, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if cancellation != nil {
			response["cancellation"] = cancellation
		}
	}

	jsonResponse(w, http.StatusOK, response)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	user := CurrentUser(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, user.ID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("item requested", "item", item.Number, "by", user.ID)
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	if req.DueDate != nil {
		valid := req.DueDate.Type == model.DueWeek ||
			req.DueDate.Type == model.DueMonth ||
			req.DueDate.Type == model.DueQuarter
		if !valid {
			jsonError(w, http.StatusBadRequest, "invalid due date type")
			return
		}
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, req.Title, req.Description, req.DueDate); err != nil {
		writeError(w, err)
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("item deleted", "item", id, "by", CurrentUser(r.Context()).ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Transition handles POST /api/items/{id}/state.
func (h *ItemsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admin := CurrentUser(r.Context())
	if err := store.TransitionState(r.Context(), h.DB, admin.ID, id, req.State); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("item transitioned", "item", id, "state", req.State, "by", admin.ID)
	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Cancel handles POST /api/items/{id}/cancel.
func (h *ItemsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		jsonError(w, http.StatusBadRequest, "reason required")
		return
	}

	admin := CurrentUser(r.Context())
	if err := store.CancelItem(r.Context(), h.DB, admin.ID, id, req.Reason); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("item cancelled", "item", id, "by", admin.ID)
	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// AddDevLog handles POST /api/items/{id}/devlog.
func (h *ItemsHandler) AddDevLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req devLogRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		jsonError(w, http.StatusBadRequest, "message required")
		return
	}

	admin := CurrentUser(r.Context())
	message, err := store.AddDevLogMessage(r.Context(), h.DB, id, admin.ID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, message)
}

// ListDevLog handles GET /api/items/{id}/devlog.
func (h *ItemsHandler) ListDevLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	messages, err := store.ListDevLogMessages(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []model.DevLogMessage{}
	}
	jsonResponse(w, http.StatusOK, messages)
}

// RecentDevLog handles GET /api/devlog.
func (h *ItemsHandler) RecentDevLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, err := store.RecentDevLogActivity(r.Context(), h.DB, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []model.DevLogMessage{}
	}
	jsonResponse(w, http.StatusOK, messages)
}

// Stats handles GET /api/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	items, err := store.CountItems(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	users, err := store.CountUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := store.CountEvents(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"items":  items,
		"users":  users,
		"events": events,
	})
}

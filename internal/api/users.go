package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/borza/internal/model"
	"github.com/erazemk/borza/internal/store"
)

// UsersHandler handles user and role endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type setRoleRequest struct {
	Role string `json:"role"`
}

type setCoefficientRequest struct {
	Value float64 `json:"value"`
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []store.UserWithCoefficient{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// SetRole handles PUT /api/users/{id}/role.
func (h *UsersHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	acting := CurrentUser(r.Context())
	if err := store.SetUserRole(r.Context(), h.DB, acting.ID, id, req.Role); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("role changed", "user", id, "role", req.Role, "by", acting.ID)
	user, _ := store.GetUser(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, user)
}

// SetCoefficient handles PUT /api/users/{id}/coefficient.
func (h *UsersHandler) SetCoefficient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setCoefficientRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value <= 0 {
		jsonError(w, http.StatusBadRequest, "coefficient must be positive")
		return
	}

	if err := store.SetCoefficient(r.Context(), h.DB, id, req.Value); err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"user_id": id, "value": req.Value})
}

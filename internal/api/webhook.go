package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/borza/internal/auth"
	"github.com/erazemk/borza/internal/store"
)

// WebhookHandler receives identity-provider callbacks so user records stay
// in sync even for users who have not signed in recently.
type WebhookHandler struct {
	DB                  *sql.DB
	Secret              string
	BootstrapAdminEmail string
}

type identityWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		EmailVerified bool   `json:"email_verified"`
	} `json:"data"`
}

// Identity handles POST /webhooks/identity.
func (h *WebhookHandler) Identity(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Signature checking is skipped when no secret is configured, for local
	// development against an unsigned provider.
	if h.Secret != "" {
		signature := r.Header.Get("X-Webhook-Signature")
		mac := hmac.New(sha256.New, []byte(h.Secret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(signature), []byte(expected)) {
			jsonError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	var payload identityWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	switch payload.Type {
	case "user.created", "user.updated":
		identity := &auth.Identity{
			Subject:       payload.Data.ID,
			Email:         payload.Data.Email,
			Name:          payload.Data.Name,
			AvatarURL:     payload.Data.Picture,
			EmailVerified: payload.Data.EmailVerified,
		}
		user, err := store.SyncUser(r.Context(), h.DB, identity, h.BootstrapAdminEmail)
		if err != nil {
			writeError(w, err)
			return
		}
		if user == nil {
			jsonError(w, http.StatusBadRequest, "payload has no subject")
			return
		}
		slog.Info("identity synced via webhook", "type", payload.Type, "user", user.ID)
	default:
		// Unknown event types are acknowledged so the provider stops retrying.
		slog.Info("ignoring webhook event", "type", payload.Type)
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

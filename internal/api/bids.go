package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/borza/internal/model"
	"github.com/erazemk/borza/internal/store"
)

// BidsHandler handles bidding, ranking and portfolio endpoints.
type BidsHandler struct {
	DB *sql.DB
}

type placeBidRequest struct {
	Amount int `json:"amount"`
}

// Place handles PUT /api/items/{id}/bid.
func (h *BidsHandler) Place(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req placeBidRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := CurrentUser(r.Context())
	if _, err := store.PlaceBid(r.Context(), h.DB, user.ID, itemID, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("bid placed", "item", itemID, "amount", req.Amount, "by", user.ID)
	bid, _ := store.GetBid(r.Context(), h.DB, itemID, user.ID)
	jsonResponse(w, http.StatusOK, bid)
}

// Remove handles DELETE /api/items/{id}/bid.
func (h *BidsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	user := CurrentUser(r.Context())
	if err := store.RemoveBid(r.Context(), h.DB, user.ID, itemID); err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "bid removed"})
}

// ListForItem handles GET /api/items/{id}/bids.
func (h *BidsHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	bids, err := store.ListItemBids(r.Context(), h.DB, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}
	jsonResponse(w, http.StatusOK, bids)
}

// Ranking handles GET /api/priority.
func (h *BidsHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ranked, err := store.ListItemsByPriority(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if ranked == nil {
		ranked = []store.RankedItem{}
	}
	jsonResponse(w, http.StatusOK, ranked)
}

// Portfolio handles GET /api/portfolio.
func (h *BidsHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	portfolio, err := store.GetPortfolio(r.Context(), h.DB, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, portfolio)
}

package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, identitySecret, webhookSecret, bootstrapAdminEmail string) http.Handler {
	mux := http.NewServeMux()

	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	bidsHandler := &BidsHandler{DB: db}
	eventsHandler := &EventsHandler{DB: db}
	webhookHandler := &WebhookHandler{DB: db, Secret: webhookSecret, BootstrapAdminEmail: bootstrapAdminEmail}
	avatarsHandler := &AvatarsHandler{}

	authMW := AuthMiddleware(identitySecret, db, bootstrapAdminEmail)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireAdmin(h))
	}

	// The board, ranking and changelog are public reads.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/bids", bidsHandler.ListForItem)
	mux.HandleFunc("GET /api/items/{id}/devlog", itemsHandler.ListDevLog)
	mux.HandleFunc("GET /api/priority", bidsHandler.Ranking)
	mux.HandleFunc("GET /api/events", eventsHandler.List)
	mux.HandleFunc("GET /api/events/{slug}", eventsHandler.Get)
	mux.HandleFunc("GET /api/devlog", itemsHandler.RecentDevLog)
	mux.HandleFunc("GET /api/stats", itemsHandler.Stats)

	// Authenticated: requesting items and managing your own stake.
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("GET /api/portfolio", authMW(http.HandlerFunc(bidsHandler.Portfolio)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}/bid", authMW(http.HandlerFunc(bidsHandler.Place)))
	mux.Handle("DELETE /api/items/{id}/bid", authMW(http.HandlerFunc(bidsHandler.Remove)))

	// Admin: triage, publishing and user management.
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))
	mux.Handle("POST /api/items/{id}/state", admin(itemsHandler.Transition))
	mux.Handle("POST /api/items/{id}/cancel", admin(itemsHandler.Cancel))
	mux.Handle("POST /api/items/{id}/devlog", admin(itemsHandler.AddDevLog))
	mux.Handle("POST /api/events/releases", admin(eventsHandler.CreateRelease))
	mux.Handle("POST /api/events/improvements", admin(eventsHandler.CreateImprovement))
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("PUT /api/users/{id}/role", admin(usersHandler.SetRole))
	mux.Handle("PUT /api/users/{id}/coefficient", admin(usersHandler.SetCoefficient))

	// Identity provider callbacks and placeholder avatars.
	mux.HandleFunc("POST /webhooks/identity", webhookHandler.Identity)
	mux.HandleFunc("GET /avatars/{file}", avatarsHandler.Get)

	return mux
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nyberg/lagu/internal/notestore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth
// group.
func NewRouter(store *notestore.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Directory browsing.
	r.Get("/dir", h.GetDirectory)
	r.Post("/dir/navigate", h.Navigate)

	// Notes CRUD.
	r.Get("/notes/{filename}", h.GetNote)
	r.Put("/notes/{filename}", h.SaveNote)
	r.Delete("/notes/{filename}", h.DeleteNote)

	// Folders.
	r.Delete("/folders/{name}", h.DeleteFolder)

	// Import / export.
	r.Post("/import", h.Import)
	r.Post("/export", h.Export)

	// Root & location.
	r.Get("/root", h.GetRoot)
	r.Put("/root", h.SetRoot)
	r.Get("/location", h.GetLocation)

	// Preferences.
	r.Get("/prefs", h.GetPrefs)
	r.Put("/prefs/{key}", h.SetPref)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

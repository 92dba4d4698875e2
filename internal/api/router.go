package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/postservice"
)

// NewRouter creates a chi router with all API routes mounted.
// Read routes are public; write routes require the Bearer token when
// authEnabled is set. sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *postservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/html", h.GetPostHTML)
	r.Get("/posts/{slug}/validation", h.GetPostValidation)
	r.Get("/posts/{slug}/related", h.RelatedPosts)

	// Authoring helpers.
	r.Post("/validate", h.Validate)
	r.Post("/inline", h.Inline)

	r.Get("/search", h.Search)
	r.Get("/categories", h.Categories)
	r.Get("/cache/stats", h.CacheStats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Post("/posts", h.CreatePost)
		r.Put("/posts/{slug}", h.UpdatePost)
		r.Delete("/posts/{slug}", h.DeletePost)
	})

	return r
}

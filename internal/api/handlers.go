package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/htmlview"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

func forced(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	return force
}

func quoteETag(sum string) string {
	return `"` + sum + `"`
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts with optional pagination and filtering
//	@Tags			posts
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Filter by category"
//	@Param			tag			query		string	false	"Filter by tag"
//	@Param			featured	query		bool	false	"Filter by featured flag"
//	@Param			sort		query		string	false	"Sort order"	Enums(date-desc, date-asc, title-asc, title-desc)
//	@Success		200			{object}	PostListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	lq := index.ListQuery{
		Limit:    limit,
		Offset:   offset,
		Category: models.Category(q.Get("category")),
		Tag:      q.Get("tag"),
		Sort:     q.Get("sort"),
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("featured must be a boolean"))
			return
		}
		lq.Featured = &featured
	}

	items, total, err := h.svc.ListPosts(r.Context(), lq)
	if err != nil {
		writeServiceError(w, "list posts", "", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: total})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a post with frontmatter, blocks and related slugs
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostDetail
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.svc.GetPost(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "get post", slug, err)
		return
	}
	w.Header().Set("ETag", quoteETag(post.Checksum))
	writeJSON(w, http.StatusOK, post)
}

// GetPostHTML handles GET /api/posts/{slug}/html.
//
//	@Summary		Render a post body as an HTML fragment
//	@Tags			posts
//	@Produce		html
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug}/html [get]
func (h *Handler) GetPostHTML(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	out, err := h.svc.RenderHTML(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "render post", slug, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// GetPostValidation handles GET /api/posts/{slug}/validation.
//
//	@Summary		Validate a stored post
//	@Tags			validation
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	ValidationResponse
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug}/validation [get]
func (h *Handler) GetPostValidation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	report, err := h.svc.ValidatePost(r.Context(), slug)
	if err != nil {
		writeServiceError(w, "validate post", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RelatedPosts handles GET /api/posts/{slug}/related.
//
//	@Summary		Posts sharing tags or the category
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	RelatedResponse
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug}/related [get]
func (h *Handler) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.svc.Related(r.Context(), slug, limit)
	if err != nil {
		writeServiceError(w, "related posts", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, RelatedResponse{Posts: rows})
}

// CreatePost handles POST /api/posts.
//
//	@Summary		Create a new post
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			force	query		bool				false	"Write even when validation reports errors"
//	@Param			body	body		CreatePostRequest	true	"Post to create"
//	@Success		201		{object}	PostDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	ValidationFailedResponse
//	@Security		BearerAuth
//	@Router			/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug and content are required"))
		return
	}
	post, err := h.svc.CreatePost(r.Context(), req.Slug, []byte(req.Content), forced(r))
	if err != nil {
		writeServiceError(w, "create post", req.Slug, err)
		return
	}
	w.Header().Set("ETag", quoteETag(post.Checksum))
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/{slug}.
//
//	@Summary		Update a post with optimistic concurrency
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			slug		path		string				true	"Post slug"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			force		query		bool				false	"Write even when validation reports errors"
//	@Param			body		body		UpdatePostRequest	true	"Updated content"
//	@Success		200			{object}	PostDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	ValidationFailedResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var req UpdatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	post, err := h.svc.UpdatePost(r.Context(), slug, []byte(req.Content), ifMatch, forced(r))
	if err != nil {
		writeServiceError(w, "update post", slug, err)
		return
	}
	w.Header().Set("ETag", quoteETag(post.Checksum))
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{slug}.
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Param			slug	path	string	true	"Post slug"
//	@Success		204		"Post deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.svc.DeletePost(r.Context(), slug); err != nil {
		writeServiceError(w, "delete post", slug, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/validate.
//
//	@Summary		Validate unsaved post content
//	@Tags			validation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ValidateRequest	true	"Content to validate"
//	@Success		200		{object}	ValidationResponse
//	@Failure		400		{object}	errResponse
//	@Router			/validate [post]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ValidateContent(req.Slug, req.Content))
}

// Inline handles POST /api/inline.
//
//	@Summary		Render inline markup to a span tree
//	@Tags			render
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InlineRequest	true	"Inline text"
//	@Success		200		{object}	InlineResponse
//	@Failure		400		{object}	errResponse
//	@Router			/inline [post]
func (h *Handler) Inline(w http.ResponseWriter, r *http.Request) {
	var req InlineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, InlineResponse{
		Spans: inline.Render(req.Text),
		HTML:  htmlview.Inline(req.Text),
	})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", "", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Categories handles GET /api/categories.
//
//	@Summary		List categories with post counts
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, "categories", "", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// CacheStats handles GET /api/cache/stats.
//
//	@Summary		Parse cache statistics
//	@Tags			cache
//	@Produce		json
//	@Success		200	{object}	CacheStatsResponse
//	@Router			/cache/stats [get]
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CacheStats())
}

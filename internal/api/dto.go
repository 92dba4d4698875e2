package api

import (
	"github.com/starford/folio/internal/cache"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/postservice"
	"github.com/starford/folio/internal/validate"
)

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Slug    string `json:"slug" example:"react-hooks" validate:"required"`
	Content string `json:"content" example:"---\ntitle: Hello\n---\n# Hello" validate:"required"`
}

// UpdatePostRequest is the request body for updating a post.
type UpdatePostRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// ValidateRequest is the request body for validating unsaved content.
type ValidateRequest struct {
	Slug    string `json:"slug,omitempty" example:"react-hooks"`
	Content string `json:"content" example:"# Draft" validate:"required"`
}

// InlineRequest is the request body for rendering inline markup.
type InlineRequest struct {
	Text string `json:"text" example:"**bold** and [link](https://example.com)" validate:"required"`
}

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PostListItem is a listing row (aliased from the index layer).
type PostListItem = index.PostRow

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// RelatedResponse wraps related posts.
type RelatedResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// CategoriesResponse lists every category with its post count.
type CategoriesResponse struct {
	Categories []index.CategoryCount `json:"categories" validate:"required"`
}

// InlineResponse carries the span tree and its HTML rendering.
type InlineResponse struct {
	Spans []inline.Span `json:"spans" validate:"required"`
	HTML  string        `json:"html" validate:"required"`
}

// ValidationResponse is a validation report.
type ValidationResponse = validate.Report

// ValidationFailedResponse is returned with 422 when a write is blocked.
type ValidationFailedResponse struct {
	Error  string          `json:"error" example:"post has 1 validation error(s)" validate:"required"`
	Report validate.Report `json:"report" validate:"required"`
}

// CacheStatsResponse is the parse cache state.
type CacheStatsResponse = cache.Stats

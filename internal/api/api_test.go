package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/postservice"
	"github.com/starford/folio/internal/testutil"
	"github.com/starford/folio/internal/validate"
)

const helloPost = `---
title: Hello Folio
date: 2024-05-01
excerpt: First post.
tags: [react]
---
# Hello Folio

Welcome to **folio**.
`

const unclosedPost = "# Draft\n\n```go\nfmt.Println()\n"

// sseStub writes stream headers and blocks until the request is done.
var sseStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

// testEnv sets up a temp posts directory, SQLite DB, service, and router.
// An empty authToken selects disabled mode.
func testEnv(t *testing.T, authToken string) (*postservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestContent(t)
	db := testutil.TestDB(t)
	svc := postservice.NewService(store, db, nil, nil)
	return svc, NewRouter(svc, authToken != "", authToken, sseStub)
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createHello(t *testing.T, router http.Handler) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "hello", Content: helloPost})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCreateAndGetPost(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	w := do(t, router, http.MethodGet, "/posts/hello", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var post PostDetail
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatal(err)
	}
	if post.Slug != "hello" || post.Frontmatter.Title != "Hello Folio" {
		t.Errorf("post = %+v", post)
	}
	if len(post.Blocks) != 2 {
		t.Errorf("blocks = %d, want 2", len(post.Blocks))
	}
	if got := w.Header().Get("ETag"); got != `"`+checksum.Sum([]byte(helloPost))+`"` {
		t.Errorf("ETag = %q", got)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "hello", Content: helloPost})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreateBadRequests(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON = %d, want 400", w.Code)
	}

	if w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing content = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "Bad Slug", Content: helloPost}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid slug = %d, want 400", w.Code)
	}
}

func TestCreateBlockedByValidation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "draft", Content: unclosedPost})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp ValidationFailedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Report.Has(validate.CodeUnbalancedCodeBlocks) {
		t.Errorf("report = %+v", resp.Report)
	}

	w = do(t, router, http.MethodPost, "/posts?force=true", CreatePostRequest{Slug: "draft", Content: unclosedPost})
	if w.Code != http.StatusCreated {
		t.Fatalf("forced create = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	updated := strings.Replace(helloPost, "Welcome", "Hello again", 1)
	w := do(t, router, http.MethodPut, "/posts/hello", UpdatePostRequest{Content: updated}, "If-Match", `"wrong"`)
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}

	etag := `"` + checksum.Sum([]byte(helloPost)) + `"`
	w = do(t, router, http.MethodPut, "/posts/hello", UpdatePostRequest{Content: updated}, "If-Match", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("ETag"); got != `"`+checksum.Sum([]byte(updated))+`"` {
		t.Errorf("ETag = %q", got)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	w := do(t, router, http.MethodPut, "/posts/hello", UpdatePostRequest{Content: helloPost + "\nMore.\n"})
	if w.Code != http.StatusOK {
		t.Errorf("update = %d, want 200", w.Code)
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/posts/ghost", UpdatePostRequest{Content: helloPost})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeletePost(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	if w := do(t, router, http.MethodDelete, "/posts/hello", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/posts/hello", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/posts/hello", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListPosts(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)
	other := strings.NewReplacer("Hello Folio", "Kubernetes", "[react]", "[kubernetes]", "2024-05-01", "2024-01-01").Replace(helloPost)
	if w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "k8s", Content: other}); w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}

	w := do(t, router, http.MethodGet, "/posts", nil)
	var resp PostListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || resp.Posts[0].Slug != "hello" {
		t.Errorf("default list = %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/posts?sort=date-asc&limit=1", nil)
	resp = PostListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Posts) != 1 || resp.Posts[0].Slug != "k8s" {
		t.Errorf("date-asc page = %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/posts?category=DevOps+%26+Cloud", nil)
	resp = PostListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Posts[0].Slug != "k8s" {
		t.Errorf("category list = %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/posts?category=devops+%26+cloud", nil)
	resp = PostListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Total != 1 || resp.Posts[0].Slug != "k8s" {
		t.Errorf("lowercase category = %d %+v", w.Code, resp)
	}

	for _, q := range []string{"sort=random", "featured=maybe", "category=Cooking"} {
		if w := do(t, router, http.MethodGet, "/posts?"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", q, w.Code)
		}
	}
}

func TestPostHTMLAndValidation(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	w := do(t, router, http.MethodGet, "/posts/hello/html", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("html = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "<strong>folio</strong>") {
		t.Errorf("html body = %s", w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/posts/hello/validation", nil)
	var report validate.Report
	_ = json.Unmarshal(w.Body.Bytes(), &report)
	if w.Code != http.StatusOK || !report.Valid() {
		t.Errorf("validation = %d %+v", w.Code, report)
	}

	if w := do(t, router, http.MethodGet, "/posts/missing/html", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing html = %d, want 404", w.Code)
	}
}

func TestRelatedAndCategories(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)
	vue := strings.NewReplacer("Hello Folio", "Vue", "[react]", "[vue]").Replace(helloPost)
	do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "vue", Content: vue})

	w := do(t, router, http.MethodGet, "/posts/hello/related", nil)
	var rel RelatedResponse
	_ = json.Unmarshal(w.Body.Bytes(), &rel)
	if len(rel.Posts) != 1 || rel.Posts[0].Slug != "vue" {
		t.Errorf("related = %+v", rel)
	}

	w = do(t, router, http.MethodGet, "/categories", nil)
	var cats CategoriesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &cats)
	if len(cats.Categories) == 0 || cats.Categories[0].Count != 2 {
		t.Errorf("categories = %+v", cats)
	}
}

func TestValidateEndpoint(t *testing.T) {
	_, router := testEnv(t, "secret")

	w := do(t, router, http.MethodPost, "/validate", ValidateRequest{Content: unclosedPost})
	if w.Code != http.StatusOK {
		t.Fatalf("validate = %d", w.Code)
	}
	var report validate.Report
	_ = json.Unmarshal(w.Body.Bytes(), &report)
	if report.Valid() || !report.Has(validate.CodeUnbalancedCodeBlocks) {
		t.Errorf("report = %+v", report)
	}
}

func TestInlineEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/inline", InlineRequest{Text: "**bold** and `code`"})
	if w.Code != http.StatusOK {
		t.Fatalf("inline = %d", w.Code)
	}
	var resp InlineResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Spans) != 3 || resp.Spans[0].Kind != inline.Bold || resp.Spans[2].Kind != inline.Code {
		t.Errorf("spans = %+v", resp.Spans)
	}
	if !strings.Contains(resp.HTML, "<strong>bold</strong>") || !strings.Contains(resp.HTML, "<code>code</code>") {
		t.Errorf("html = %q", resp.HTML)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)

	w := do(t, router, http.MethodGet, "/search?q=welcome", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "hello" {
		t.Errorf("search results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createHello(t, router)
	do(t, router, http.MethodGet, "/posts/hello", nil)

	w := do(t, router, http.MethodGet, "/cache/stats", nil)
	var stats CacheStatsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Size != 1 || stats.Hits == 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "hello", Content: helloPost},
		"Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodPost, "/posts", CreatePostRequest{Slug: "hello", Content: helloPost})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/posts/hello", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed delete = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodPut, "/posts/hello", UpdatePostRequest{Content: helloPost},
		"Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ReadsArePublic(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/posts", nil); w.Code != http.StatusOK {
		t.Errorf("public list = %d, want 200", w.Code)
	}
}

func TestSSEEvents(t *testing.T) {
	_, router := testEnv(t, "secret")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("events = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

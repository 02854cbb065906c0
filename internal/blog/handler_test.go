// AngelaMos | 2026
// handler_test.go

package blog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/airline-directory/internal/middleware"
)

type roleVerifier map[string]*middleware.AccessTokenClaims

func (v roleVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func newTestRouter() http.Handler {
	verifier := roleVerifier{
		"editor":  {UserID: editor.ID, Role: editor.Role},
		"manager": {UserID: manager.ID, Role: manager.Role},
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandler(newTestService()).RegisterRoutes(r, middleware.Authenticator(verifier, "token"))
	})
	return r
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func TestBlogPostEndToEnd(t *testing.T) {
	router := newTestRouter()
	body := `{"title":"Test Blog Post Title","content":"<p>Body</p>","category":"News","tags":["Travel"],"status":"published"}`

	rec := do(router, http.MethodPost, "/api/blogs/posts", "editor", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PostResponse](t, rec)
	assert.Equal(t, "test-blog-post-title", created.Slug)
	assert.Equal(t, "pending", string(created.Status))

	rec = do(router, http.MethodGet, "/api/blogs/posts/test-blog-post-title", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/api/blogs/pending-posts", "editor", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodGet, "/api/blogs/pending-posts", "manager", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]PostResponse](t, rec), 1)

	rec = do(router, http.MethodPatch, "/api/blogs/posts/test-blog-post-title/status", "editor", `{"status":"published"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPatch, "/api/blogs/posts/test-blog-post-title/status", "manager", `{"status":"published"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/blogs/posts?tag=travel", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]PostResponse](t, rec), 1)

	rec = do(router, http.MethodGet, "/api/blogs/posts/test-blog-post-title", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[PostResponse](t, rec).Views

	do(router, http.MethodGet, "/api/blogs/posts/test-blog-post-title", "", "")
	rec = do(router, http.MethodGet, "/api/blogs/posts/test-blog-post-title", "", "")
	assert.Equal(t, before+2, decode[PostResponse](t, rec).Views)

	for range 3 {
		rec = do(router, http.MethodPost, "/api/blogs/posts/test-blog-post-title/like", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int64(3), decode[LikeResponse](t, rec).Likes)

	rec = do(router, http.MethodGet, "/api/blogs/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []CategoryCount{{Category: "news", Count: 1}}, decode[[]CategoryCount](t, rec))

	rec = do(router, http.MethodDelete, "/api/blogs/posts/test-blog-post-title", "manager", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPatch, "/api/blogs/posts/test-blog-post-title/status", "manager", `{"status":"published"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no item in a transitionable state")
}

func TestCreatePostValidation(t *testing.T) {
	router := newTestRouter()

	rec := do(router, http.MethodPost, "/api/blogs/posts", "editor", `{"title":"abc","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/blogs/posts", "", `{"title":"Valid Title","content":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// AngelaMos | 2026
// handler_test.go

package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/airline-directory/internal/middleware"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
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

func newTestRouter(m *captureMailer) http.Handler {
	repo := newMemRepo(
		&User{ID: "admin", Email: "admin@example.com", Role: rbac.RoleSuperadmin, IsActive: true},
		&User{ID: "mgr", Email: "mgr@example.com", Role: rbac.RoleManager, IsActive: true},
	)
	svc, _ := newTestService(repo, m)
	verifier := roleVerifier{
		"admin": {UserID: "admin", Role: rbac.RoleSuperadmin},
		"mgr":   {UserID: "mgr", Role: rbac.RoleManager},
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(verifier, "token"))
	})
	return r
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateUserHandler(t *testing.T) {
	body := `{"name":"Grace","email":"grace@example.com","role":"editor"}`

	t.Run("superadmin", func(t *testing.T) {
		rec := do(newTestRouter(&captureMailer{}), http.MethodPost, "/api/users", "admin", body)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("manager forbidden", func(t *testing.T) {
		rec := do(newTestRouter(&captureMailer{}), http.MethodPost, "/api/users", "mgr", body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("mail failure", func(t *testing.T) {
		rec := do(newTestRouter(&captureMailer{err: errors.New("down")}), http.MethodPost, "/api/users", "admin", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed to send invitation email")
	})

	t.Run("duplicate", func(t *testing.T) {
		dup := `{"name":"Mgr","email":"mgr@example.com","role":"editor"}`
		rec := do(newTestRouter(&captureMailer{}), http.MethodPost, "/api/users", "admin", dup)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid role", func(t *testing.T) {
		bad := `{"name":"Grace","email":"grace@example.com","role":"owner"}`
		rec := do(newTestRouter(&captureMailer{}), http.MethodPost, "/api/users", "admin", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeactivateSelfHandler(t *testing.T) {
	router := newTestRouter(&captureMailer{})

	rec := do(router, http.MethodDelete, "/api/users/admin", "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot deactivate your own account")

	rec = do(router, http.MethodDelete, "/api/users/mgr", "admin", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeHandler(t *testing.T) {
	router := newTestRouter(&captureMailer{})

	rec := do(router, http.MethodGet, "/api/users/me", "mgr", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mgr@example.com")

	rec = do(router, http.MethodGet, "/api/users", "mgr", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

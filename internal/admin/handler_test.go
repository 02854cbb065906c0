// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/airline-directory/internal/middleware"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

type fixedCount struct {
	n   int
	err error
}

func (f fixedCount) CountPending(context.Context) (int, error) { return f.n, f.err }

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

func newRouter(queues map[string]PendingCounter) http.Handler {
	h := NewHandler(HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{OpenConnections: 3, InUse: 1} },
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
		Queues:    queues,
	})
	verifier := roleVerifier{
		"manager": {UserID: "m", Role: rbac.RoleManager},
		"editor":  {UserID: "e", Role: rbac.RoleEditor},
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(verifier, "token"))
	return r
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDashboard(t *testing.T) {
	router := newRouter(map[string]PendingCounter{
		"offices": fixedCount{n: 4},
		"blogs":   fixedCount{n: 2},
	})

	assert.Equal(t, http.StatusForbidden, get(router, "/admin/dashboard", "editor").Code)

	rec := get(router, "/admin/dashboard", "manager")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data DashboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]int{"offices": 4, "blogs": 2}, body.Data.Pending)
	assert.True(t, body.Data.Database.Healthy)
	assert.Equal(t, 3, body.Data.Database.Stats.OpenConnections)
	assert.False(t, body.Data.Redis.Healthy)
	assert.Nil(t, body.Data.Redis.Stats)
}

func TestDashboardCountFailure(t *testing.T) {
	router := newRouter(map[string]PendingCounter{
		"offices": fixedCount{err: errors.New("db gone")},
	})

	assert.Equal(t, http.StatusInternalServerError, get(router, "/admin/dashboard", "manager").Code)
}

func TestRuntimeStats(t *testing.T) {
	rec := get(newRouter(nil), "/admin/stats/runtime", "manager")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_version")
}

// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/airline-directory/internal/core"
	"github.com/carterperez-dev/airline-directory/internal/rbac"
)

type stubVerifier map[string]*AccessTokenClaims

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	if token == "revoked" {
		return nil, core.ErrTokenRevoked
	}
	return nil, core.ErrTokenInvalid
}

func newProtectedRouter() http.Handler {
	verifier := stubVerifier{
		"editor-token":  {UserID: "u-editor", Role: rbac.RoleEditor},
		"manager-token": {UserID: "u-manager", Role: rbac.RoleManager},
	}

	r := chi.NewRouter()
	r.With(Authenticator(verifier, "token")).
		Get("/me", func(w http.ResponseWriter, r *http.Request) {
			core.OK(w, GetUserID(r.Context()))
		})
	r.With(Authenticator(verifier, "token"), RequireCapability(rbac.ReviewContent)).
		Get("/pending", func(w http.ResponseWriter, _ *http.Request) {
			core.OK(w, "ok")
		})
	return r
}

func TestAuthenticator(t *testing.T) {
	router := newProtectedRouter()

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"bearer header", "Bearer editor-token", "", http.StatusOK},
		{"cookie fallback", "", "editor-token", http.StatusOK},
		{"unknown token", "Bearer nope", "", http.StatusUnauthorized},
		{"revoked token", "Bearer revoked", "", http.StatusUnauthorized},
		{"malformed header", "Token editor-token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireCapability(t *testing.T) {
	router := newProtectedRouter()

	for token, want := range map[string]int{
		"editor-token":  http.StatusForbidden,
		"manager-token": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/pending", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, token)
	}
}


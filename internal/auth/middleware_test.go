package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarchy-05/ecommerce-backend/internal/config"
)

func testRouter(issuer *TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Authenticate(issuer), func(c *gin.Context) {
		identity, _ := FromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID, "isAdmin": identity.IsAdmin})
	})
	r.GET("/admin", Authenticate(issuer), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthenticate_MissingTokenIs403(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour})
	r := testRouter(issuer)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, "header %q", header)
	}
}

func TestAuthenticate_InvalidTokenIs401(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour})
	r := testRouter(issuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidTokenResolvesIdentity(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour})
	r := testRouter(issuer)

	token, err := issuer.IssueAccessToken("user-1", false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireAdmin(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour})
	r := testRouter(issuer)

	userToken, err := issuer.IssueAccessToken("user-1", false)
	require.NoError(t, err)
	adminToken, err := issuer.IssueAccessToken("admin-1", true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"groom-admin-backend/internal/config"
	"groom-admin-backend/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return s
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{SupabaseJWTSecret: testSecret}

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", handler)
	return router
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func get(router http.Handler, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	w := get(newRouter(ok), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthMiddleware_BadHeaderFormat(t *testing.T) {
	w := get(newRouter(ok), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := get(newRouter(ok), "Bearer invalid-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token format")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "6f1c4c5e-8f0a-4c1b-9a55-1f0b2a3c4d5e"}, "another-secret")
	w := get(newRouter(ok), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub": "6f1c4c5e-8f0a-4c1b-9a55-1f0b2a3c4d5e",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)
	w := get(newRouter(ok), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	token := sign(t, jwt.MapClaims{"role": "authenticated"}, testSecret)
	w := get(newRouter(ok), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub": "6f1c4c5e-8f0a-4c1b-9a55-1f0b2a3c4d5e",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	router := newRouter(func(c *gin.Context) {
		userID, exists := middleware.UserID(c)
		assert.True(t, exists)
		assert.Equal(t, "6f1c4c5e-8f0a-4c1b-9a55-1f0b2a3c4d5e", userID.String())
		assert.Equal(t, token, middleware.Token(c))
		ok(c)
	})

	// The second request is served from the verified-token cache.
	for i := 0; i < 2; i++ {
		w := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

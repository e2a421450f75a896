package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"groom-admin-backend/internal/config"
	"groom-admin-backend/internal/models"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "access_token"
)

const defaultSessionTTL = time.Minute

// Authenticator verifies Supabase access tokens. Verified tokens are
// remembered for a short TTL, never past their own expiry.
type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	verified *cache.Cache
	now      func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Authenticator{
		secret:   []byte(secret),
		ttl:      ttl,
		verified: cache.New(ttl, 2*ttl),
		now:      time.Now,
	}
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return NewAuthenticator(cfg.SupabaseJWTSecret, cfg.SessionTTL).Middleware()
}

func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "empty token", "")
			return
		}

		// Try URL decoding in case the token was URL-encoded
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		if userID, ok := a.verified.Get(tokenString); ok {
			c.Set(UserIDKey, userID.(string))
			c.Set(TokenKey, tokenString)
			c.Next()
			return
		}

		if len(strings.Split(tokenString, ".")) != 3 {
			unauthorized(c, "invalid token format", "JWT token must have 3 parts separated by dots")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if len(a.secret) == 0 {
				return nil, jwt.ErrSignatureInvalid
			}
			// Supabase JWT secret is used directly as the signing key
			return a.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(a.now))
		if err != nil {
			unauthorized(c, "invalid token", tokenErrorMessage(err))
			return
		}
		if !token.Valid {
			unauthorized(c, "invalid token", "")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			unauthorized(c, "missing user id in token", "")
			return
		}

		a.verified.Set(tokenString, sub, a.cacheFor(claims))

		c.Set(UserIDKey, sub)
		c.Set(TokenKey, tokenString)
		c.Next()
	}
}

// cacheFor returns how long a verified token may be reused.
func (a *Authenticator) cacheFor(claims jwt.MapClaims) time.Duration {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return a.ttl
	}
	left := exp.Sub(a.now())
	if left <= 0 {
		return time.Millisecond
	}
	if left < a.ttl {
		return left
	}
	return a.ttl
}

func tokenErrorMessage(err error) string {
	switch {
	case strings.Contains(err.Error(), "signature is invalid"):
		return "token signature is invalid - check JWT secret"
	case strings.Contains(err.Error(), "token is expired"):
		return "token has expired"
	case strings.Contains(err.Error(), "signing method"):
		return "token must use HS256 algorithm"
	case strings.Contains(err.Error(), "could not JSON decode"), strings.Contains(err.Error(), "malformed"):
		return "token is malformed - ensure you're using a valid Supabase JWT token"
	default:
		return err.Error()
	}
}

func unauthorized(c *gin.Context, errMsg, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: errMsg, Message: message})
}

// UserID returns the authenticated user id set by the auth middleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(UserIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Token returns the bearer token of the request.
func Token(c *gin.Context) string {
	return c.GetString(TokenKey)
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jkor2/lifeof/internal/config"
)

// RenewWithin is how close to expiry a token gets before a fresh one is
// handed back in the X-New-Token header.
const RenewWithin = 24 * time.Hour

// AdminAuth guards write routes with a bearer token signed by the
// configured secret. With no admin password configured it lets everything
// through. A password without a signing secret rejects every request.
func AdminAuth(cfg config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	if err := cfg.Validate(); err != nil {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Admin auth is not configured"})
		}
	}
	secret := []byte(cfg.JWTSecret)
	ttl := time.Duration(cfg.TokenTTLDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		token, err := jwt.Parse(auth[7:], func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		sub, _ := claims.GetSubject()
		c.Set("admin", sub)

		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			if time.Until(exp.Time) < RenewWithin {
				newToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"sub": sub,
					"exp": time.Now().Add(ttl).Unix(),
				}).SignedString(secret)
				c.Header("X-New-Token", newToken)
			}
		}

		c.Next()
	}
}

package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	adminKey     string
	adminKeyOnce sync.Once
)

// getAdminKey returns the configured admin key, loading it once from environment.
// Returns empty string if ADMIN_KEY is not set (auth disabled).
func getAdminKey() string {
	adminKeyOnce.Do(func() {
		adminKey = os.Getenv("ADMIN_KEY")
	})
	return adminKey
}

// extractBearerKey pulls the key out of a "Bearer <key>" Authorization header.
// Returns an error code when the header is absent or malformed.
func extractBearerKey(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "AUTH_REQUIRED"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "AUTH_INVALID_FORMAT"
	}
	return parts[1], ""
}

// AdminKeyAuth returns middleware that requires a valid admin key for access.
// If the ADMIN_KEY environment variable is not set, all requests are allowed
// (local development). The key is expected as "Bearer <key>".
func AdminKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getAdminKey()
		if key == "" {
			c.Next()
			return
		}

		providedKey, errCode := extractBearerKey(c)
		if errCode != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "valid admin key required",
				"code":  errCode,
			})
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid admin key",
				"code":  "AUTH_INVALID_KEY",
			})
			return
		}

		c.Next()
	}
}

// VerifyAdminKey is a handler clients call to check whether their stored
// admin key is still valid.
func VerifyAdminKey(c *gin.Context) {
	key := getAdminKey()
	if key == "" {
		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"auth_enabled": false,
			"message":      "authentication is not configured",
		})
		return
	}

	providedKey, errCode := extractBearerKey(c)
	if errCode != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "code": errCode})
		return
	}

	if subtle.ConstantTimeCompare([]byte(providedKey), []byte(key)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "code": "AUTH_INVALID_KEY"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "auth_enabled": true})
}

// GetAuthStatus reports whether authentication is enabled (ADMIN_KEY is set).
// Public endpoint, no authentication required.
func GetAuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"auth_enabled": getAdminKey() != ""})
}

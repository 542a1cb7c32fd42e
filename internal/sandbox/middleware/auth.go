package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DashboardKeyCost is the bcrypt cost used for dashboard keys.
const DashboardKeyCost = 10

// DashboardAuth guards the dashboard with a bearer key checked against a
// bcrypt hash. An empty hash disables the dashboard.
func DashboardAuth(keyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dashboard is not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		key := strings.TrimSpace(parts[1])
		if key == "" || !VerifyKey(key, keyHash) {
			logger.Warn("Dashboard authentication failed", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid dashboard key"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// HashKey hashes a dashboard key with bcrypt.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), DashboardKeyCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyKey verifies a dashboard key against a hash
func VerifyKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

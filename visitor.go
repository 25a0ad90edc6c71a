// visitor.go - privacy-conscious visitor identity and request logging
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/storage"
)

const (
	visitorCookie = "visitor_id"
	visitorKey    = "visitor"
	// one year, matching how long an untouched preference is kept
	visitorMaxAge = 3600 * 24 * 365
)

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Hash an identifier for log output (consistent per value)
func hashIP(ip, salt string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// visitorMiddleware gives every browser a random id used only as the key of
// its theme preference.
func visitorMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(visitorCookie)
		if err != nil || len(id) != 64 {
			id, err = generateToken()
			if err != nil {
				log.Error(err, "Failed to generate visitor id")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, id, visitorMaxAge, "/", "", false, true)
		}
		c.Set(visitorKey, id)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}

// requestLogger logs each request with a hashed client address.
func requestLogger(log *logger.Logger, salt string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip static files
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/favicon") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		log.Debug("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client", hashIP(c.ClientIP(), salt),
		)
	}
}

// cleanupStalePreferences removes theme preferences nobody has touched within
// ttl, once at startup and then daily.
func cleanupStalePreferences(ctx context.Context, prefs *storage.PreferenceStore, ttl time.Duration, log *logger.Logger) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		if _, err := prefs.Cleanup(ctx, time.Now().Add(-ttl)); err != nil && ctx.Err() == nil {
			log.Error(err, "Error cleaning up old preferences")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

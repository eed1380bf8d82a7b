package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	models "Corazzato/models/postgres"
	redis_models "Corazzato/models/redis"
	"Corazzato/services/redis"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// ExtractToken pulls the opaque session token from the request. Order
// matters: Authorization bearer header first, then the token query
// parameter, then a token field inside a JSON body. The body is
// restored after reading so handlers can still bind it.
func ExtractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if token := c.Query("token"); token != "" {
		return token
	}

	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}

// resolveToken maps a token onto the owning user. The Redis session
// cache is consulted first; on a miss (or with no Redis at all) the
// tokens table is authoritative. Expired rows never resolve.
func resolveToken(db *gorm.DB, rc *redis.RedisClient, token string) (uint, string, bool) {
	if token == "" {
		return 0, "", false
	}

	if rc != nil {
		if session, err := rc.GetSession(token); err == nil {
			if session.ExpiresAt.After(time.Now()) {
				return session.UserID, session.Username, true
			}
		}
	}

	var row models.Token
	err := db.Preload("User").
		Where("token = ? AND expiration > ?", token, time.Now()).
		First(&row).Error
	if err != nil {
		return 0, "", false
	}

	if rc != nil {
		err := rc.SaveSession(token, &redis_models.Session{
			UserID:    row.UserID,
			Username:  row.User.Username,
			ExpiresAt: row.Expiration,
		})
		if err != nil {
			log.WithError(err).Warn("could not cache session in redis")
		}
	}
	return row.UserID, row.User.Username, true
}

// TokenAuth rejects requests without a valid session token.
func TokenAuth(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := resolveToken(db, rc, ExtractToken(c))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUsernameKey, username)
		c.Next()
	}
}

// TokenOptional resolves a token when present but lets anonymous
// requests through. Handlers branch on CurrentUser.
func TokenOptional(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, username, ok := resolveToken(db, rc, ExtractToken(c)); ok {
			c.Set(ContextUserIDKey, userID)
			c.Set(ContextUsernameKey, username)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user id set by the auth
// middleware, or false for anonymous requests.
func CurrentUser(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}

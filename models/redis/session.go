package redis

import (
	"time"
)

// Session is the cached view of a verified token. Stored under
// "session:{token}" with a TTL matching the token's expiration, so the
// cache can never outlive the row in Postgres.
type Session struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

package postgres

import (
	"time"
)

/*
 * 'Token' is an opaque bearer token with a server-side expiration. Old
 * tokens are deleted on a new login, so the design intends at most one
 * live token per user; nothing at the schema level enforces that.
 */
type Token struct {
	Token      string    `gorm:"primaryKey;size:64;not null" json:"token"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Expiration time.Time `gorm:"not null" json:"expiration"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

package postgres

import (
	"time"
)

/*
 * 'MatchInvite' is an invitation to join an online match, addressed to a
 * user by username lookup. Only 'pending' invites are listed.
 */
type MatchInvite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `gorm:"not null" json:"from_user_id"`
	ToUserID   uint      `gorm:"not null;index" json:"to_user_id"`
	MatchID    uint      `gorm:"not null" json:"match_id"`
	Status     string    `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	FromUser User      `gorm:"foreignKey:FromUserID" json:"-"`
	ToUser   User      `gorm:"foreignKey:ToUserID" json:"-"`
	Match    GameMatch `gorm:"foreignKey:MatchID" json:"-"`
}

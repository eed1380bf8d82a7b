package postgres

import (
	"time"
)

/*
 * 'GameRecord' is one finished game result. Saving a record also bumps
 * the lifetime aggregates on UserStats, in the same transaction.
 */
type GameRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	MapID     uint      `gorm:"default:1" json:"map_id"`
	TankID    uint      `gorm:"default:1" json:"tank_id"`
	Score     int       `gorm:"default:0" json:"score"`
	Kills     int       `gorm:"default:0" json:"kills"`
	Deaths    int       `gorm:"default:0" json:"deaths"`
	Duration  int       `gorm:"default:0" json:"duration"` // seconds
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

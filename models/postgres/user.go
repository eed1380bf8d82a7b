package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a player account. It is
 * referenced by Token, UserStats, ownership rows and all match tables.
 */
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relationships
	Stats      *UserStats      `gorm:"foreignKey:UserID" json:"-"`
	Tokens     []Token         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	OwnedTanks []UserOwnedTank `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

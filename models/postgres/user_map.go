package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'UserCreatedMap' is a map authored in the editor. Width, height, biome
 * and terrain type are denormalized out of the payload for filtering; the
 * validated payload itself is stored as an opaque JSON blob. Visible to a
 * requester only when public or owned.
 */
type UserCreatedMap struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	Width       int            `gorm:"not null" json:"width"`
	Height      int            `gorm:"not null" json:"height"`
	Biome       string         `gorm:"size:50;not null;index" json:"biome"`
	TerrainType string         `gorm:"size:20;not null" json:"terrain_type"`
	MapData     datatypes.JSON `gorm:"not null" json:"map_data"`
	IsPublic    bool           `gorm:"default:false;index" json:"is_public"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	User      User              `gorm:"foreignKey:UserID" json:"-"`
	Ratings   []MapRating       `gorm:"foreignKey:MapID;constraint:OnDelete:CASCADE" json:"-"`
	Favorites []UserMapFavorite `gorm:"foreignKey:MapID;constraint:OnDelete:CASCADE" json:"-"`
}

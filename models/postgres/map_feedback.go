package postgres

import (
	"time"
)

/*
 * Read-side aggregates for user maps live in three small tables: ratings
 * (one row per map/user, last write wins), play stats (one counter row
 * per map) and favorites (one bookmark row per map/user).
 */

type MapRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MapID     uint      `gorm:"not null;uniqueIndex:idx_map_ratings_once" json:"map_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_map_ratings_once" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Map  UserCreatedMap `gorm:"foreignKey:MapID" json:"-"`
	User User           `gorm:"foreignKey:UserID" json:"-"`
}

type MapPlayStat struct {
	MapID      uint      `gorm:"primaryKey" json:"map_id"`
	PlayCount  int       `gorm:"default:0" json:"play_count"`
	LastPlayed time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"last_played"`

	Map UserCreatedMap `gorm:"foreignKey:MapID" json:"-"`
}

// The unique (map_id, user_id) index is what keeps concurrent favorite
// toggles from double-inserting.
type UserMapFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MapID     uint      `gorm:"not null;uniqueIndex:idx_map_favorites_once" json:"map_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_map_favorites_once" json:"user_id"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Map  UserCreatedMap `gorm:"foreignKey:MapID" json:"-"`
	User User           `gorm:"foreignKey:UserID" json:"-"`
}

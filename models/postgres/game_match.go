package postgres

import (
	"time"
)

/*
 * 'GameMatch' is one lobby instance, online or local co-op. Lifecycle:
 * 'waiting' until the creator starts it with at least two players, then
 * 'in_progress'. current_players is maintained with a conditional
 * increment so concurrent joins can never exceed max_players.
 */
type GameMatch struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	CreatedByUserID    uint       `gorm:"not null;index" json:"created_by_user_id"`
	MapID              uint       `gorm:"not null" json:"map_id"`
	MaxPlayers         int        `gorm:"not null" json:"max_players"`
	CurrentPlayers     int        `gorm:"default:0" json:"current_players"`
	GameMode           string     `gorm:"size:50;default:'standard'" json:"game_mode"`
	Status             string     `gorm:"size:20;default:'waiting';index" json:"status"`
	IsLocalMultiplayer bool       `gorm:"default:false" json:"is_local_multiplayer"`
	MaxTanks           int        `gorm:"default:0" json:"max_tanks"`
	PlayersPerTank     int        `gorm:"default:0" json:"players_per_tank"`
	CreatedAt          time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	StartedAt          *time.Time `json:"started_at"`

	// Relationships
	Creator User                   `gorm:"foreignKey:CreatedByUserID" json:"-"`
	Players []GameMatchPlayer      `gorm:"foreignKey:MatchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tanks   []LocalMultiplayerTank `gorm:"foreignKey:MatchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

/*
 * 'GameMatchPlayer' joins a user to a match. For local co-op it also
 * carries the tank slot, the driver/gunner role and the control scheme
 * id. A user can sit in a match only once.
 */
type GameMatchPlayer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MatchID        uint      `gorm:"not null;uniqueIndex:idx_match_players_once" json:"match_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_match_players_once" json:"user_id"`
	TankSlotNumber int       `gorm:"default:0" json:"tank_slot_number"`
	PlayerRole     string    `gorm:"size:10" json:"player_role"` // driver | gunner
	ControlScheme  int       `gorm:"default:0" json:"control_scheme"`
	Status         string    `gorm:"size:20;default:'waiting'" json:"status"` // ready | waiting
	JoinedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"joined_at"`

	Match GameMatch `gorm:"foreignKey:MatchID" json:"-"`
	User  User      `gorm:"foreignKey:UserID" json:"-"`
}

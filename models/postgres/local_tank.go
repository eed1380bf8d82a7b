package postgres

/*
 * 'LocalMultiplayerTank' is one physical tank slot of a local co-op
 * match. One row per slot is pre-created when the match is created; the
 * driver/gunner back-references are recomputed in full on every join or
 * role change.
 */
type LocalMultiplayerTank struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	MatchID        uint  `gorm:"not null;uniqueIndex:idx_local_tanks_slot" json:"match_id"`
	TankSlotNumber int   `gorm:"not null;uniqueIndex:idx_local_tanks_slot" json:"tank_slot_number"`
	TankModelID    uint  `gorm:"default:1" json:"tank_model_id"`
	SpawnX         int   `gorm:"default:0" json:"spawn_x"`
	SpawnY         int   `gorm:"default:0" json:"spawn_y"`
	TeamID         int   `gorm:"default:1" json:"team_id"`
	DriverPlayerID *uint `json:"driver_player_id"`
	GunnerPlayerID *uint `json:"gunner_player_id"`

	Match  GameMatch        `gorm:"foreignKey:MatchID" json:"-"`
	Driver *GameMatchPlayer `gorm:"foreignKey:DriverPlayerID" json:"-"`
	Gunner *GameMatchPlayer `gorm:"foreignKey:GunnerPlayerID" json:"-"`
}

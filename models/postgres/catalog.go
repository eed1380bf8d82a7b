package postgres

/*
 * Static catalog tables: the builtin maps, the purchasable tanks and the
 * tank weapons. Seeded externally, read-only at runtime.
 */

type GameMap struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Biome       string `gorm:"size:50" json:"biome"`
	Seed        string `gorm:"size:64" json:"seed"`
	CoverPath   string `gorm:"size:255" json:"cover_path"`
}

type GameTank struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	CoverPath   string `gorm:"size:255" json:"cover_path"`
	Price       int    `gorm:"default:0" json:"price"`
	Description string `gorm:"size:255" json:"description"`
}

type TankWeapon struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Type        string `gorm:"size:50" json:"type"` // cannon | machinegun
	Price       int    `gorm:"default:0" json:"price"`
	Damage      int    `gorm:"default:0" json:"damage"`
	Description string `gorm:"size:255" json:"description"`
}

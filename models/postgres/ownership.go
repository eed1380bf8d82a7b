package postgres

import (
	"time"
)

/*
 * 'UserOwnedTank' records a purchased (or granted) tank. One row per
 * (user, tank) pair.
 */
type UserOwnedTank struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_owned_tanks_user_tank" json:"user_id"`
	TankID      uint      `gorm:"not null;uniqueIndex:idx_owned_tanks_user_tank" json:"tank_id"`
	PurchasedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"purchased_at"`

	User User     `gorm:"foreignKey:UserID" json:"-"`
	Tank GameTank `gorm:"foreignKey:TankID" json:"-"`
}

/*
 * 'TankCustomization' maps a weapon onto a tank slot for one user.
 * The pair (tank_id=0, slot_position=0) is the purchase inventory:
 * owning a weapon means having such a row (or the weapon being free).
 * Inventory rows share that pair across weapons, so (user, tank, slot)
 * is a plain index; slot exclusivity is enforced in the customize flow.
 */
type TankCustomization struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	UserID       uint `gorm:"not null;index:idx_customizations_slot" json:"user_id"`
	TankID       uint `gorm:"not null;index:idx_customizations_slot" json:"tank_id"`
	WeaponID     uint `gorm:"not null" json:"weapon_id"`
	SlotPosition int  `gorm:"not null;index:idx_customizations_slot" json:"slot_position"`

	User   User       `gorm:"foreignKey:UserID" json:"-"`
	Weapon TankWeapon `gorm:"foreignKey:WeaponID" json:"-"`
}

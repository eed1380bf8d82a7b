package lobby

import (
	game_constants "Corazzato/constants/game"
	models "Corazzato/models/postgres"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors surfaced by the join/assignment flow. Controllers map
// these onto HTTP statuses; ErrMatchFull (player-count capacity) and
// ErrNoSlotAvailable (tank-seat capacity) are distinct failures.
var (
	ErrMatchNotJoinable = errors.New("match not found or not available")
	ErrMatchFull        = errors.New("match is full")
	ErrAlreadyJoined    = errors.New("already in this match")
	ErrNoSlotAvailable  = errors.New("no tank slot available")
	ErrPlayerNotSeated  = errors.New("player is not in this match")
)

// SlotAssignment is the seat a joining player gets: which shared tank,
// which role inside it, and the input scheme bound to that seat.
type SlotAssignment struct {
	TankSlot      int    `json:"tank_slot"`
	Role          string `json:"role"`
	ControlScheme int    `json:"control_scheme"`
}

// MaxTanksFor derives how many shared tanks a local match needs:
// ceil(maxPlayers/playersPerTank), capped at two tanks.
func MaxTanksFor(maxPlayers, playersPerTank int) int {
	if playersPerTank < 1 {
		playersPerTank = 1
	}
	maxTanks := (maxPlayers + playersPerTank - 1) / playersPerTank
	if maxTanks > game_constants.MaxTanksPerMatch {
		maxTanks = game_constants.MaxTanksPerMatch
	}
	if maxTanks < 1 {
		maxTanks = 1
	}
	return maxTanks
}

// ControlSchemeFor is the deterministic seat-to-scheme mapping: slot 1
// driver gets scheme 1, slot 1 gunner scheme 2, slot 2 driver scheme 3,
// and so on.
func ControlSchemeFor(tankSlot int, role string) int {
	if role == game_constants.RoleGunner {
		return (tankSlot-1)*2 + 2
	}
	return (tankSlot-1)*2 + 1
}

// FindNextAvailableSlot walks tank slots 1..maxTanks in order and picks
// the first with fewer than playersPerTank occupants. The seat is driver
// if the slot has no driver yet, gunner otherwise. Returns
// ErrNoSlotAvailable when every tank is full.
func FindNextAvailableSlot(tx *gorm.DB, matchID uint, maxTanks, playersPerTank int) (*SlotAssignment, error) {
	for tankSlot := 1; tankSlot <= maxTanks; tankSlot++ {
		var total, drivers int64
		err := tx.Model(&models.GameMatchPlayer{}).
			Where("match_id = ? AND tank_slot_number = ?", matchID, tankSlot).
			Count(&total).Error
		if err != nil {
			return nil, err
		}
		if total >= int64(playersPerTank) {
			continue
		}

		err = tx.Model(&models.GameMatchPlayer{}).
			Where("match_id = ? AND tank_slot_number = ? AND player_role = ?",
				matchID, tankSlot, game_constants.RoleDriver).
			Count(&drivers).Error
		if err != nil {
			return nil, err
		}

		role := game_constants.RoleDriver
		if drivers > 0 {
			role = game_constants.RoleGunner
		}
		return &SlotAssignment{
			TankSlot:      tankSlot,
			Role:          role,
			ControlScheme: ControlSchemeFor(tankSlot, role),
		}, nil
	}
	return nil, ErrNoSlotAvailable
}

// ReserveSeat increments current_players only while the match is still
// waiting and below capacity. The conditional UPDATE is what closes the
// check-then-insert race: of N concurrent joins, at most
// max_players - current_players ever get a row changed.
func ReserveSeat(tx *gorm.DB, matchID uint) error {
	res := tx.Model(&models.GameMatch{}).
		Where("id = ? AND status = ? AND current_players < max_players",
			matchID, game_constants.MatchStatusWaiting).
		UpdateColumn("current_players", gorm.Expr("current_players + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMatchFull
	}
	return nil
}

// SetupInitialTanks pre-creates one tank row per slot with spawn points
// spaced along x and one team per tank.
func SetupInitialTanks(tx *gorm.DB, matchID uint, maxTanks int) error {
	for slot := 1; slot <= maxTanks; slot++ {
		tank := models.LocalMultiplayerTank{
			MatchID:        matchID,
			TankSlotNumber: slot,
			TankModelID:    game_constants.DefaultTankID,
			SpawnX:         game_constants.TankSpawnBaseX + (slot-1)*game_constants.TankSpawnSpacingX,
			SpawnY:         game_constants.TankSpawnY,
			TeamID:         slot,
		}
		if err := tx.Create(&tank).Error; err != nil {
			return err
		}
	}
	return nil
}

// RecomputeTankAssignments rewrites the driver/gunner back-references of
// every tank row of the match from the current player rows. Full
// recompute rather than incremental patching: at most two tanks per
// match, and it also clears references on slots a reassignment emptied.
func RecomputeTankAssignments(tx *gorm.DB, matchID uint) error {
	var tanks []models.LocalMultiplayerTank
	if err := tx.Where("match_id = ?", matchID).
		Order("tank_slot_number").Find(&tanks).Error; err != nil {
		return err
	}

	for _, tank := range tanks {
		driverID, err := firstPlayerID(tx, matchID, tank.TankSlotNumber, game_constants.RoleDriver)
		if err != nil {
			return err
		}
		gunnerID, err := firstPlayerID(tx, matchID, tank.TankSlotNumber, game_constants.RoleGunner)
		if err != nil {
			return err
		}

		err = tx.Model(&models.LocalMultiplayerTank{}).
			Where("id = ?", tank.ID).
			Updates(map[string]interface{}{
				"driver_player_id": driverID,
				"gunner_player_id": gunnerID,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func firstPlayerID(tx *gorm.DB, matchID uint, tankSlot int, role string) (*uint, error) {
	var player models.GameMatchPlayer
	err := tx.Where("match_id = ? AND tank_slot_number = ? AND player_role = ?",
		matchID, tankSlot, role).
		Order("id").First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &player.ID, nil
}

// RoleAssignment is one creator-issued seat change for a player row.
type RoleAssignment struct {
	PlayerID      uint   `json:"player_id"`
	TankSlot      int    `json:"tank_slot"`
	Role          string `json:"role"`
	ControlScheme int    `json:"control_scheme"`
}

// ValidateAssignments rejects assignment sets that would collide: a slot
// out of 1..maxTanks, an unknown role, or the same (slot, role) seat
// handed to two players.
func ValidateAssignments(maxTanks int, assignments []RoleAssignment) error {
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if a.TankSlot < 1 || a.TankSlot > maxTanks {
			return fmt.Errorf("tank slot %d out of range", a.TankSlot)
		}
		if a.Role != game_constants.RoleDriver && a.Role != game_constants.RoleGunner {
			return fmt.Errorf("unknown role %q", a.Role)
		}
		seat := fmt.Sprintf("%d/%s", a.TankSlot, a.Role)
		if seen[seat] {
			return fmt.Errorf("duplicate assignment for slot %d %s", a.TankSlot, a.Role)
		}
		seen[seat] = true
	}
	return nil
}

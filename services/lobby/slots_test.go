package lobby_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	models "Corazzato/models/postgres"
	"Corazzato/services/lobby"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		models.User{},
		models.GameMatch{},
		models.GameMatchPlayer{},
		models.LocalMultiplayerTank{}))
	return db
}

func seedMatch(t *testing.T, db *gorm.DB, maxPlayers, playersPerTank int) models.GameMatch {
	t.Helper()
	match := models.GameMatch{
		CreatedByUserID:    1,
		MapID:              1,
		MaxPlayers:         maxPlayers,
		Status:             "waiting",
		IsLocalMultiplayer: true,
		MaxTanks:           lobby.MaxTanksFor(maxPlayers, playersPerTank),
		PlayersPerTank:     playersPerTank,
	}
	require.NoError(t, db.Create(&match).Error)
	return match
}

func seatPlayer(t *testing.T, db *gorm.DB, matchID, userID uint, slot int, role string) models.GameMatchPlayer {
	t.Helper()
	player := models.GameMatchPlayer{
		MatchID:        matchID,
		UserID:         userID,
		TankSlotNumber: slot,
		PlayerRole:     role,
		ControlScheme:  lobby.ControlSchemeFor(slot, role),
	}
	require.NoError(t, db.Create(&player).Error)
	return player
}

func TestMaxTanksFor(t *testing.T) {
	tests := []struct {
		maxPlayers     int
		playersPerTank int
		want           int
	}{
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{4, 1, 2}, // capped at two tanks
		{2, 4, 1},
		{1, 2, 1},
		{4, 0, 2}, // invalid crew size falls back to one per tank
	}
	for _, tt := range tests {
		got := lobby.MaxTanksFor(tt.maxPlayers, tt.playersPerTank)
		assert.Equal(t, tt.want, got, "MaxTanksFor(%d, %d)", tt.maxPlayers, tt.playersPerTank)
	}
}

func TestControlSchemeFor(t *testing.T) {
	assert.Equal(t, 1, lobby.ControlSchemeFor(1, "driver"))
	assert.Equal(t, 2, lobby.ControlSchemeFor(1, "gunner"))
	assert.Equal(t, 3, lobby.ControlSchemeFor(2, "driver"))
	assert.Equal(t, 4, lobby.ControlSchemeFor(2, "gunner"))
}

func TestFindNextAvailableSlotFillsDriversFirst(t *testing.T) {
	db := newTestDB(t)
	match := seedMatch(t, db, 4, 2)

	seatPlayer(t, db, match.ID, 1, 1, "driver")

	seat, err := lobby.FindNextAvailableSlot(db, match.ID, match.MaxTanks, match.PlayersPerTank)
	require.NoError(t, err)
	assert.Equal(t, 1, seat.TankSlot)
	assert.Equal(t, "gunner", seat.Role)
	assert.Equal(t, 2, seat.ControlScheme)

	seatPlayer(t, db, match.ID, 2, 1, "gunner")
	seat, err = lobby.FindNextAvailableSlot(db, match.ID, match.MaxTanks, match.PlayersPerTank)
	require.NoError(t, err)
	assert.Equal(t, 2, seat.TankSlot)
	assert.Equal(t, "driver", seat.Role)

	seatPlayer(t, db, match.ID, 3, 2, "driver")
	seatPlayer(t, db, match.ID, 4, 2, "gunner")
	_, err = lobby.FindNextAvailableSlot(db, match.ID, match.MaxTanks, match.PlayersPerTank)
	assert.ErrorIs(t, err, lobby.ErrNoSlotAvailable)
}

func TestReserveSeatEnforcesCapacity(t *testing.T) {
	db := newTestDB(t)
	match := seedMatch(t, db, 2, 2)

	require.NoError(t, lobby.ReserveSeat(db, match.ID))
	require.NoError(t, lobby.ReserveSeat(db, match.ID))
	assert.ErrorIs(t, lobby.ReserveSeat(db, match.ID), lobby.ErrMatchFull)

	var got models.GameMatch
	require.NoError(t, db.First(&got, match.ID).Error)
	assert.Equal(t, 2, got.CurrentPlayers)
}

func TestReserveSeatConcurrentJoinsNeverOvercommit(t *testing.T) {
	db := newTestDB(t)
	// One connection: sqlite cannot take interleaved writers, so the
	// racing goroutines queue at the pool instead of hitting SQLITE_BUSY.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	match := seedMatch(t, db, 4, 2)

	const joiners = 16
	results := make(chan error, joiners)
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- lobby.ReserveSeat(db, match.ID)
		}()
	}
	wg.Wait()
	close(results)

	seated, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			seated++
		case errors.Is(err, lobby.ErrMatchFull):
			rejected++
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}
	assert.Equal(t, 4, seated)
	assert.Equal(t, joiners-4, rejected)

	var got models.GameMatch
	require.NoError(t, db.First(&got, match.ID).Error)
	assert.Equal(t, 4, got.CurrentPlayers)
}

func TestReserveSeatRejectsStartedMatch(t *testing.T) {
	db := newTestDB(t)
	match := seedMatch(t, db, 4, 2)
	require.NoError(t, db.Model(&models.GameMatch{}).
		Where("id = ?", match.ID).Update("status", "in_progress").Error)

	assert.ErrorIs(t, lobby.ReserveSeat(db, match.ID), lobby.ErrMatchFull)
}

func TestSetupInitialTanksSpacing(t *testing.T) {
	db := newTestDB(t)
	match := seedMatch(t, db, 4, 2)

	require.NoError(t, lobby.SetupInitialTanks(db, match.ID, 2))

	var tanks []models.LocalMultiplayerTank
	require.NoError(t, db.Where("match_id = ?", match.ID).
		Order("tank_slot_number").Find(&tanks).Error)
	require.Len(t, tanks, 2)
	assert.Equal(t, 100, tanks[0].SpawnX)
	assert.Equal(t, 100, tanks[0].SpawnY)
	assert.Equal(t, 1, tanks[0].TeamID)
	assert.Equal(t, 300, tanks[1].SpawnX)
	assert.Equal(t, 2, tanks[1].TeamID)
}

func TestRecomputeTankAssignmentsClearsEmptiedSeats(t *testing.T) {
	db := newTestDB(t)
	match := seedMatch(t, db, 4, 2)
	require.NoError(t, lobby.SetupInitialTanks(db, match.ID, 2))

	driver := seatPlayer(t, db, match.ID, 1, 1, "driver")
	gunner := seatPlayer(t, db, match.ID, 2, 1, "gunner")
	require.NoError(t, lobby.RecomputeTankAssignments(db, match.ID))

	var tank1 models.LocalMultiplayerTank
	require.NoError(t, db.Where("match_id = ? AND tank_slot_number = ?", match.ID, 1).
		First(&tank1).Error)
	require.NotNil(t, tank1.DriverPlayerID)
	assert.Equal(t, driver.ID, *tank1.DriverPlayerID)
	require.NotNil(t, tank1.GunnerPlayerID)
	assert.Equal(t, gunner.ID, *tank1.GunnerPlayerID)

	// Move the gunner to drive tank 2; the recompute must clear the
	// seat they left, not just set the new one.
	require.NoError(t, db.Model(&models.GameMatchPlayer{}).
		Where("id = ?", gunner.ID).
		Updates(map[string]interface{}{
			"tank_slot_number": 2,
			"player_role":      "driver",
		}).Error)
	require.NoError(t, lobby.RecomputeTankAssignments(db, match.ID))

	require.NoError(t, db.Where("match_id = ? AND tank_slot_number = ?", match.ID, 1).
		First(&tank1).Error)
	assert.Nil(t, tank1.GunnerPlayerID)

	var tank2 models.LocalMultiplayerTank
	require.NoError(t, db.Where("match_id = ? AND tank_slot_number = ?", match.ID, 2).
		First(&tank2).Error)
	require.NotNil(t, tank2.DriverPlayerID)
	assert.Equal(t, gunner.ID, *tank2.DriverPlayerID)
	assert.Nil(t, tank2.GunnerPlayerID)
}

func TestValidateAssignments(t *testing.T) {
	valid := []lobby.RoleAssignment{
		{PlayerID: 1, TankSlot: 1, Role: "driver"},
		{PlayerID: 2, TankSlot: 1, Role: "gunner"},
		{PlayerID: 3, TankSlot: 2, Role: "driver"},
	}
	assert.NoError(t, lobby.ValidateAssignments(2, valid))

	outOfRange := []lobby.RoleAssignment{{PlayerID: 1, TankSlot: 3, Role: "driver"}}
	assert.Error(t, lobby.ValidateAssignments(2, outOfRange))

	badRole := []lobby.RoleAssignment{{PlayerID: 1, TankSlot: 1, Role: "navigator"}}
	assert.Error(t, lobby.ValidateAssignments(2, badRole))

	collision := []lobby.RoleAssignment{
		{PlayerID: 1, TankSlot: 1, Role: "driver"},
		{PlayerID: 2, TankSlot: 1, Role: "driver"},
	}
	assert.Error(t, lobby.ValidateAssignments(2, collision))
}

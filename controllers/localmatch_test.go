package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	models "Corazzato/models/postgres"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLocalMatch(t *testing.T, router *gin.Engine, token string, maxPlayers, playersPerTank int) uint {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/local-multiplayer/create-local-match", token, gin.H{
		"map_id":           1,
		"max_players":      maxPlayers,
		"players_per_tank": playersPerTank,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := decodeBody(t, w)
	matchID, _ := body["match_id"].(float64)
	require.NotZero(t, matchID)
	return uint(matchID)
}

func joinLocal(t *testing.T, router *gin.Engine, token string, matchID uint) map[string]interface{} {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/local-multiplayer/join-local-match", token, gin.H{
		"match_id": matchID,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	return decodeBody(t, w)
}

func TestCreateLocalMatchDerivesTankRoster(t *testing.T) {
	router, db := newTestEnv(t)
	token, userID := registerUser(t, router, "commander")

	w := doJSON(router, http.MethodPost, "/local-multiplayer/create-local-match", token, gin.H{
		"max_players":      4,
		"players_per_tank": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["max_tanks"])
	assert.Equal(t, float64(4), body["max_players"])
	matchID := uint(body["match_id"].(float64))

	// Two tank rows pre-created, spaced along x.
	var tanks []models.LocalMultiplayerTank
	require.NoError(t, db.Where("match_id = ?", matchID).
		Order("tank_slot_number").Find(&tanks).Error)
	require.Len(t, tanks, 2)
	assert.Equal(t, 100, tanks[0].SpawnX)
	assert.Equal(t, 300, tanks[1].SpawnX)
	assert.Equal(t, 1, tanks[0].TeamID)
	assert.Equal(t, 2, tanks[1].TeamID)

	// The creator drives tank 1 with scheme 1.
	var creator models.GameMatchPlayer
	require.NoError(t, db.Where("match_id = ? AND user_id = ?", matchID, userID).
		First(&creator).Error)
	assert.Equal(t, 1, creator.TankSlotNumber)
	assert.Equal(t, "driver", creator.PlayerRole)
	assert.Equal(t, 1, creator.ControlScheme)
	require.NotNil(t, tanks[0].DriverPlayerID)
	assert.Equal(t, creator.ID, *tanks[0].DriverPlayerID)
}

func TestCreateLocalMatchCapsSeatsByTankRoster(t *testing.T) {
	router, _ := newTestEnv(t)
	token, _ := registerUser(t, router, "solo")

	// One player per tank and at most two tanks leaves two seats.
	w := doJSON(router, http.MethodPost, "/local-multiplayer/create-local-match", token, gin.H{
		"max_players":      4,
		"players_per_tank": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["max_tanks"])
	assert.Equal(t, float64(2), body["max_players"])
}

func TestJoinLocalMatchFillsSeatsInOrder(t *testing.T) {
	router, _ := newTestEnv(t)
	host, _ := registerUser(t, router, "driver1")
	matchID := createLocalMatch(t, router, host, 4, 2)

	// Seats fill driver-first, tank by tank; the control scheme follows
	// the seat: (slot-1)*2+1 for drivers, +2 for gunners.
	g1, _ := registerUser(t, router, "gunner1")
	body := joinLocal(t, router, g1, matchID)
	assert.Equal(t, float64(1), body["tank_slot"])
	assert.Equal(t, "gunner", body["role"])
	assert.Equal(t, float64(2), body["control_scheme"])
	assert.Equal(t, float64(2), body["current_players"])

	d2, _ := registerUser(t, router, "driver2")
	body = joinLocal(t, router, d2, matchID)
	assert.Equal(t, float64(2), body["tank_slot"])
	assert.Equal(t, "driver", body["role"])
	assert.Equal(t, float64(3), body["control_scheme"])

	g2, _ := registerUser(t, router, "gunner2")
	body = joinLocal(t, router, g2, matchID)
	assert.Equal(t, float64(2), body["tank_slot"])
	assert.Equal(t, "gunner", body["role"])
	assert.Equal(t, float64(4), body["control_scheme"])
	assert.Equal(t, float64(4), body["current_players"])

	// Fifth player bounces off the full match.
	late, _ := registerUser(t, router, "latecomer")
	w := doJSON(router, http.MethodPost, "/local-multiplayer/join-local-match", late, gin.H{
		"match_id": matchID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Rejoining is rejected too.
	w = doJSON(router, http.MethodPost, "/local-multiplayer/join-local-match", g1, gin.H{
		"match_id": matchID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMatchStatusReportsCrews(t *testing.T) {
	router, _ := newTestEnv(t)
	host, _ := registerUser(t, router, "statushost")
	matchID := createLocalMatch(t, router, host, 4, 2)
	mate, _ := registerUser(t, router, "statusmate")
	joinLocal(t, router, mate, matchID)

	w := doJSON(router, http.MethodGet,
		fmt.Sprintf("/local-multiplayer/match-status?match_id=%d", matchID), "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := decodeBody(t, w)

	match := body["match"].(map[string]interface{})
	assert.Equal(t, "statushost", match["creator_name"])
	assert.Equal(t, "waiting", match["status"])

	players := body["players"].([]interface{})
	require.Len(t, players, 2)

	tanks := body["tanks"].([]interface{})
	require.Len(t, tanks, 2)
	first := tanks[0].(map[string]interface{})
	assert.Equal(t, "statushost", first["driver_name"])
	assert.Equal(t, "statusmate", first["gunner_name"])
	second := tanks[1].(map[string]interface{})
	assert.Nil(t, second["driver_name"])

	schemes := body["control_schemes"].(map[string]interface{})
	assert.Len(t, schemes, 4)

	w = doJSON(router, http.MethodGet, "/local-multiplayer/match-status?match_id=9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignRolesCreatorOnlyAndCollisionChecked(t *testing.T) {
	router, db := newTestEnv(t)
	host, hostID := registerUser(t, router, "assigner")
	matchID := createLocalMatch(t, router, host, 4, 2)
	mate, mateID := registerUser(t, router, "reassigned")
	joinLocal(t, router, mate, matchID)

	swap := gin.H{
		"match_id": matchID,
		"assignments": []gin.H{
			{"player_id": hostID, "tank_slot": 1, "role": "gunner"},
			{"player_id": mateID, "tank_slot": 1, "role": "driver"},
		},
	}
	w := doJSON(router, http.MethodPost, "/local-multiplayer/assign-roles", mate, swap)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Two players on the same seat is rejected as a whole.
	w = doJSON(router, http.MethodPost, "/local-multiplayer/assign-roles", host, gin.H{
		"match_id": matchID,
		"assignments": []gin.H{
			{"player_id": hostID, "tank_slot": 1, "role": "driver"},
			{"player_id": mateID, "tank_slot": 1, "role": "driver"},
		},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// An assignment for someone who never joined fails the whole batch.
	w = doJSON(router, http.MethodPost, "/local-multiplayer/assign-roles", host, gin.H{
		"match_id": matchID,
		"assignments": []gin.H{
			{"player_id": hostID, "tank_slot": 1, "role": "gunner"},
			{"player_id": 99999, "tank_slot": 1, "role": "driver"},
		},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	var untouched models.GameMatchPlayer
	require.NoError(t, db.Where("match_id = ? AND user_id = ?", matchID, hostID).
		First(&untouched).Error)
	assert.Equal(t, "driver", untouched.PlayerRole)

	w = doJSON(router, http.MethodPost, "/local-multiplayer/assign-roles", host, swap)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var hostSeat models.GameMatchPlayer
	require.NoError(t, db.Where("match_id = ? AND user_id = ?", matchID, hostID).
		First(&hostSeat).Error)
	assert.Equal(t, "gunner", hostSeat.PlayerRole)
	assert.Equal(t, 2, hostSeat.ControlScheme)

	// Tank back-references follow the swap.
	var tank models.LocalMultiplayerTank
	require.NoError(t, db.Where("match_id = ? AND tank_slot_number = ?", matchID, 1).
		First(&tank).Error)
	var mateSeat models.GameMatchPlayer
	require.NoError(t, db.Where("match_id = ? AND user_id = ?", matchID, mateID).
		First(&mateSeat).Error)
	require.NotNil(t, tank.DriverPlayerID)
	assert.Equal(t, mateSeat.ID, *tank.DriverPlayerID)
	require.NotNil(t, tank.GunnerPlayerID)
	assert.Equal(t, hostSeat.ID, *tank.GunnerPlayerID)
}

func TestSetupTanksUpdatesSpawns(t *testing.T) {
	router, db := newTestEnv(t)
	host, _ := registerUser(t, router, "placer")
	matchID := createLocalMatch(t, router, host, 4, 2)

	w := doJSON(router, http.MethodPost, "/local-multiplayer/setup-tanks", host, gin.H{
		"match_id": matchID,
		"tank_configs": []gin.H{
			{"tank_slot": 1, "tank_model_id": 2, "spawn_x": 50, "spawn_y": 75, "team_id": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var tank models.LocalMultiplayerTank
	require.NoError(t, db.Where("match_id = ? AND tank_slot_number = ?", matchID, 1).
		First(&tank).Error)
	assert.Equal(t, uint(2), tank.TankModelID)
	assert.Equal(t, 50, tank.SpawnX)
	assert.Equal(t, 75, tank.SpawnY)
	assert.Equal(t, 2, tank.TeamID)
}

func TestStartLocalGameLifecycle(t *testing.T) {
	router, db := newTestEnv(t)
	host, _ := registerUser(t, router, "starter")
	matchID := createLocalMatch(t, router, host, 4, 2)

	// Not enough players yet.
	w := doJSON(router, http.MethodPost, "/local-multiplayer/start-local-game", host, gin.H{
		"match_id": matchID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mate, _ := registerUser(t, router, "costarter")
	joinLocal(t, router, mate, matchID)

	// Only the creator may start.
	w = doJSON(router, http.MethodPost, "/local-multiplayer/start-local-game", mate, gin.H{
		"match_id": matchID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPost, "/local-multiplayer/start-local-game", host, gin.H{
		"match_id": matchID,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	body := decodeBody(t, w)
	assert.Contains(t, body["game_url"], fmt.Sprintf("match=%d", matchID))

	var match models.GameMatch
	require.NoError(t, db.First(&match, matchID).Error)
	assert.Equal(t, "in_progress", match.Status)
	assert.NotNil(t, match.StartedAt)

	// Starting twice is a conflict, and a running match takes no joins.
	w = doJSON(router, http.MethodPost, "/local-multiplayer/start-local-game", host, gin.H{
		"match_id": matchID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	third, _ := registerUser(t, router, "toolate")
	w = doJSON(router, http.MethodPost, "/local-multiplayer/join-local-match", third, gin.H{
		"match_id": matchID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestControlSchemesTable(t *testing.T) {
	router, _ := newTestEnv(t)

	w := doJSON(router, http.MethodGet, "/local-multiplayer/control-schemes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	schemes := body["schemes"].(map[string]interface{})
	require.Len(t, schemes, 4)
	first := schemes["1"].(map[string]interface{})
	assert.Equal(t, "WASD + Space", first["name"])
	assert.Equal(t, "Space", first["fire"])
}

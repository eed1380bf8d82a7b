package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	game_constants "Corazzato/constants/game"
	"Corazzato/middleware"
	models "Corazzato/models/postgres"
	"Corazzato/services/lobby"
	"Corazzato/services/redis"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Lobby screens poll match-status aggressively; a short snapshot TTL
// keeps them off Postgres without serving stale seats for long.
const matchSnapshotTTL = 5 * time.Second

type createLocalMatchRequest struct {
	MapID          uint   `json:"map_id"`
	MaxPlayers     int    `json:"max_players"`
	GameMode       string `json:"game_mode"`
	PlayersPerTank int    `json:"players_per_tank"`
}

// @Summary Create a local co-op match
// @Description Creates a shared-screen match, derives the tank count from the player cap, pre-creates the tanks and seats the creator as driver of tank 1
// @Tags local-multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,map_id=integer,max_players=integer,game_mode=string,players_per_tank=integer} true "Match parameters"
// @Success 200 {object} object{success=bool,match_id=integer,max_players=integer,max_tanks=integer,players_per_tank=integer,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /local-multiplayer/create-local-match [post]
func CreateLocalMatch(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		req := createLocalMatchRequest{
			MapID:          1,
			MaxPlayers:     game_constants.MaxMatchPlayers,
			GameMode:       "local_coop",
			PlayersPerTank: 2,
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		maxPlayers := clamp(req.MaxPlayers, 1, game_constants.MaxMatchPlayers)
		playersPerTank := clamp(req.PlayersPerTank, 1, game_constants.MaxPlayersPerTank)
		maxTanks := lobby.MaxTanksFor(maxPlayers, playersPerTank)
		// The tank roster bounds the real player capacity.
		if seats := maxTanks * playersPerTank; maxPlayers > seats {
			maxPlayers = seats
		}

		match := models.GameMatch{
			CreatedByUserID:    userID,
			MapID:              req.MapID,
			MaxPlayers:         maxPlayers,
			CurrentPlayers:     1,
			GameMode:           req.GameMode,
			Status:             game_constants.MatchStatusWaiting,
			IsLocalMultiplayer: true,
			MaxTanks:           maxTanks,
			PlayersPerTank:     playersPerTank,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&match).Error; err != nil {
				return err
			}
			creator := models.GameMatchPlayer{
				MatchID:        match.ID,
				UserID:         userID,
				TankSlotNumber: 1,
				PlayerRole:     game_constants.RoleDriver,
				ControlScheme:  lobby.ControlSchemeFor(1, game_constants.RoleDriver),
				Status:         game_constants.PlayerStatusReady,
				JoinedAt:       time.Now(),
			}
			if err := tx.Create(&creator).Error; err != nil {
				return err
			}
			if err := lobby.SetupInitialTanks(tx, match.ID, maxTanks); err != nil {
				return err
			}
			return lobby.RecomputeTankAssignments(tx, match.ID)
		})
		if err != nil {
			log.WithError(err).Error("failed to create local match")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"match_id":         match.ID,
			"max_players":      maxPlayers,
			"max_tanks":        maxTanks,
			"players_per_tank": playersPerTank,
			"message":          "Local match created",
		})
	}
}

type joinLocalMatchRequest struct {
	MatchID uint `json:"match_id"`
}

// @Summary Join a local co-op match
// @Description Seats the user in the first tank with room: driver if the seat is free, gunner otherwise. The control scheme follows the seat.
// @Tags local-multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,match_id=integer} true "Match to join"
// @Success 200 {object} object{success=bool,tank_slot=integer,role=string,control_scheme=integer,current_players=integer,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /local-multiplayer/join-local-match [post]
func JoinLocalMatch(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req joinLocalMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MatchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		var seat *lobby.SlotAssignment
		var current int
		err := db.Transaction(func(tx *gorm.DB) error {
			var match models.GameMatch
			err := tx.Where("id = ? AND is_local_multiplayer = ? AND status = ?",
				req.MatchID, true, game_constants.MatchStatusWaiting).
				First(&match).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return lobby.ErrMatchNotJoinable
			}
			if err != nil {
				return err
			}

			existing, err := isPlayerOfMatch(tx, req.MatchID, userID)
			if err != nil {
				return err
			}
			if existing {
				return lobby.ErrAlreadyJoined
			}

			if err := lobby.ReserveSeat(tx, req.MatchID); err != nil {
				return err
			}

			seat, err = lobby.FindNextAvailableSlot(tx, req.MatchID, match.MaxTanks, match.PlayersPerTank)
			if err != nil {
				return err
			}

			player := models.GameMatchPlayer{
				MatchID:        req.MatchID,
				UserID:         userID,
				TankSlotNumber: seat.TankSlot,
				PlayerRole:     seat.Role,
				ControlScheme:  seat.ControlScheme,
				Status:         game_constants.PlayerStatusWaiting,
				JoinedAt:       time.Now(),
			}
			if err := tx.Create(&player).Error; err != nil {
				return err
			}

			current = match.CurrentPlayers + 1
			return lobby.RecomputeTankAssignments(tx, req.MatchID)
		})
		if err != nil {
			switch {
			case errors.Is(err, lobby.ErrMatchNotJoinable):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, lobby.ErrAlreadyJoined):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, lobby.ErrMatchFull), errors.Is(err, lobby.ErrNoSlotAvailable):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				log.WithError(err).Error("failed to join local match")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join match"})
			}
			return
		}

		invalidateSnapshot(rc, req.MatchID)
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"tank_slot":       seat.TankSlot,
			"role":            seat.Role,
			"control_scheme":  seat.ControlScheme,
			"current_players": current,
			"message":         fmt.Sprintf("Joined tank %d as %s", seat.TankSlot, seat.Role),
		})
	}
}

type assignRolesRequest struct {
	MatchID     uint                   `json:"match_id"`
	Assignments []lobby.RoleAssignment `json:"assignments"`
}

// @Summary Reassign player seats
// @Description Creator-only. Applies a batch of (player, tank slot, role) changes; sets that would put two players on the same seat are rejected whole.
// @Tags local-multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,match_id=integer,assignments=[]object{player_id=integer,tank_slot=integer,role=string,control_scheme=integer}} true "Seat changes"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /local-multiplayer/assign-roles [post]
func AssignRoles(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req assignRolesRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MatchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		var match models.GameMatch
		if err := db.First(&match, req.MatchID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		if match.CreatedByUserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can assign roles"})
			return
		}
		if err := lobby.ValidateAssignments(match.MaxTanks, req.Assignments); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, a := range req.Assignments {
				scheme := a.ControlScheme
				if scheme == 0 {
					scheme = lobby.ControlSchemeFor(a.TankSlot, a.Role)
				}
				res := tx.Model(&models.GameMatchPlayer{}).
					Where("match_id = ? AND user_id = ?", req.MatchID, a.PlayerID).
					Updates(map[string]interface{}{
						"tank_slot_number": a.TankSlot,
						"player_role":      a.Role,
						"control_scheme":   scheme,
					})
				if res.Error != nil {
					return res.Error
				}
				// Zero rows means the target never joined; fail the
				// whole batch so a typo cannot half-apply a swap.
				if res.RowsAffected == 0 {
					return lobby.ErrPlayerNotSeated
				}
			}
			return lobby.RecomputeTankAssignments(tx, req.MatchID)
		})
		if err != nil {
			if errors.Is(err, lobby.ErrPlayerNotSeated) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			log.WithError(err).Error("role assignment failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign roles"})
			return
		}

		invalidateSnapshot(rc, req.MatchID)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Roles assigned"})
	}
}

// @Summary Get the full state of a local match
// @Description Match header, seated players, tank crews and the control scheme table. Served from the Redis snapshot when warm.
// @Tags local-multiplayer
// @Produce json
// @Param match_id query integer true "Match id"
// @Success 200 {object} object{success=bool,match=object{},players=[]object{},tanks=[]object{},control_schemes=object{}}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /local-multiplayer/match-status [get]
func GetMatchStatus(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchID, err := strconv.ParseUint(c.Query("match_id"), 10, 64)
		if err != nil || matchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		if rc != nil {
			if raw, err := rc.GetMatchSnapshot(uint(matchID)); err == nil {
				c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
				return
			}
		}

		var match struct {
			models.GameMatch
			CreatorName string `json:"creator_name"`
		}
		err = db.Model(&models.GameMatch{}).
			Select("game_matches.*, u.username AS creator_name").
			Joins("JOIN users u ON game_matches.created_by_user_id = u.id").
			Where("game_matches.id = ?", matchID).
			First(&match).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}

		var players []struct {
			models.GameMatchPlayer
			Username string `json:"username"`
		}
		err = db.Model(&models.GameMatchPlayer{}).
			Select("game_match_players.*, u.username").
			Joins("JOIN users u ON game_match_players.user_id = u.id").
			Where("game_match_players.match_id = ?", matchID).
			Order("game_match_players.tank_slot_number, game_match_players.player_role").
			Scan(&players).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var tanks []struct {
			models.LocalMultiplayerTank
			DriverName *string `json:"driver_name"`
			GunnerName *string `json:"gunner_name"`
		}
		err = db.Model(&models.LocalMultiplayerTank{}).
			Select(`local_multiplayer_tanks.*, d.username AS driver_name, g.username AS gunner_name`).
			Joins("LEFT JOIN game_match_players dp ON local_multiplayer_tanks.driver_player_id = dp.id").
			Joins("LEFT JOIN users d ON dp.user_id = d.id").
			Joins("LEFT JOIN game_match_players gp ON local_multiplayer_tanks.gunner_player_id = gp.id").
			Joins("LEFT JOIN users g ON gp.user_id = g.id").
			Where("local_multiplayer_tanks.match_id = ?", matchID).
			Order("local_multiplayer_tanks.tank_slot_number").
			Scan(&tanks).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		payload := gin.H{
			"success":         true,
			"match":           match,
			"players":         players,
			"tanks":           tanks,
			"control_schemes": game_constants.ControlSchemes,
		}
		if rc != nil {
			if err := rc.SaveMatchSnapshot(uint(matchID), payload, matchSnapshotTTL); err != nil {
				log.WithError(err).Warn("could not cache match snapshot")
			}
		}
		c.JSON(http.StatusOK, payload)
	}
}

type tankConfig struct {
	TankSlot    int  `json:"tank_slot"`
	TankModelID uint `json:"tank_model_id"`
	SpawnX      int  `json:"spawn_x"`
	SpawnY      int  `json:"spawn_y"`
	TeamID      int  `json:"team_id"`
}

type setupTanksRequest struct {
	MatchID     uint         `json:"match_id"`
	TankConfigs []tankConfig `json:"tank_configs"`
}

// @Summary Configure match tanks
// @Description Updates model, spawn point and team of the given tank slots
// @Tags local-multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,match_id=integer,tank_configs=[]object{tank_slot=integer,tank_model_id=integer,spawn_x=integer,spawn_y=integer,team_id=integer}} true "Tank configuration"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /local-multiplayer/setup-tanks [post]
func SetupTanks(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req setupTanksRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MatchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, cfg := range req.TankConfigs {
				teamID := cfg.TeamID
				if teamID == 0 {
					teamID = 1
				}
				err := tx.Model(&models.LocalMultiplayerTank{}).
					Where("match_id = ? AND tank_slot_number = ?", req.MatchID, cfg.TankSlot).
					Updates(map[string]interface{}{
						"tank_model_id": cfg.TankModelID,
						"spawn_x":       cfg.SpawnX,
						"spawn_y":       cfg.SpawnY,
						"team_id":       teamID,
					}).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.WithError(err).Error("tank setup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to configure tanks"})
			return
		}

		invalidateSnapshot(rc, req.MatchID)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tank configuration updated"})
	}
}

// @Summary List the control scheme table
// @Tags local-multiplayer
// @Produce json
// @Success 200 {object} object{success=bool,schemes=object{}}
// @Router /local-multiplayer/control-schemes [get]
func GetControlSchemes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "schemes": game_constants.ControlSchemes})
	}
}

type startLocalGameRequest struct {
	MatchID uint `json:"match_id"`
}

// @Summary Start a local match
// @Description Creator-only. Needs at least two seated players; flips a waiting match to in_progress and returns the game URL.
// @Tags local-multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,match_id=integer} true "Match to start"
// @Success 200 {object} object{success=bool,game_url=string,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /local-multiplayer/start-local-game [post]
func StartLocalGame(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req startLocalGameRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MatchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		var match models.GameMatch
		if err := db.First(&match, req.MatchID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		if match.CreatedByUserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can start the match"})
			return
		}
		if match.CurrentPlayers < game_constants.MinPlayersToStart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least 2 players are needed to start"})
			return
		}

		// Starting is one-shot: only a waiting match flips to in_progress.
		res := db.Model(&models.GameMatch{}).
			Where("id = ? AND status = ?", req.MatchID, game_constants.MatchStatusWaiting).
			Updates(map[string]interface{}{
				"status":     game_constants.MatchStatusInProgress,
				"started_at": time.Now(),
			})
		if res.Error != nil {
			log.WithError(res.Error).Error("failed to start match")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start match"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Match already started"})
			return
		}

		invalidateSnapshot(rc, req.MatchID)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"game_url": fmt.Sprintf("/game/local-multiplayer.html?match=%d&mode=%s", req.MatchID, match.GameMode),
			"message":  "Match started",
		})
	}
}

func isPlayerOfMatch(tx *gorm.DB, matchID, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.GameMatchPlayer{}).
		Where("match_id = ? AND user_id = ?", matchID, userID).
		Count(&count).Error
	return count > 0, err
}

func invalidateSnapshot(rc *redis.RedisClient, matchID uint) {
	if rc == nil {
		return
	}
	if err := rc.InvalidateMatchSnapshot(matchID); err != nil {
		log.WithError(err).Warn("could not invalidate match snapshot")
	}
}

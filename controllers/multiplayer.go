package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	game_constants "Corazzato/constants/game"
	"Corazzato/middleware"
	models "Corazzato/models/postgres"
	"Corazzato/services/lobby"
	"Corazzato/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type createMatchRequest struct {
	MapID      uint `json:"map_id"`
	MaxPlayers int  `json:"max_players"`
}

// @Summary Create an online match
// @Description Opens a waiting match on a map and seats the creator as the first, ready player
// @Tags multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,map_id=integer,max_players=integer} true "Map and player cap (clamped to 2..4)"
// @Success 200 {object} object{success=bool,match_id=integer,join_url=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /multiplayer/create [post]
func CreateMatch(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		req := createMatchRequest{MapID: 1, MaxPlayers: game_constants.MinMatchPlayers}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		maxPlayers := clamp(req.MaxPlayers, game_constants.MinMatchPlayers, game_constants.MaxMatchPlayers)

		match := models.GameMatch{
			CreatedByUserID: userID,
			MapID:           req.MapID,
			MaxPlayers:      maxPlayers,
			CurrentPlayers:  1,
			Status:          game_constants.MatchStatusWaiting,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&match).Error; err != nil {
				return err
			}
			return tx.Create(&models.GameMatchPlayer{
				MatchID:  match.ID,
				UserID:   userID,
				Status:   game_constants.PlayerStatusReady,
				JoinedAt: time.Now(),
			}).Error
		})
		if err != nil {
			log.WithError(err).Error("failed to create match")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"match_id": match.ID,
			"join_url": "/multiplayer/join/" + itoa(match.ID),
		})
	}
}

// @Summary List joinable matches
// @Description Waiting matches, newest first, with creator name and map name. Returns an empty list instead of an error.
// @Tags multiplayer
// @Produce json
// @Success 200 {array} object{}
// @Router /multiplayer/list [get]
func ListMatches(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []struct {
			models.GameMatch
			CreatedByName  string `json:"created_by_name"`
			CurrentPlayers int    `json:"current_players"`
			MapName        string `json:"map_name"`
		}
		err := db.Model(&models.GameMatch{}).
			Select(`game_matches.*,
				u.username AS created_by_name,
				(SELECT COUNT(*) FROM game_match_players gmp WHERE gmp.match_id = game_matches.id) AS current_players,
				(SELECT name FROM game_maps WHERE game_maps.id = game_matches.map_id) AS map_name`).
			Joins("JOIN users u ON game_matches.created_by_user_id = u.id").
			Where("game_matches.status = ?", game_constants.MatchStatusWaiting).
			Order("game_matches.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			// Clients expect a parseable list here no matter what.
			log.WithError(err).Error("match listing failed")
			c.JSON(http.StatusOK, []gin.H{})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

type joinMatchRequest struct {
	MatchID uint `json:"match_id"`
	TankID  uint `json:"tank_id"`
}

// @Summary Join an online match
// @Description Seats the user in a waiting match. Capacity is enforced atomically, so concurrent joins never overfill.
// @Tags multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,match_id=integer,tank_id=integer} true "Match to join"
// @Success 200 {object} object{success=bool,current_players=integer,max_players=integer,can_start=bool}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /multiplayer/join [post]
func JoinMatch(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req joinMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MatchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		var match models.GameMatch
		err := db.Transaction(func(tx *gorm.DB) error {
			err := tx.Where("id = ? AND status = ?", req.MatchID, game_constants.MatchStatusWaiting).
				First(&match).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return lobby.ErrMatchNotJoinable
			}
			if err != nil {
				return err
			}

			seated, err := utils.IsPlayerInMatch(tx, req.MatchID, userID)
			if err != nil {
				return err
			}
			if seated != nil {
				return lobby.ErrAlreadyJoined
			}

			if err := lobby.ReserveSeat(tx, req.MatchID); err != nil {
				return err
			}
			return tx.Create(&models.GameMatchPlayer{
				MatchID:  req.MatchID,
				UserID:   userID,
				Status:   game_constants.PlayerStatusWaiting,
				JoinedAt: time.Now(),
			}).Error
		})
		if err != nil {
			switch {
			case errors.Is(err, lobby.ErrMatchNotJoinable):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, lobby.ErrAlreadyJoined), errors.Is(err, lobby.ErrMatchFull):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				log.WithError(err).Error("failed to join match")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join match"})
			}
			return
		}

		var current int64
		if err := db.Model(&models.GameMatchPlayer{}).
			Where("match_id = ?", req.MatchID).Count(&current).Error; err != nil {
			current = 0
		}
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"current_players": current,
			"max_players":     match.MaxPlayers,
			"can_start":       current >= int64(game_constants.MinPlayersToStart),
		})
	}
}

type inviteRequest struct {
	FriendUsername string `json:"friend_username"`
	MatchID        uint   `json:"match_id"`
}

// @Summary Invite a player to a match
// @Tags multiplayer
// @Accept json
// @Produce json
// @Param request body object{token=string,friend_username=string,match_id=integer} true "Invite"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /multiplayer/invite [post]
func InvitePlayer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req inviteRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.FriendUsername == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "friend_username is required"})
			return
		}

		friend, err := utils.CheckUserExists(db, req.FriendUsername)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if _, err := utils.CheckMatchExists(db, req.MatchID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}

		invite := models.MatchInvite{
			FromUserID: userID,
			ToUserID:   friend.ID,
			MatchID:    req.MatchID,
			Status:     "pending",
		}
		if err := db.Create(&invite).Error; err != nil {
			log.WithError(err).Error("failed to create invite")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send invite"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invite sent"})
	}
}

// @Summary List pending invites
// @Tags multiplayer
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {array} object{}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /multiplayer/invites [get]
func ListInvites(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var rows []struct {
			models.MatchInvite
			FromUsername string `json:"from_username"`
			MapID        uint   `json:"map_id"`
			MapName      string `json:"map_name"`
		}
		err := db.Model(&models.MatchInvite{}).
			Select(`match_invites.*, u.username AS from_username, gm.map_id,
				(SELECT name FROM game_maps WHERE game_maps.id = gm.map_id) AS map_name`).
			Joins("JOIN users u ON match_invites.from_user_id = u.id").
			Joins("JOIN game_matches gm ON match_invites.match_id = gm.id").
			Where("match_invites.to_user_id = ? AND match_invites.status = ?", userID, "pending").
			Order("match_invites.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

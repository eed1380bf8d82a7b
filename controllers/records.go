package controllers

import (
	"net/http"

	"Corazzato/middleware"
	models "Corazzato/models/postgres"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// @Summary Top 10 leaderboard
// @Description Players ranked by total points
// @Tags records
// @Produce json
// @Success 200 {array} object{username=string,total_points=integer,total_kills=integer,total_deaths=integer,matches_played=integer}
// @Failure 500 {object} object{error=string}
// @Router /records/leaderboard [get]
func GetLeaderboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []struct {
			Username      string `json:"username"`
			TotalPoints   int    `json:"total_points"`
			TotalKills    int    `json:"total_kills"`
			TotalDeaths   int    `json:"total_deaths"`
			MatchesPlayed int    `json:"matches_played"`
		}
		err := db.Model(&models.UserStats{}).
			Select(`u.username, user_stats.total_points, user_stats.total_kills,
				user_stats.total_deaths, user_stats.matches_played`).
			Joins("JOIN users u ON user_stats.user_id = u.id").
			Order("user_stats.total_points DESC").
			Limit(10).
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// @Summary Get the caller's stats and recent games
// @Description Aggregate stats plus the last five game records. An invalid token yields zeroed Guest stats instead of an error.
// @Tags records
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {object} object{username=string,stats=object{},recent_games=[]object{}}
// @Router /records/user [get]
func GetUserRecords(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			// Guests get a parseable default payload.
			c.JSON(http.StatusOK, gin.H{
				"username": "Guest",
				"stats": gin.H{
					"total_points":   0,
					"total_kills":    0,
					"total_deaths":   0,
					"matches_played": 0,
					"total_playtime": 0,
					"credits":        0,
				},
				"recent_records": []gin.H{},
			})
			return
		}

		username, _ := c.Get(middleware.ContextUsernameKey)

		var stats models.UserStats
		if err := db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			stats = models.UserStats{UserID: userID}
		}

		var recent []struct {
			models.GameRecord
			MapName *string `json:"map_name"`
		}
		err := db.Model(&models.GameRecord{}).
			Select("game_records.*, gm.name AS map_name").
			Joins("LEFT JOIN game_maps gm ON game_records.map_id = gm.id").
			Where("game_records.user_id = ?", userID).
			Order("game_records.created_at DESC").
			Limit(5).
			Scan(&recent).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":     username,
			"stats":        stats,
			"recent_games": recent,
		})
	}
}

type saveRecordRequest struct {
	Score    int  `json:"score"`
	Kills    int  `json:"kills"`
	Deaths   int  `json:"deaths"`
	Duration int  `json:"duration"`
	MapID    uint `json:"map_id"`
	TankID   uint `json:"tank_id"`
}

// @Summary Save a finished game
// @Description Stores the game record and folds its score, kills, deaths and playtime into the user's aggregates
// @Tags records
// @Accept json
// @Produce json
// @Param request body object{token=string,score=integer,kills=integer,deaths=integer,duration=integer,map_id=integer,tank_id=integer} true "Game result"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /records/save [post]
func SaveRecord(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		req := saveRecordRequest{MapID: 1, TankID: 1}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			record := models.GameRecord{
				UserID:   userID,
				MapID:    req.MapID,
				TankID:   req.TankID,
				Score:    req.Score,
				Kills:    req.Kills,
				Deaths:   req.Deaths,
				Duration: req.Duration,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			return tx.Model(&models.UserStats{}).
				Where("user_id = ?", userID).
				Updates(map[string]interface{}{
					"total_points":   gorm.Expr("total_points + ?", req.Score),
					"total_kills":    gorm.Expr("total_kills + ?", req.Kills),
					"total_deaths":   gorm.Expr("total_deaths + ?", req.Deaths),
					"matches_played": gorm.Expr("matches_played + 1"),
					"total_playtime": gorm.Expr("total_playtime + ?", req.Duration),
				}).Error
		})
		if err != nil {
			log.WithError(err).Error("failed to save game record")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save record"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Record saved"})
	}
}

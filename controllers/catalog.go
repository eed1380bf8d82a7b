package controllers

import (
	"fmt"
	"net/http"

	"Corazzato/middleware"
	models "Corazzato/models/postgres"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary List playable maps
// @Description Returns the built-in map catalog in id order
// @Tags catalog
// @Produce json
// @Success 200 {array} object{id=integer,name=string,description=string,biome=string,seed=integer,cover_path=string}
// @Failure 500 {object} object{error=string}
// @Router /maps/slots [get]
func ListMapSlots(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var maps []models.GameMap
		if err := db.Order("id").Find(&maps).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch maps"})
			return
		}

		out := make([]gin.H, len(maps))
		for i, m := range maps {
			cover := m.CoverPath
			if cover == "" {
				cover = fmt.Sprintf("/assets/covers/%d.png", m.ID)
			}
			out[i] = gin.H{
				"id":          m.ID,
				"name":        m.Name,
				"description": m.Description,
				"biome":       m.Biome,
				"seed":        m.Seed,
				"cover_path":  cover,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary List all tank models
// @Description Returns every tank model with its cover art
// @Tags catalog
// @Produce json
// @Success 200 {array} object{id=integer,name=string,cover_path=string}
// @Failure 500 {object} object{error=string}
// @Router /tanks/slots [get]
func ListTankSlots(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tanks []models.GameTank
		if err := db.Order("id").Find(&tanks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tanks"})
			return
		}

		out := make([]gin.H, len(tanks))
		for i, t := range tanks {
			out[i] = gin.H{"id": t.ID, "name": t.Name, "cover_path": t.CoverPath}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary List the tanks a user can play
// @Description Returns the union of the user's purchased tanks and every free tank
// @Tags catalog
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {array} object{id=integer,name=string,cover_path=string,price=integer,description=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /tanks/owned [get]
func ListOwnedTanks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			return
		}

		var tanks []models.GameTank
		err := db.Model(&models.GameTank{}).
			Distinct("game_tanks.id", "game_tanks.name", "game_tanks.cover_path",
				"game_tanks.price", "game_tanks.description").
			Joins("LEFT JOIN user_owned_tanks ot ON game_tanks.id = ot.tank_id AND ot.user_id = ?", userID).
			Where("ot.tank_id IS NOT NULL OR game_tanks.price = 0").
			Order("game_tanks.price ASC, game_tanks.id ASC").
			Find(&tanks).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch owned tanks"})
			return
		}

		out := make([]gin.H, len(tanks))
		for i, t := range tanks {
			out[i] = gin.H{
				"id":          t.ID,
				"name":        t.Name,
				"cover_path":  t.CoverPath,
				"price":       t.Price,
				"description": t.Description,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

package controllers

import (
	"errors"
	"net/http"
	"time"

	game_constants "Corazzato/constants/game"
	"Corazzato/middleware"
	models "Corazzato/models/postgres"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errItemOwned          = errors.New("item already owned")
	errItemNotFound       = errors.New("item not found")
	errInsufficientFunds  = errors.New("insufficient credits")
	errUnsupportedItem    = errors.New("unsupported item type")
	errStatsMissing       = errors.New("user stats not found")
	errWeaponNotAvailable = errors.New("weapon not owned or not found")
)

// @Summary List tanks for sale
// @Tags shop
// @Produce json
// @Success 200 {object} object{success=bool,tanks=[]object{}}
// @Failure 500 {object} object{error=string}
// @Router /shop/tanks [get]
func ListShopTanks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tanks []models.GameTank
		if err := db.Order("id ASC").Find(&tanks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "tanks": tanks})
	}
}

// @Summary List weapons for sale
// @Tags shop
// @Produce json
// @Success 200 {object} object{success=bool,weapons=[]object{}}
// @Failure 500 {object} object{error=string}
// @Router /shop/weapons [get]
func ListShopWeapons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var weapons []models.TankWeapon
		if err := db.Order("price ASC").Find(&weapons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "weapons": weapons})
	}
}

// @Summary List weapons with an ownership flag
// @Description Every weapon in the catalog, with owned=1 for free weapons and weapons in the user's inventory
// @Tags shop
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {object} object{success=bool,weapons=[]object{}}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /shop/user-weapons [get]
func ListUserWeapons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var rows []struct {
			models.TankWeapon
			Owned int `json:"owned"`
		}
		// Inventory rows are tank 0 / slot 0; free weapons always count as owned.
		err := db.Model(&models.TankWeapon{}).
			Select(`tank_weapons.*,
				CASE WHEN tank_weapons.price = 0 THEN 1
				     WHEN utc.weapon_id IS NOT NULL THEN 1
				     ELSE 0 END AS owned`).
			Joins(`LEFT JOIN tank_customizations utc ON tank_weapons.id = utc.weapon_id
				AND utc.user_id = ? AND utc.tank_id = 0 AND utc.slot_position = 0`, userID).
			Order("tank_weapons.type, tank_weapons.price").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "weapons": rows})
	}
}

// @Summary Get the user's stats and credits
// @Description Lazily creates a default stats row on first access
// @Tags shop
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {object} object{success=bool,stats=object{}}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /shop/user-stats [get]
func GetUserStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		stats, err := loadOrCreateStats(db, userID)
		if err != nil {
			log.WithError(err).Error("could not load user stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "stats": gin.H{
			"user_id":        stats.UserID,
			"username":       user.Username,
			"credits":        stats.Credits,
			"total_points":   stats.TotalPoints,
			"total_kills":    stats.TotalKills,
			"total_deaths":   stats.TotalDeaths,
			"matches_played": stats.MatchesPlayed,
			"total_playtime": stats.TotalPlaytime,
		}})
	}
}

type purchaseRequest struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// @Summary Purchase a tank or weapon
// @Description Atomically debits credits and records ownership. Weapons land in the inventory (tank 0, slot 0).
// @Tags shop
// @Accept json
// @Produce json
// @Param request body object{token=string,type=string,id=integer} true "Item type ('tank' or 'weapon') and id"
// @Success 200 {object} object{success=bool,message=string,newCredits=integer,price=integer}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 402 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /shop/purchase [post]
func Purchase(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}

		var req purchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}

		var price int
		err := db.Transaction(func(tx *gorm.DB) error {
			var statsCount int64
			if err := tx.Model(&models.UserStats{}).Where("user_id = ?", userID).Count(&statsCount).Error; err != nil {
				return err
			}
			if statsCount == 0 {
				return errStatsMissing
			}

			switch req.Type {
			case "weapon":
				var owned int64
				err := tx.Model(&models.TankCustomization{}).
					Where("user_id = ? AND weapon_id = ? AND tank_id = 0 AND slot_position = 0", userID, req.ID).
					Count(&owned).Error
				if err != nil {
					return err
				}
				if owned > 0 {
					return errItemOwned
				}

				var weapon models.TankWeapon
				if err := tx.First(&weapon, req.ID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return errItemNotFound
					}
					return err
				}
				price = weapon.Price

				if err := debitCredits(tx, userID, price); err != nil {
					return err
				}
				return tx.Create(&models.TankCustomization{
					UserID:       userID,
					TankID:       0,
					WeaponID:     req.ID,
					SlotPosition: 0,
				}).Error

			case "tank":
				var owned int64
				err := tx.Model(&models.UserOwnedTank{}).
					Where("user_id = ? AND tank_id = ?", userID, req.ID).
					Count(&owned).Error
				if err != nil {
					return err
				}
				if owned > 0 {
					return errItemOwned
				}

				var tank models.GameTank
				if err := tx.First(&tank, req.ID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return errItemNotFound
					}
					return err
				}
				price = tank.Price

				if err := debitCredits(tx, userID, price); err != nil {
					return err
				}
				return tx.Create(&models.UserOwnedTank{
					UserID:      userID,
					TankID:      req.ID,
					PurchasedAt: time.Now(),
				}).Error

			default:
				return errUnsupportedItem
			}
		})
		if err != nil {
			status, msg := purchaseError(err)
			c.JSON(status, gin.H{"success": false, "error": msg})
			return
		}

		var stats models.UserStats
		if err := db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Purchase completed",
			"newCredits": stats.Credits,
			"price":      price,
		})
	}
}

type customizeRequest struct {
	TankID       uint `json:"tank_id"`
	WeaponID     uint `json:"weapon_id"`
	SlotPosition int  `json:"slot_position"`
}

// @Summary Install a weapon on a tank slot
// @Description Upserts the weapon on (tank, slot). The weapon must be free or already in the user's inventory.
// @Tags shop
// @Accept json
// @Produce json
// @Param request body object{token=string,tank_id=integer,weapon_id=integer,slot_position=integer} true "Customization"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /shop/customize [post]
func Customize(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		req := customizeRequest{SlotPosition: 1}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.SlotPosition < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot_position must be positive"})
			return
		}

		var weapon models.TankWeapon
		err := db.Model(&models.TankWeapon{}).
			Joins(`LEFT JOIN tank_customizations utc ON tank_weapons.id = utc.weapon_id
				AND utc.user_id = ? AND utc.tank_id = 0 AND utc.slot_position = 0`, userID).
			Where("tank_weapons.id = ? AND (tank_weapons.price = 0 OR utc.weapon_id IS NOT NULL)", req.WeaponID).
			First(&weapon).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": errWeaponNotAvailable.Error()})
			return
		}

		// Replace whatever sits on the slot. Delete-then-insert instead of
		// an upsert: inventory rows share (user, tank 0, slot 0), so the
		// table cannot carry a unique constraint on the slot triple.
		err = db.Transaction(func(tx *gorm.DB) error {
			err := tx.Where("user_id = ? AND tank_id = ? AND slot_position = ?",
				userID, req.TankID, req.SlotPosition).
				Delete(&models.TankCustomization{}).Error
			if err != nil {
				return err
			}
			return tx.Create(&models.TankCustomization{
				UserID:       userID,
				TankID:       req.TankID,
				WeaponID:     req.WeaponID,
				SlotPosition: req.SlotPosition,
			}).Error
		})
		if err != nil {
			log.WithError(err).Error("customization upsert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tank customized successfully"})
	}
}

// @Summary Get the weapon loadout of one tank
// @Tags shop
// @Produce json
// @Param token query string true "Session token"
// @Param tank_id query integer false "Tank id, defaults to 1"
// @Success 200 {object} object{success=bool,loadout=[]object{}}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /shop/loadout [get]
func GetTankLoadout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		tankID := c.DefaultQuery("tank_id", "1")

		var rows []struct {
			models.TankWeapon
			SlotPosition int `json:"slot_position"`
		}
		err := db.Model(&models.TankCustomization{}).
			Select("tank_weapons.*, tank_customizations.slot_position").
			Joins("JOIN tank_weapons ON tank_customizations.weapon_id = tank_weapons.id").
			Where("tank_customizations.user_id = ? AND tank_customizations.tank_id = ? AND tank_customizations.slot_position > 0",
				userID, tankID).
			Order("tank_customizations.slot_position").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "loadout": rows})
	}
}

// @Summary Get all customizations grouped by tank
// @Tags shop
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {object} object{success=bool,customizations=object{}}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /shop/customizations [get]
func ListCustomizations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var rows []struct {
			TankID       uint   `json:"tank_id"`
			WeaponID     uint   `json:"weapon_id"`
			SlotPosition int    `json:"slot_position"`
			WeaponName   string `json:"weapon_name"`
			Type         string `json:"type"`
		}
		err := db.Model(&models.TankCustomization{}).
			Select(`tank_customizations.tank_id, tank_customizations.weapon_id,
				tank_customizations.slot_position, tank_weapons.name AS weapon_name, tank_weapons.type`).
			Joins("JOIN tank_weapons ON tank_customizations.weapon_id = tank_weapons.id").
			Where("tank_customizations.user_id = ?", userID).
			Order("tank_customizations.tank_id, tank_customizations.slot_position").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		organized := make(map[uint]gin.H)
		for _, row := range rows {
			entry, exists := organized[row.TankID]
			if !exists {
				entry = gin.H{"weapons": []gin.H{}}
				organized[row.TankID] = entry
			}
			entry["weapons"] = append(entry["weapons"].([]gin.H), gin.H{
				"weapon_id":     row.WeaponID,
				"slot_position": row.SlotPosition,
				"name":          row.WeaponName,
				"type":          row.Type,
			})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "customizations": organized})
	}
}

// debitCredits subtracts price only while the balance covers it. The
// WHERE guard makes concurrent purchases safe without row locks.
func debitCredits(tx *gorm.DB, userID uint, price int) error {
	res := tx.Model(&models.UserStats{}).
		Where("user_id = ? AND credits >= ?", userID, price).
		UpdateColumn("credits", gorm.Expr("credits - ?", price))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errInsufficientFunds
	}
	return nil
}

func loadOrCreateStats(db *gorm.DB, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := db.Where("user_id = ?", userID).First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserStats{
		UserID:  userID,
		Credits: game_constants.DefaultCredits,
	}).Error
	if err != nil {
		return nil, err
	}
	err = db.Where("user_id = ?", userID).First(&stats).Error
	return &stats, err
}

func purchaseError(err error) (int, string) {
	switch {
	case errors.Is(err, errItemOwned):
		return http.StatusConflict, err.Error()
	case errors.Is(err, errItemNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, errInsufficientFunds):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, errUnsupportedItem), errors.Is(err, errStatsMissing):
		return http.StatusBadRequest, err.Error()
	default:
		log.WithError(err).Error("purchase failed")
		return http.StatusInternalServerError, "Database error"
	}
}

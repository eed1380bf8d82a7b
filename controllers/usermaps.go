package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Corazzato/middleware"
	models "Corazzato/models/postgres"
	"Corazzato/services/mapstore"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saveMapRequest struct {
	MapID       uint              `json:"map_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	MapData     *mapstore.MapData `json:"map_data"`
	IsPublic    bool              `json:"is_public"`
}

// mapSummary is the listing row shared by list and favorites.
type mapSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Biome       string    `json:"biome"`
	TerrainType string    `json:"terrain_type"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
	AvgRating   float64   `json:"avg_rating"`
	RatingCount int       `json:"rating_count"`
	PlayCount   int       `json:"play_count"`
}

// @Summary Create a custom map
// @Description Validates the editor payload and stores it under the authenticated user
// @Tags usermaps
// @Accept json
// @Produce json
// @Param request body object{token=string,name=string,description=string,map_data=object{},is_public=boolean} true "Map"
// @Success 200 {object} object{success=bool,map_id=integer,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /usermaps/create [post]
func CreateUserMap(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req saveMapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.MapData == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and map_data required"})
			return
		}
		if err := mapstore.Validate(req.MapData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid map data format: " + err.Error()})
			return
		}

		raw, err := json.Marshal(req.MapData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid map data format"})
			return
		}

		userMap := models.UserCreatedMap{
			UserID:      userID,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Width:       req.MapData.Width,
			Height:      req.MapData.Height,
			Biome:       req.MapData.Biome,
			TerrainType: req.MapData.TerrainType,
			MapData:     datatypes.JSON(raw),
			IsPublic:    req.IsPublic,
		}
		if err := db.Create(&userMap).Error; err != nil {
			log.WithError(err).Error("failed to create user map")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create map"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"map_id":  userMap.ID,
			"message": "Map created successfully",
		})
	}
}

// @Summary Update a custom map
// @Description Overwrites a map the user owns; the payload is re-validated
// @Tags usermaps
// @Accept json
// @Produce json
// @Param request body object{token=string,map_id=integer,name=string,description=string,map_data=object{},is_public=boolean} true "Map"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /usermaps/update [put]
func UpdateUserMap(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req saveMapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.MapID == 0 || req.Name == "" || req.MapData == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Map ID, name and map_data required"})
			return
		}
		if err := mapstore.Validate(req.MapData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid map data format: " + err.Error()})
			return
		}

		raw, err := json.Marshal(req.MapData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid map data format"})
			return
		}

		res := db.Model(&models.UserCreatedMap{}).
			Where("id = ? AND user_id = ?", req.MapID, userID).
			Updates(map[string]interface{}{
				"name":         req.Name,
				"description":  strings.TrimSpace(req.Description),
				"width":        req.MapData.Width,
				"height":       req.MapData.Height,
				"biome":        req.MapData.Biome,
				"terrain_type": req.MapData.TerrainType,
				"map_data":     datatypes.JSON(raw),
				"is_public":    req.IsPublic,
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			log.WithError(res.Error).Error("failed to update user map")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update map"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found or access denied"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Map updated successfully"})
	}
}

// @Summary List custom maps
// @Description public=true lists the public catalog for anyone; otherwise the caller's own maps (auth required). Supports biome/terrain filters, whitelisted sorting and pagination.
// @Tags usermaps
// @Produce json
// @Param public query boolean false "List public maps instead of own maps"
// @Param biome query string false "Filter by biome"
// @Param terrain_type query string false "Filter by terrain type"
// @Param sort query string false "created_at, updated_at, name, avg_rating or play_count"
// @Param order query string false "ASC or DESC"
// @Param limit query integer false "Page size, capped at 100"
// @Param offset query integer false "Page offset"
// @Success 200 {array} object{}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /usermaps/list [get]
func ListUserMaps(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		publicOnly := c.Query("public") == "true"
		biome := c.Query("biome")
		terrainType := c.Query("terrain_type")

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit < 1 {
			limit = 50
		}
		if limit > 100 {
			limit = 100
		}
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if offset < 0 {
			offset = 0
		}

		sortBy := c.DefaultQuery("sort", "created_at")
		if !mapstore.ValidSortColumn(sortBy) {
			sortBy = "created_at"
		}
		// Table columns need qualifying: users and map_ratings carry a
		// created_at of their own. avg_rating/play_count are select aliases.
		switch sortBy {
		case "created_at", "updated_at", "name":
			sortBy = "user_created_maps." + sortBy
		}
		order := "DESC"
		if strings.EqualFold(c.Query("order"), "asc") {
			order = "ASC"
		}

		query := db.Model(&models.UserCreatedMap{}).
			Select(`user_created_maps.id, user_created_maps.name, user_created_maps.description,
				user_created_maps.width, user_created_maps.height, user_created_maps.biome,
				user_created_maps.terrain_type, user_created_maps.is_public,
				user_created_maps.created_at, user_created_maps.updated_at,
				u.username AS created_by,
				COALESCE(AVG(mr.rating), 0) AS avg_rating,
				COUNT(DISTINCT mr.id) AS rating_count,
				COALESCE(mps.play_count, 0) AS play_count`).
			Joins("JOIN users u ON user_created_maps.user_id = u.id").
			Joins("LEFT JOIN map_ratings mr ON user_created_maps.id = mr.map_id").
			Joins("LEFT JOIN map_play_stats mps ON user_created_maps.id = mps.map_id").
			Group("user_created_maps.id, u.username, mps.play_count")

		if publicOnly {
			query = query.Where("user_created_maps.is_public = ?", true)
		} else {
			userID, ok := middleware.CurrentUser(c)
			if !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			query = query.Where("user_created_maps.user_id = ?", userID)
		}
		if biome != "" {
			query = query.Where("user_created_maps.biome = ?", biome)
		}
		if terrainType != "" {
			query = query.Where("user_created_maps.terrain_type = ?", terrainType)
		}

		var maps []mapSummary
		err := query.Order(sortBy + " " + order).
			Limit(limit).Offset(offset).
			Scan(&maps).Error
		if err != nil {
			log.WithError(err).Error("map listing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, maps)
	}
}

// @Summary Load one custom map
// @Description Returns the full map including editor payload. Private maps are visible to their owner only. play=true bumps the play counter of public maps.
// @Tags usermaps
// @Produce json
// @Param id query integer true "Map id"
// @Param token query string false "Session token"
// @Param play query boolean false "Record a play"
// @Success 200 {object} object{}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /usermaps/load [get]
func LoadUserMap(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		mapID, err := strconv.ParseUint(c.Query("id"), 10, 64)
		if err != nil || mapID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Map ID required"})
			return
		}
		userID, _ := middleware.CurrentUser(c)

		var row struct {
			models.UserCreatedMap
			CreatedBy   string  `json:"created_by"`
			AvgRating   float64 `json:"avg_rating"`
			RatingCount int     `json:"rating_count"`
			PlayCount   int     `json:"play_count"`
			FavoriteID  *uint   `json:"-"`
		}
		err = db.Model(&models.UserCreatedMap{}).
			Select(`user_created_maps.*, u.username AS created_by,
				COALESCE(AVG(mr.rating), 0) AS avg_rating,
				COUNT(DISTINCT mr.id) AS rating_count,
				COALESCE(mps.play_count, 0) AS play_count,
				umf.id AS favorite_id`).
			Joins("JOIN users u ON user_created_maps.user_id = u.id").
			Joins("LEFT JOIN map_ratings mr ON user_created_maps.id = mr.map_id").
			Joins("LEFT JOIN map_play_stats mps ON user_created_maps.id = mps.map_id").
			Joins("LEFT JOIN user_map_favorites umf ON user_created_maps.id = umf.map_id AND umf.user_id = ?", userID).
			Where("user_created_maps.id = ? AND (user_created_maps.is_public = ? OR user_created_maps.user_id = ?)",
				mapID, true, userID).
			Group("user_created_maps.id, u.username, mps.play_count, umf.id").
			First(&row).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found or access denied"})
			return
		}

		playCount := row.PlayCount
		if c.Query("play") == "true" && row.IsPublic {
			if err := incrementPlayCount(db, uint(mapID)); err != nil {
				log.WithError(err).Warn("could not record play")
			} else {
				playCount++
			}
		}

		var mapData json.RawMessage
		if len(row.MapData) > 0 {
			mapData = json.RawMessage(row.MapData)
		}
		c.JSON(http.StatusOK, gin.H{
			"id":           row.ID,
			"user_id":      row.UserID,
			"name":         row.Name,
			"description":  row.Description,
			"width":        row.Width,
			"height":       row.Height,
			"biome":        row.Biome,
			"terrain_type": row.TerrainType,
			"map_data":     mapData,
			"is_public":    row.IsPublic,
			"created_at":   row.CreatedAt,
			"updated_at":   row.UpdatedAt,
			"created_by":   row.CreatedBy,
			"avg_rating":   row.AvgRating,
			"rating_count": row.RatingCount,
			"play_count":   playCount,
			"is_favorite":  row.FavoriteID != nil,
		})
	}
}

type rateMapRequest struct {
	MapID  uint `json:"map_id"`
	Rating int  `json:"rating"`
}

// @Summary Rate a public map
// @Description One rating per user per map; rating again overwrites the previous value
// @Tags usermaps
// @Accept json
// @Produce json
// @Param request body object{token=string,map_id=integer,rating=integer} true "Rating 1-5"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /usermaps/rate [post]
func RateUserMap(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req rateMapRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MapID == 0 || req.Rating < 1 || req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid map_id and rating (1-5) required"})
			return
		}

		if !publicMapExists(db, req.MapID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found or not public"})
			return
		}

		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "map_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating":     req.Rating,
				"updated_at": time.Now(),
			}),
		}).Create(&models.MapRating{
			MapID:  req.MapID,
			UserID: userID,
			Rating: req.Rating,
		}).Error
		if err != nil {
			log.WithError(err).Error("rating upsert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Rating saved successfully"})
	}
}

type favoriteMapRequest struct {
	MapID uint `json:"map_id"`
}

// @Summary Toggle a map favorite
// @Description Adds the public map to the user's favorites, or removes it if already there
// @Tags usermaps
// @Accept json
// @Produce json
// @Param request body object{token=string,map_id=integer} true "Map"
// @Success 200 {object} object{success=bool,is_favorite=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /usermaps/favorite [post]
func FavoriteUserMap(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req favoriteMapRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MapID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Map ID required"})
			return
		}

		if !publicMapExists(db, req.MapID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found or not public"})
			return
		}

		var isFavorite bool
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("map_id = ? AND user_id = ?", req.MapID, userID).
				Delete(&models.UserMapFavorite{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				isFavorite = false
				return nil
			}
			isFavorite = true
			// DoNothing absorbs a concurrent insert of the same pair;
			// the row exists either way, which is the state we report.
			return tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.UserMapFavorite{
					MapID:  req.MapID,
					UserID: userID,
				}).Error
		})
		if err != nil {
			log.WithError(err).Error("favorite toggle failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update favorite status"})
			return
		}

		message := "Removed from favorites"
		if isFavorite {
			message = "Added to favorites"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "is_favorite": isFavorite, "message": message})
	}
}

// @Summary List the user's favorite maps
// @Description Public maps the user favorited, most recently favorited first
// @Tags usermaps
// @Produce json
// @Param token query string true "Session token"
// @Success 200 {array} object{}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /usermaps/favorites [get]
func ListFavoriteMaps(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Flattened, not embedded: Scan only fills exported top-level fields.
		var rows []struct {
			ID          uint      `json:"id"`
			Name        string    `json:"name"`
			Description string    `json:"description"`
			Width       int       `json:"width"`
			Height      int       `json:"height"`
			Biome       string    `json:"biome"`
			TerrainType string    `json:"terrain_type"`
			CreatedAt   time.Time `json:"created_at"`
			CreatedBy   string    `json:"created_by"`
			AvgRating   float64   `json:"avg_rating"`
			RatingCount int       `json:"rating_count"`
			PlayCount   int       `json:"play_count"`
			FavoritedAt time.Time `json:"favorited_at"`
		}
		err := db.Model(&models.UserMapFavorite{}).
			Select(`ucm.id, ucm.name, ucm.description, ucm.width, ucm.height,
				ucm.biome, ucm.terrain_type, ucm.created_at,
				u.username AS created_by,
				COALESCE(AVG(mr.rating), 0) AS avg_rating,
				COUNT(DISTINCT mr.id) AS rating_count,
				COALESCE(mps.play_count, 0) AS play_count,
				user_map_favorites.created_at AS favorited_at`).
			Joins("JOIN user_created_maps ucm ON user_map_favorites.map_id = ucm.id").
			Joins("JOIN users u ON ucm.user_id = u.id").
			Joins("LEFT JOIN map_ratings mr ON ucm.id = mr.map_id").
			Joins("LEFT JOIN map_play_stats mps ON ucm.id = mps.map_id").
			Where("user_map_favorites.user_id = ? AND ucm.is_public = ?", userID, true).
			Group("ucm.id, u.username, mps.play_count, user_map_favorites.created_at").
			Order("user_map_favorites.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			log.WithError(err).Error("favorites listing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// @Summary Get play and rating statistics of a map
// @Description Play count, rating average, rating histogram and favorite count. Private maps show stats to their owner only.
// @Tags usermaps
// @Produce json
// @Param map_id query integer true "Map id"
// @Param token query string false "Session token"
// @Success 200 {object} object{}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /usermaps/stats [get]
func GetUserMapStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		mapID, err := strconv.ParseUint(c.Query("map_id"), 10, 64)
		if err != nil || mapID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Map ID required"})
			return
		}
		userID, _ := middleware.CurrentUser(c)

		var visible int64
		err = db.Model(&models.UserCreatedMap{}).
			Where("id = ? AND (is_public = ? OR user_id = ?)", mapID, true, userID).
			Count(&visible).Error
		if err != nil || visible == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found or access denied"})
			return
		}

		// Separate queries per source table keep the counts exact; a
		// single multi-join would inflate the histogram.
		var playStat models.MapPlayStat
		var lastPlayed *time.Time
		playCount := 0
		if err := db.Where("map_id = ?", mapID).First(&playStat).Error; err == nil {
			playCount = playStat.PlayCount
			lastPlayed = &playStat.LastPlayed
		}

		var rating struct {
			AvgRating    float64
			TotalRatings int
		}
		err = db.Model(&models.MapRating{}).
			Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS total_ratings").
			Where("map_id = ?", mapID).
			Scan(&rating).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		histogram := map[int]int64{}
		for star := 1; star <= 5; star++ {
			var count int64
			if err := db.Model(&models.MapRating{}).
				Where("map_id = ? AND rating = ?", mapID, star).
				Count(&count).Error; err == nil {
				histogram[star] = count
			}
		}

		var favorites int64
		if err := db.Model(&models.UserMapFavorite{}).
			Where("map_id = ?", mapID).Count(&favorites).Error; err != nil {
			favorites = 0
		}

		c.JSON(http.StatusOK, gin.H{
			"play_count":       playCount,
			"last_played":      lastPlayed,
			"avg_rating":       rating.AvgRating,
			"total_ratings":    rating.TotalRatings,
			"total_favorites":  favorites,
			"five_star_count":  histogram[5],
			"four_star_count":  histogram[4],
			"three_star_count": histogram[3],
			"two_star_count":   histogram[2],
			"one_star_count":   histogram[1],
		})
	}
}

type deleteMapRequest struct {
	MapID uint `json:"map_id"`
}

// @Summary Delete a custom map
// @Description Removes a map the user owns together with its ratings, play stats and favorites
// @Tags usermaps
// @Accept json
// @Produce json
// @Param request body object{token=string,map_id=integer} true "Map"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /usermaps/delete [delete]
func DeleteUserMap(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var req deleteMapRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.MapID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Map ID required"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			// Ownership gate first: related rows only go when the map does.
			res := tx.Where("id = ? AND user_id = ?", req.MapID, userID).
				Delete(&models.UserCreatedMap{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			if err := tx.Where("map_id = ?", req.MapID).Delete(&models.MapRating{}).Error; err != nil {
				return err
			}
			if err := tx.Where("map_id = ?", req.MapID).Delete(&models.MapPlayStat{}).Error; err != nil {
				return err
			}
			return tx.Where("map_id = ?", req.MapID).Delete(&models.UserMapFavorite{}).Error
		})
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Map not found or access denied"})
				return
			}
			log.WithError(err).Error("map deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete map"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Map deleted successfully"})
	}
}

func publicMapExists(db *gorm.DB, mapID uint) bool {
	var count int64
	err := db.Model(&models.UserCreatedMap{}).
		Where("id = ? AND is_public = ?", mapID, true).
		Count(&count).Error
	return err == nil && count > 0
}

// incrementPlayCount upserts the per-map play counter.
func incrementPlayCount(db *gorm.DB, mapID uint) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "map_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"play_count":  gorm.Expr("map_play_stats.play_count + 1"),
			"last_played": time.Now(),
		}),
	}).Create(&models.MapPlayStat{
		MapID:      mapID,
		PlayCount:  1,
		LastPlayed: time.Now(),
	}).Error
}

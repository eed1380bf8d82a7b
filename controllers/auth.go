package controllers

import (
	"net/http"
	"strings"
	"time"

	game_constants "Corazzato/constants/game"
	"Corazzato/middleware"
	models "Corazzato/models/postgres"
	redis_models "Corazzato/models/redis"
	"Corazzato/services/redis"
	"Corazzato/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tokenLifetime = time.Hour

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// @Summary Register a new account
// @Description Creates a user, grants the free starter tank and initial credits, and opens a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,password=string} true "Username and password"
// @Success 201 {object} object{success=bool,token=string,user_id=integer}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string}
// @Router /register [post]
func Register(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		username := strings.TrimSpace(req.Name)
		if username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: name or password"})
			return
		}
		if len(req.Password) < 6 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Password too short (minimum 6 characters)"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
			return
		}

		token := utils.GenerateToken()
		expiration := time.Now().Add(tokenLifetime)
		var user models.User

		err = db.Transaction(func(tx *gorm.DB) error {
			user = models.User{Username: username, PasswordHash: string(hash)}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Token{
				Token:      token,
				UserID:     user.ID,
				Expiration: expiration,
			}).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.UserStats{
				UserID:  user.ID,
				Credits: game_constants.DefaultCredits,
			}).Error; err != nil {
				return err
			}
			// Everyone owns the starter tank.
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserOwnedTank{
				UserID:      user.ID,
				TankID:      game_constants.DefaultTankID,
				PurchasedAt: time.Now(),
			}).Error
		})
		if err != nil {
			var existing models.User
			if db.Where("username = ?", username).First(&existing).Error == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			log.WithError(err).Error("registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		cacheSession(rc, token, user.ID, user.Username, expiration)
		c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user_id": user.ID})
	}
}

// @Summary Log in
// @Description Verifies credentials, revokes previous sessions and returns a fresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,password=string} true "Username and password"
// @Success 200 {object} object{success=bool,token=string,user_id=integer}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		username := strings.TrimSpace(req.Name)
		if username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: name or password"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}

		token := utils.GenerateToken()
		expiration := time.Now().Add(tokenLifetime)

		err := db.Transaction(func(tx *gorm.DB) error {
			// Single active session per user.
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error; err != nil {
				return err
			}
			return tx.Create(&models.Token{
				Token:      token,
				UserID:     user.ID,
				Expiration: expiration,
			}).Error
		})
		if err != nil {
			log.WithError(err).Error("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		cacheSession(rc, token, user.ID, user.Username, expiration)
		c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user_id": user.ID})
	}
}

// @Summary Log out
// @Description Revokes the presented session token. Unknown tokens still succeed.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Session token"
// @Success 204 "No Content"
// @Failure 400 {object} object{error=string}
// @Router /logout [delete]
func Logout(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.ExtractToken(c)
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
			return
		}

		if err := db.Where("token = ?", token).Delete(&models.Token{}).Error; err != nil {
			log.WithError(err).Error("logout failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
		if rc != nil {
			if err := rc.DeleteSession(token); err != nil {
				log.WithError(err).Warn("could not drop cached session")
			}
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary Resolve the current username
// @Description Returns the username bound to a token, sliding its expiration forward. Any failure resolves to "Guest".
// @Tags auth
// @Produce json
// @Param token query string false "Session token"
// @Success 200 {string} string
// @Router /whois [get]
func Whois(db *gorm.DB, rc *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.ExtractToken(c)

		var row models.Token
		err := db.Preload("User").
			Where("token = ? AND expiration > ?", token, time.Now()).
			First(&row).Error
		if err != nil {
			// Fail open so clients never have to parse an error here.
			c.JSON(http.StatusOK, "Guest")
			return
		}

		expiration := time.Now().Add(tokenLifetime)
		if err := db.Model(&models.Token{}).
			Where("token = ?", token).
			Update("expiration", expiration).Error; err != nil {
			log.WithError(err).Warn("could not extend token expiration")
		}
		cacheSession(rc, token, row.UserID, row.User.Username, expiration)

		c.JSON(http.StatusOK, row.User.Username)
	}
}

// @Summary List users
// @Description Returns id and name of every registered user
// @Tags auth
// @Produce json
// @Success 200 {object} object{data=[]object{id=integer,name=string}}
// @Failure 500 {object} object{error=string}
// @Router /users [get]
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("id").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		data := make([]gin.H, len(users))
		for i, u := range users {
			data[i] = gin.H{"id": u.ID, "name": u.Username}
		}
		c.JSON(http.StatusOK, gin.H{"data": data})
	}
}

func cacheSession(rc *redis.RedisClient, token string, userID uint, username string, expiresAt time.Time) {
	if rc == nil {
		return
	}
	err := rc.SaveSession(token, &redis_models.Session{
		UserID:    userID,
		Username:  username,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		log.WithError(err).Warn("could not cache session in redis")
	}
}

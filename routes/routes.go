package routes

import (
	"Corazzato/controllers"
	"Corazzato/middleware"
	"Corazzato/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient) {
	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	// Auth and account
	api.POST("/register", controllers.Register(db, redisClient))
	api.POST("/login", controllers.Login(db, redisClient))
	api.DELETE("/logout", controllers.Logout(db, redisClient))
	api.GET("/whois", controllers.Whois(db, redisClient))
	api.GET("/users", controllers.ListUsers(db))

	// Built-in catalogs
	api.GET("/maps/slots", controllers.ListMapSlots(db))
	api.GET("/tanks/slots", controllers.ListTankSlots(db))

	authed := api.Group("/")
	authed.Use(middleware.TokenAuth(db, redisClient))
	{
		authed.GET("/tanks/owned", controllers.ListOwnedTanks(db))

		shop := authed.Group("/shop")
		{
			shop.GET("/user-weapons", controllers.ListUserWeapons(db))
			shop.GET("/user-stats", controllers.GetUserStats(db))
			shop.GET("/loadout", controllers.GetTankLoadout(db))
			shop.GET("/customizations", controllers.ListCustomizations(db))
			shop.POST("/purchase", controllers.Purchase(db))
			shop.POST("/customize", controllers.Customize(db))
		}

		multiplayer := authed.Group("/multiplayer")
		{
			multiplayer.POST("/create", controllers.CreateMatch(db))
			multiplayer.POST("/join", controllers.JoinMatch(db))
			multiplayer.POST("/invite", controllers.InvitePlayer(db))
			multiplayer.GET("/invites", controllers.ListInvites(db))
		}

		local := authed.Group("/local-multiplayer")
		{
			local.POST("/create-local-match", controllers.CreateLocalMatch(db, redisClient))
			local.POST("/join-local-match", controllers.JoinLocalMatch(db, redisClient))
			local.POST("/assign-roles", controllers.AssignRoles(db, redisClient))
			local.POST("/setup-tanks", controllers.SetupTanks(db, redisClient))
			local.POST("/start-local-game", controllers.StartLocalGame(db, redisClient))
		}

		authed.POST("/usermaps/create", controllers.CreateUserMap(db))
		authed.PUT("/usermaps/update", controllers.UpdateUserMap(db))
		authed.POST("/usermaps/rate", controllers.RateUserMap(db))
		authed.POST("/usermaps/favorite", controllers.FavoriteUserMap(db))
		authed.GET("/usermaps/favorites", controllers.ListFavoriteMaps(db))
		authed.DELETE("/usermaps/delete", controllers.DeleteUserMap(db))

		authed.POST("/records/save", controllers.SaveRecord(db))
	}

	// Public shop catalogs
	api.GET("/shop/tanks", controllers.ListShopTanks(db))
	api.GET("/shop/weapons", controllers.ListShopWeapons(db))

	// Readable without a session; an optional token adds ownership and
	// favorite information.
	optional := api.Group("/")
	optional.Use(middleware.TokenOptional(db, redisClient))
	{
		optional.GET("/multiplayer/list", controllers.ListMatches(db))
		optional.GET("/usermaps/list", controllers.ListUserMaps(db))
		optional.GET("/usermaps/load", controllers.LoadUserMap(db))
		optional.GET("/usermaps/stats", controllers.GetUserMapStats(db))
		optional.GET("/records/user", controllers.GetUserRecords(db))
	}

	api.GET("/local-multiplayer/match-status", controllers.GetMatchStatus(db, redisClient))
	api.GET("/local-multiplayer/control-schemes", controllers.GetControlSchemes())
	api.GET("/records/leaderboard", controllers.GetLeaderboard(db))
}

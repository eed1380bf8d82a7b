package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	models "Corazzato/models/postgres"
	"Corazzato/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestEnv builds a router over a fresh in-memory database, with the
// catalog tables seeded. No Redis: every handler has to work without it.
func newTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		models.User{},
		models.Token{},
		models.UserStats{},
		models.GameMap{},
		models.GameTank{},
		models.TankWeapon{},
		models.UserOwnedTank{},
		models.TankCustomization{},
		models.GameMatch{},
		models.GameMatchPlayer{},
		models.LocalMultiplayerTank{},
		models.MatchInvite{},
		models.UserCreatedMap{},
		models.MapRating{},
		models.MapPlayStat{},
		models.UserMapFavorite{},
		models.GameRecord{}))

	seedCatalog(t, db)

	router := gin.New()
	routes.SetupRoutes(router, db, nil)
	return router, db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	maps := []models.GameMap{
		{ID: 1, Name: "Meadow Clash", Biome: "grassland", Seed: "4217"},
		{ID: 2, Name: "Dune Run", Biome: "desert", Seed: "907"},
	}
	tanks := []models.GameTank{
		{ID: 1, Name: "Standard", Price: 0, Description: "Free starter tank"},
		{ID: 2, Name: "Heavy", Price: 300, Description: "Slow but sturdy"},
		{ID: 3, Name: "Sniper", Price: 9000, Description: "Long range"},
	}
	weapons := []models.TankWeapon{
		{ID: 1, Name: "Basic Cannon", Type: "cannon", Price: 0, Damage: 10},
		{ID: 2, Name: "Twin MG", Type: "machinegun", Price: 150, Damage: 4},
		{ID: 3, Name: "Rail Cannon", Type: "cannon", Price: 9000, Damage: 40},
	}
	require.NoError(t, db.Create(&maps).Error)
	require.NoError(t, db.Create(&tanks).Error)
	require.NoError(t, db.Create(&weapons).Error)
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// registerUser creates an account and returns its token and user id.
func registerUser(t *testing.T, router *gin.Engine, name string) (string, uint) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/register", "", gin.H{
		"name":     name,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	userID, _ := body["user_id"].(float64)
	return token, uint(userID)
}

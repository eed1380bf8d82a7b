package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	models "Corazzato/models/postgres"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveRecord(t *testing.T, router *gin.Engine, token string, score, kills, deaths, duration int) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/records/save", token, gin.H{
		"score":    score,
		"kills":    kills,
		"deaths":   deaths,
		"duration": duration,
		"map_id":   1,
		"tank_id":  1,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
}

func TestGuestRecordsDefaultPayload(t *testing.T) {
	router, _ := newTestEnv(t)

	w := doJSON(router, http.MethodGet, "/records/user", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Guest", body["username"])
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["total_points"])
	assert.Equal(t, float64(0), stats["credits"])
	assert.NotNil(t, body["recent_records"])
}

func TestSaveRecordFoldsIntoAggregates(t *testing.T) {
	router, db := newTestEnv(t)
	token, userID := registerUser(t, router, "veteran")

	saveRecord(t, router, token, 120, 7, 2, 300)
	saveRecord(t, router, token, 80, 3, 5, 180)

	var stats models.UserStats
	require.NoError(t, db.Where("user_id = ?", userID).First(&stats).Error)
	assert.Equal(t, 200, stats.TotalPoints)
	assert.Equal(t, 10, stats.TotalKills)
	assert.Equal(t, 7, stats.TotalDeaths)
	assert.Equal(t, 2, stats.MatchesPlayed)
	assert.Equal(t, 480, stats.TotalPlaytime)
	// Game results never touch the wallet.
	assert.Equal(t, 500, stats.Credits)

	w := doJSON(router, http.MethodGet, "/records/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "veteran", body["username"])
	statsBody := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(200), statsBody["total_points"])

	recent := body["recent_games"].([]interface{})
	require.Len(t, recent, 2)
	first := recent[0].(map[string]interface{})
	assert.Equal(t, "Meadow Clash", first["map_name"])
}

func TestSaveRecordRequiresSession(t *testing.T) {
	router, _ := newTestEnv(t)

	w := doJSON(router, http.MethodPost, "/records/save", "", gin.H{"score": 10})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeaderboardOrdersByPoints(t *testing.T) {
	router, _ := newTestEnv(t)
	low, _ := registerUser(t, router, "bronze")
	high, _ := registerUser(t, router, "gold")
	mid, _ := registerUser(t, router, "silver")

	saveRecord(t, router, low, 50, 1, 0, 60)
	saveRecord(t, router, high, 900, 20, 1, 600)
	saveRecord(t, router, mid, 400, 9, 3, 300)

	w := doJSON(router, http.MethodGet, "/records/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "gold", rows[0]["username"])
	assert.Equal(t, float64(900), rows[0]["total_points"])
	assert.Equal(t, "silver", rows[1]["username"])
	assert.Equal(t, "bronze", rows[2]["username"])
}

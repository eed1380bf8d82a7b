package mapstore_test

import (
	"encoding/json"
	"testing"

	"Corazzato/services/mapstore"

	"github.com/stretchr/testify/assert"
)

func validData() *mapstore.MapData {
	const size = 10
	tiles := make([][]json.RawMessage, size)
	for i := range tiles {
		row := make([]json.RawMessage, size)
		for j := range row {
			row[j] = json.RawMessage("0")
		}
		tiles[i] = row
	}
	return &mapstore.MapData{
		Name:        "Proving Grounds",
		Width:       size,
		Height:      size,
		Biome:       "forest",
		TerrainType: "flat",
		Tiles:       tiles,
		Enemies:     json.RawMessage("[]"),
		Obstacles:   json.RawMessage("[]"),
	}
}

func TestValidateAcceptsWellFormedPayload(t *testing.T) {
	assert.NoError(t, mapstore.Validate(validData()))
}

func TestValidateRejectsBrokenPayloads(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*mapstore.MapData)
	}{
		{"width below minimum", func(d *mapstore.MapData) { d.Width = 5 }},
		{"height above maximum", func(d *mapstore.MapData) { d.Height = 1000 }},
		{"unknown biome", func(d *mapstore.MapData) { d.Biome = "lava" }},
		{"unknown terrain", func(d *mapstore.MapData) { d.TerrainType = "vertical" }},
		{"missing enemies", func(d *mapstore.MapData) { d.Enemies = nil }},
		{"missing obstacles", func(d *mapstore.MapData) { d.Obstacles = nil }},
		{"row count mismatch", func(d *mapstore.MapData) { d.Tiles = d.Tiles[:5] }},
		{"column count mismatch", func(d *mapstore.MapData) { d.Tiles[3] = d.Tiles[3][:4] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validData()
			tt.mutate(data)
			assert.Error(t, mapstore.Validate(data))
		})
	}
}

func TestValidateNilPayload(t *testing.T) {
	assert.Error(t, mapstore.Validate(nil))
}

func TestValidSortColumn(t *testing.T) {
	for _, col := range []string{"created_at", "updated_at", "name", "avg_rating", "play_count"} {
		assert.True(t, mapstore.ValidSortColumn(col), col)
	}
	assert.False(t, mapstore.ValidSortColumn("credits"))
	assert.False(t, mapstore.ValidSortColumn("id; DROP TABLE users"))
	assert.False(t, mapstore.ValidSortColumn(""))
}

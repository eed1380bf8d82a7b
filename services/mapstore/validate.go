package mapstore

import (
	game_constants "Corazzato/constants/game"
	"encoding/json"
	"fmt"
)

// MapData is the editor payload stored verbatim for user-created maps.
// Tiles is a height-by-width matrix; Enemies and Obstacles stay opaque
// since the game client owns their shape.
type MapData struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Biome       string              `json:"biome"`
	TerrainType string              `json:"terrain_type"`
	Tiles       [][]json.RawMessage `json:"tiles"`
	Enemies     json.RawMessage     `json:"enemies"`
	Obstacles   json.RawMessage     `json:"obstacles"`
}

// Validate checks the structural invariants of an editor payload before
// it is persisted: required fields present, dimensions inside the
// allowed square, enum fields known, and the tile matrix consistent
// with the declared dimensions.
func Validate(data *MapData) error {
	if data == nil {
		return fmt.Errorf("map data is required")
	}
	if data.Width < game_constants.MinMapDimension || data.Width > game_constants.MaxMapDimension {
		return fmt.Errorf("width must be between %d and %d",
			game_constants.MinMapDimension, game_constants.MaxMapDimension)
	}
	if data.Height < game_constants.MinMapDimension || data.Height > game_constants.MaxMapDimension {
		return fmt.Errorf("height must be between %d and %d",
			game_constants.MinMapDimension, game_constants.MaxMapDimension)
	}
	if !contains(game_constants.ValidBiomes, data.Biome) {
		return fmt.Errorf("unknown biome %q", data.Biome)
	}
	if !contains(game_constants.ValidTerrainTypes, data.TerrainType) {
		return fmt.Errorf("unknown terrain type %q", data.TerrainType)
	}
	if data.Enemies == nil {
		return fmt.Errorf("enemies field is required")
	}
	if data.Obstacles == nil {
		return fmt.Errorf("obstacles field is required")
	}
	if len(data.Tiles) != data.Height {
		return fmt.Errorf("tiles must have %d rows, got %d", data.Height, len(data.Tiles))
	}
	for i, row := range data.Tiles {
		if len(row) != data.Width {
			return fmt.Errorf("tiles row %d must have %d columns, got %d", i, data.Width, len(row))
		}
	}
	return nil
}

// ValidSortColumn reports whether a client-supplied sort key is one of
// the whitelisted listing columns. Anything else falls back to the
// caller's default instead of reaching the SQL layer.
func ValidSortColumn(column string) bool {
	switch column {
	case "created_at", "updated_at", "name", "avg_rating", "play_count":
		return true
	}
	return false
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

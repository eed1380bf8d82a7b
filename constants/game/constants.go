package game_constants

// Match capacity limits
const (
	MinMatchPlayers   = 2
	MaxMatchPlayers   = 4
	MaxTanksPerMatch  = 2
	MaxPlayersPerTank = 4
	MinPlayersToStart = 2
)

// Player roles inside a shared tank
const (
	RoleDriver = "driver"
	RoleGunner = "gunner"
)

// Match lifecycle states
const (
	MatchStatusWaiting    = "waiting"
	MatchStatusInProgress = "in_progress"
)

// Player readiness states
const (
	PlayerStatusReady   = "ready"
	PlayerStatusWaiting = "waiting"
)

// Spawn layout for pre-created tanks: 200 units apart along x
const (
	TankSpawnBaseX    = 100
	TankSpawnSpacingX = 200
	TankSpawnY        = 100
)

// Default free tank granted on registration
const DefaultTankID = 1

// Starting credits for a fresh stats row
const DefaultCredits = 500

// Map editor bounds
const (
	MinMapDimension = 10
	MaxMapDimension = 100
)

var ValidBiomes = []string{"forest", "desert", "arctic", "grassland", "mountain", "swamp", "urban", "beach"}

var ValidTerrainTypes = []string{"flat", "hilly", "mixed"}

// ControlScheme is one of the fixed input mappings players can be assigned.
type ControlScheme struct {
	Name        string            `json:"name"`
	Movement    map[string]string `json:"movement"`
	Fire        string            `json:"fire"`
	Description string            `json:"description"`
}

// ControlSchemes is pure reference data, keyed by the scheme id stored on
// each match player row.
var ControlSchemes = map[int]ControlScheme{
	1: {
		Name:        "WASD + Space",
		Movement:    map[string]string{"W": "up", "A": "left", "S": "down", "D": "right"},
		Fire:        "Space",
		Description: "Classic WASD scheme",
	},
	2: {
		Name:        "Arrows + Enter",
		Movement:    map[string]string{"↑": "up", "←": "left", "↓": "down", "→": "right"},
		Fire:        "Enter",
		Description: "Directional arrows scheme",
	},
	3: {
		Name:        "IJKL + M",
		Movement:    map[string]string{"I": "up", "J": "left", "K": "down", "L": "right"},
		Fire:        "M",
		Description: "Alternative IJKL scheme",
	},
	4: {
		Name:        "Numpad + 0",
		Movement:    map[string]string{"8": "up", "4": "left", "5": "down", "6": "right"},
		Fire:        "0",
		Description: "Numpad scheme",
	},
}

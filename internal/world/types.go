package world

// MoveFrags is the number of move fragments in one whole move.
const MoveFrags = 3

// NoOwner marks a tile or entity without an owner.
const NoOwner = -1

// PhaseMode controls who may act during a phase.
type PhaseMode int

const (
	PhaseConcurrent       PhaseMode = iota // every player acts in phase 0
	PhasePlayersAlternate                  // player i acts in phase i
)

// ServerState is the coarse game state.
type ServerState int

const (
	StatePreGame ServerState = iota
	StateRunning
	StateGameOver
)

// Activity is what a unit is doing between turns.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityFortifying
	ActivityFortified
	ActivityRoad
	ActivityIrrigate
	ActivityMine
)

var activityNames = [...]string{"idle", "fortifying", "fortified", "road", "irrigate", "mine"}

func (a Activity) String() string {
	if a < 0 || int(a) >= len(activityNames) {
		return "unknown"
	}
	return activityNames[a]
}

// IsTerrainWork reports whether the activity builds a tile extra.
func (a Activity) IsTerrainWork() bool {
	return a == ActivityRoad || a == ActivityIrrigate || a == ActivityMine
}

// ActionID names the unit actions gated by IsActionEnabled.
type ActionID int

const (
	ActionFoundCity ActionID = iota
	ActionAttack
	ActionDisbandUnit
	ActionConquerCity
)

// TechState is a player's relation to one tech.
type TechState int

const (
	TechUnknown TechState = iota
	TechPrereqsKnown
	TechKnown
)

// ProductionKind says what a city is building.
type ProductionKind int

const (
	ProductionUnit ProductionKind = iota
	ProductionBuilding
)

// Production is a city's current build target.
type Production struct {
	Kind  ProductionKind
	Value int // unit type or building index
}

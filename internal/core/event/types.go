package event

import "github.com/civgym/gym/internal/core/ecs"

// AI lifecycle broadcasts.

type MapReady struct {
	Width, Height int
}

type GameStarted struct {
	Turn int
	Year int
}

// UnitLost is published as a unit is removed. Killer is -1 when the unit
// was not killed in combat.
type UnitLost struct {
	UnitID ecs.EntityID
	Owner  int
	Killer int
}

// TechDiscovered is queued and delivered at the next turn start.
type TechDiscovered struct {
	Player int
	Tech   int
}

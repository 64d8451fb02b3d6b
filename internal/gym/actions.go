package gym

import (
	"fmt"
	"strings"
)

// ActionType is the kind of an agent action.
type ActionType int

const (
	ActionMove ActionType = iota
	ActionAttack
	ActionFortify
	ActionBuildCity
	ActionBuildRoad
	ActionBuildIrrigation
	ActionBuildMine
	ActionDisband
	ActionCityBuild
	ActionCityBuy
	ActionResearchSet
	ActionEndTurn
	ActionNoop

	numActionTypes
)

var actionTypeNames = [numActionTypes]string{
	"move", "attack", "fortify", "build_city", "build_road", "build_irrigation",
	"build_mine", "disband", "city_build", "city_buy", "research_set", "end_turn", "noop",
}

func (t ActionType) String() string {
	if t < 0 || t >= numActionTypes {
		return fmt.Sprintf("action(%d)", int(t))
	}
	return actionTypeNames[t]
}

// ParseActionType accepts the names printed by String, case-insensitively.
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionTypeNames {
		if name == s {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action type %q", s)
}

// Production sub-targets of ActionCityBuild.
const (
	ProduceUnit     = 0
	ProduceBuilding = 1
)

// Action is one agent command. ActorID is a unit or city id. TargetID is a
// tile index for attacks, a unit type or building index for production and
// a tech index for research. SubTarget is the direction for moves, the
// extra for terrain work (-1 picks one) and the production kind for
// ActionCityBuild.
type Action struct {
	Type      ActionType `json:"type"`
	ActorID   int        `json:"actor_id"`
	TargetID  int        `json:"target_id"`
	SubTarget int        `json:"sub_target"`
}

func (a Action) String() string {
	return fmt.Sprintf("%s(actor=%d target=%d sub=%d)", a.Type, a.ActorID, a.TargetID, a.SubTarget)
}

package gym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTypeNames(t *testing.T) {
	for typ := ActionMove; typ < numActionTypes; typ++ {
		got, err := ParseActionType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	got, err := ParseActionType(" END_TURN ")
	require.NoError(t, err)
	assert.Equal(t, ActionEndTurn, got)

	_, err = ParseActionType("teleport")
	assert.Error(t, err)
	assert.Equal(t, "action(99)", ActionType(99).String())
}

func TestLegalActionsOrder(t *testing.T) {
	mask := &ActionMask{
		CanEndTurn: true,
		Units: []UnitActions{{
			UnitID:          3,
			AttackableTiles: []int{40},
			CanBuildRoad:    true,
			CanDisband:      true,
		}},
		Cities: []CityActions{{
			CityID:             9,
			BuildableUnits:     []int{0},
			BuildableBuildings: []int{2},
			CanBuy:             true,
		}},
		ResearchableTechs: []int{5},
	}
	mask.Units[0].CanMove[1] = true

	assert.Equal(t, []Action{
		{Type: ActionEndTurn},
		{Type: ActionMove, ActorID: 3, SubTarget: 1},
		{Type: ActionAttack, ActorID: 3, TargetID: 40},
		{Type: ActionBuildRoad, ActorID: 3, SubTarget: -1},
		{Type: ActionDisband, ActorID: 3},
		{Type: ActionCityBuild, ActorID: 9, TargetID: 0, SubTarget: ProduceUnit},
		{Type: ActionCityBuild, ActorID: 9, TargetID: 2, SubTarget: ProduceBuilding},
		{Type: ActionCityBuy, ActorID: 9},
		{Type: ActionResearchSet, TargetID: 5},
	}, LegalActions(mask))

	assert.Nil(t, LegalActions(nil))
	assert.Empty(t, LegalActions(&ActionMask{}))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, StatusOK, Status(nil))
	assert.Equal(t, StatusNoGame, Status(ErrNoGame))
	assert.Equal(t, StatusNilHandle, Status(ErrNilHandle))
	assert.Equal(t, StatusStartSequence, Status(stepErr(stepStart, ErrStartSequence, assert.AnError)))
	assert.Equal(t, StatusFailed, Status(assert.AnError))

	err := stepErr(stepGenerateMap, ErrMapGenerate, assert.AnError)
	assert.ErrorIs(t, err, ErrMapGenerate)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "step 7")
}

package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// AIUnit is one unit as seen by the Lua AI policy.
type AIUnit struct {
	ID         int
	Type       string
	X, Y       int
	HP, MaxHP  int
	MovesLeft  int
	Military   bool
	CanFound   bool
	CanWork    bool // can build terrain improvements
	InCity     bool
	Fortified  bool
	Busy       bool // already performing a terrain activity
	CanRoad    bool
	CanIrr     bool
	CanMine    bool
	MoveDirs   []int // directions the unit may step into
	AttackDirs []int // directions holding an attackable enemy
	Roll       int   // 0-9999, drawn from the game RNG
}

// AICity is one city as seen by the Lua AI policy.
type AICity struct {
	ID              int
	Size            int
	Producing       string
	ProducingIsUnit bool
	ShieldStock     int
	Defenders       int
	Coastal         bool
	Units           []string // buildable unit types
	Buildings       []string // buildable buildings
	Roll            int
}

// PlayerAIContext holds everything the player_ai function gets to see.
type PlayerAIContext struct {
	Player       int
	Turn         int
	Gold         int
	NumCities    int
	Expansionist int
	Aggressive   int
	Builder      int
	WantCities   int    // advisor target city count
	Defender     string // advisor preferred defender
	Researching  string // "" when unset
	Researchable []string
	Units        []AIUnit
	Cities       []AICity
	Roll         int
}

// AICommand is a single order returned by the Lua AI.
type AICommand struct {
	Type string // "found_city", "move", "attack", "fortify", "road", "irrigate", "mine", "produce", "research", "idle"
	Unit int
	City int
	Dir  int
	Kind string // "unit" or "building" for produce
	Name string // unit type, building or tech name
}

// RunPlayerAI calls Lua player_ai(ctx) and returns the orders for one phase.
func (e *Engine) RunPlayerAI(ctx PlayerAIContext) []AICommand {
	if !e.HasFunc("player_ai") {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("player", lua.LNumber(ctx.Player))
	t.RawSetString("turn", lua.LNumber(ctx.Turn))
	t.RawSetString("gold", lua.LNumber(ctx.Gold))
	t.RawSetString("num_cities", lua.LNumber(ctx.NumCities))
	t.RawSetString("expansionist", lua.LNumber(ctx.Expansionist))
	t.RawSetString("aggressive", lua.LNumber(ctx.Aggressive))
	t.RawSetString("builder", lua.LNumber(ctx.Builder))
	t.RawSetString("want_cities", lua.LNumber(ctx.WantCities))
	t.RawSetString("defender", lua.LString(ctx.Defender))
	t.RawSetString("researching", lua.LString(ctx.Researching))
	t.RawSetString("researchable", e.strList(ctx.Researchable))
	t.RawSetString("roll", lua.LNumber(ctx.Roll))

	units := e.vm.CreateTable(len(ctx.Units), 0)
	for _, u := range ctx.Units {
		units.Append(e.unitTable(u))
	}
	t.RawSetString("units", units)

	cities := e.vm.CreateTable(len(ctx.Cities), 0)
	for _, c := range ctx.Cities {
		ct := e.vm.NewTable()
		ct.RawSetString("id", lua.LNumber(c.ID))
		ct.RawSetString("size", lua.LNumber(c.Size))
		ct.RawSetString("producing", lua.LString(c.Producing))
		ct.RawSetString("producing_is_unit", lua.LBool(c.ProducingIsUnit))
		ct.RawSetString("shield_stock", lua.LNumber(c.ShieldStock))
		ct.RawSetString("defenders", lua.LNumber(c.Defenders))
		ct.RawSetString("coastal", lua.LBool(c.Coastal))
		ct.RawSetString("units", e.strList(c.Units))
		ct.RawSetString("buildings", e.strList(c.Buildings))
		ct.RawSetString("roll", lua.LNumber(c.Roll))
		cities.Append(ct)
	}
	t.RawSetString("cities", cities)

	result, ok := e.call("player_ai", t)
	if !ok {
		return nil
	}
	return e.parseCommands("player_ai", result)
}

// AnimalAIContext is the wildlife view of one animal.
type AnimalAIContext struct {
	Unit AIUnit
}

// RunAnimalAI calls Lua animal_ai(ctx) for one wildlife unit.
func (e *Engine) RunAnimalAI(ctx AnimalAIContext) []AICommand {
	if !e.HasFunc("animal_ai") {
		return nil
	}
	result, ok := e.call("animal_ai", e.unitTable(ctx.Unit))
	if !ok {
		return nil
	}
	return e.parseCommands("animal_ai", result)
}

func (e *Engine) unitTable(u AIUnit) *lua.LTable {
	ut := e.vm.NewTable()
	ut.RawSetString("id", lua.LNumber(u.ID))
	ut.RawSetString("type", lua.LString(u.Type))
	ut.RawSetString("x", lua.LNumber(u.X))
	ut.RawSetString("y", lua.LNumber(u.Y))
	ut.RawSetString("hp", lua.LNumber(u.HP))
	ut.RawSetString("max_hp", lua.LNumber(u.MaxHP))
	ut.RawSetString("moves_left", lua.LNumber(u.MovesLeft))
	ut.RawSetString("military", lua.LBool(u.Military))
	ut.RawSetString("can_found", lua.LBool(u.CanFound))
	ut.RawSetString("can_work", lua.LBool(u.CanWork))
	ut.RawSetString("in_city", lua.LBool(u.InCity))
	ut.RawSetString("fortified", lua.LBool(u.Fortified))
	ut.RawSetString("busy", lua.LBool(u.Busy))
	ut.RawSetString("can_road", lua.LBool(u.CanRoad))
	ut.RawSetString("can_irrigate", lua.LBool(u.CanIrr))
	ut.RawSetString("can_mine", lua.LBool(u.CanMine))
	ut.RawSetString("move_dirs", e.intList(u.MoveDirs))
	ut.RawSetString("attack_dirs", e.intList(u.AttackDirs))
	ut.RawSetString("roll", lua.LNumber(u.Roll))
	return ut
}

func (e *Engine) parseCommands(fn string, result lua.LValue) []AICommand {
	rt, ok := result.(*lua.LTable)
	if !ok {
		if result != lua.LNil {
			e.log.Error("lua AI returned non-table", zap.String("func", fn))
		}
		return nil
	}
	var cmds []AICommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, AICommand{
				Type: lStr(row, "type"),
				Unit: lInt(row, "unit"),
				City: lInt(row, "city"),
				Dir:  lInt(row, "dir"),
				Kind: lStr(row, "kind"),
				Name: lStr(row, "name"),
			})
		}
	})
	return cmds
}

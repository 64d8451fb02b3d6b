package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the simulation's tunable rules
// and the AI opponent policy. Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Core scripts first: the others may use its helpers.
	for _, sub := range []string{"core", "combat", "ai"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// call invokes a global function with one table argument and returns its
// single result. ok is false when the function is missing or fails.
func (e *Engine) call(name string, arg lua.LValue) (lua.LValue, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return lua.LNil, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return lua.LNil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, true
}

// --- Science ---

// AIScienceCost returns the science cost percentage for an AI skill level.
func (e *Engine) AIScienceCost(level int) int {
	cost := e.callIntFunc("ai_science_cost", level)
	if cost <= 0 {
		return 100
	}
	return cost
}

// ResearchCost returns the bulbs needed for the next tech of a player who
// already knows known techs.
func (e *Engine) ResearchCost(known, scienceCost, base int) int {
	cost := e.callIntFunc("research_cost", known, scienceCost, base)
	if cost <= 0 {
		return base * (known + 1)
	}
	return cost
}

// GranarySize returns the food needed for a city of the given size to grow.
func (e *Engine) GranarySize(size, base, step int) int {
	n := e.callIntFunc("city_granary_size", size, base, step)
	if n <= 0 {
		return base + step*size
	}
	return n
}

// --- Score ---

// ScoreContext holds the inputs of a player's score.
type ScoreContext struct {
	Citizens    int
	Cities      int
	Techs       int
	Wonders     int
	UnitsBuilt  int
	UnitsKilled int
	UnitsLost   int
	Gold        int
}

// CalcScore calls the Lua calc_score function.
func (e *Engine) CalcScore(ctx ScoreContext) int {
	t := e.vm.NewTable()
	t.RawSetString("citizens", lua.LNumber(ctx.Citizens))
	t.RawSetString("cities", lua.LNumber(ctx.Cities))
	t.RawSetString("techs", lua.LNumber(ctx.Techs))
	t.RawSetString("wonders", lua.LNumber(ctx.Wonders))
	t.RawSetString("units_built", lua.LNumber(ctx.UnitsBuilt))
	t.RawSetString("units_killed", lua.LNumber(ctx.UnitsKilled))
	t.RawSetString("units_lost", lua.LNumber(ctx.UnitsLost))
	t.RawSetString("gold", lua.LNumber(ctx.Gold))

	result, ok := e.call("calc_score", t)
	if !ok {
		return ctx.Citizens + ctx.Techs*2
	}
	return int(lua.LVAsNumber(result))
}

// --- Combat ---

// CombatantInfo describes one side of a fight.
type CombatantInfo struct {
	Strength  int // base attack or defense value
	HP        int
	Firepower int
	Veteran   int
}

// CombatContext holds pre-packed data for one attack.
type CombatContext struct {
	Attacker        CombatantInfo
	Defender        CombatantInfo
	TerrainDefense int // percent
	Fortified      bool
	InCity         bool
	CityWallsBonus int // percent, applied against land attackers
	AttackerIsLand bool
	DefenderNonMil bool
}

// CombatStrength is returned by the Lua combat function. Values are scaled
// by 10 to keep fractional bonuses.
type CombatStrength struct {
	Attack  int
	Defense int
}

// CombatStrengths calls the Lua combat_strengths function.
func (e *Engine) CombatStrengths(ctx CombatContext) CombatStrength {
	fallback := CombatStrength{Attack: ctx.Attacker.Strength * 10, Defense: ctx.Defender.Strength * 10}

	t := e.vm.NewTable()
	atk := e.vm.NewTable()
	atk.RawSetString("strength", lua.LNumber(ctx.Attacker.Strength))
	atk.RawSetString("hp", lua.LNumber(ctx.Attacker.HP))
	atk.RawSetString("firepower", lua.LNumber(ctx.Attacker.Firepower))
	atk.RawSetString("veteran", lua.LNumber(ctx.Attacker.Veteran))
	atk.RawSetString("is_land", lua.LBool(ctx.AttackerIsLand))
	t.RawSetString("attacker", atk)

	def := e.vm.NewTable()
	def.RawSetString("strength", lua.LNumber(ctx.Defender.Strength))
	def.RawSetString("hp", lua.LNumber(ctx.Defender.HP))
	def.RawSetString("firepower", lua.LNumber(ctx.Defender.Firepower))
	def.RawSetString("veteran", lua.LNumber(ctx.Defender.Veteran))
	def.RawSetString("fortified", lua.LBool(ctx.Fortified))
	def.RawSetString("in_city", lua.LBool(ctx.InCity))
	def.RawSetString("non_military", lua.LBool(ctx.DefenderNonMil))
	t.RawSetString("defender", def)

	t.RawSetString("terrain_defense", lua.LNumber(ctx.TerrainDefense))
	t.RawSetString("walls_bonus", lua.LNumber(ctx.CityWallsBonus))

	result, ok := e.call("combat_strengths", t)
	if !ok {
		return fallback
	}
	rt, isTable := result.(*lua.LTable)
	if !isTable {
		e.log.Error("lua combat_strengths returned non-table")
		return fallback
	}
	return CombatStrength{
		Attack:  lInt(rt, "attack"),
		Defense: lInt(rt, "defense"),
	}
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

func (e *Engine) intList(vals []int) *lua.LTable {
	t := e.vm.CreateTable(len(vals), 0)
	for _, v := range vals {
		t.Append(lua.LNumber(v))
	}
	return t
}

func (e *Engine) strList(vals []string) *lua.LTable {
	t := e.vm.CreateTable(len(vals), 0)
	for _, v := range vals {
		t.Append(lua.LString(v))
	}
	return t
}

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

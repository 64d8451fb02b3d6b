package data

// RGB is a player color.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// GameSettings holds ruleset-wide parameters from game.yaml.
type GameSettings struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// StartUnits lists one role letter per starting unit:
	// c = city founder, w = terrain worker, x = explorer, d = defender.
	StartUnits  string   `yaml:"start_units"`
	StartYear   int      `yaml:"start_year"`
	YearStep    int      `yaml:"year_step"`
	EndTurn     int      `yaml:"end_turn"`
	Gold        int      `yaml:"gold"`
	InfraPoints int      `yaml:"infrapoints"`
	InitTechs   []string `yaml:"init_techs"`
	AIFill      int      `yaml:"aifill"`
	MaxPlayers  int      `yaml:"max_players"`
	MaxRate     int      `yaml:"max_rate"`

	MinCityDistance    int `yaml:"min_city_distance"`
	UnitVisionRadiusSq int `yaml:"unit_vision_radius_sq"`
	CityVisionRadiusSq int `yaml:"city_vision_radius_sq"`
	CityRadiusSq       int `yaml:"city_radius_sq"`
	LandPercent        int `yaml:"land_percent"`
	Animals            int `yaml:"animals"` // wildlife per thousand land tiles

	TechCostBase    int `yaml:"tech_cost_base"`
	GranaryBase     int `yaml:"granary_base"`
	GranaryStep     int `yaml:"granary_step"`
	ContentCitizens int `yaml:"content_citizens"` // citizens content by default

	Colors []RGB `yaml:"colors"`

	initTechs []int
}

// InitTechIndices returns the resolved initial tech indices.
func (g *GameSettings) InitTechIndices() []int {
	return g.initTechs
}

package world

import (
	"fmt"

	"github.com/civgym/gym/internal/core/ecs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CityNameSuggestion proposes a name for a new city of p: the first unused
// name from its nation's list, else a numbered name after its adjective.
func (s *Server) CityNameSuggestion(p *Player, t *Tile) string {
	used := make(map[string]bool, s.game.cities.Len())
	s.game.cities.Each(func(_ ecs.EntityID, c *City) {
		used[c.Name] = true
	})
	title := cases.Title(language.English)
	prefix := "City"
	if p != nil && p.Nation != nil {
		for _, raw := range p.Nation.CityNames {
			name := title.String(raw)
			if !used[name] {
				return name
			}
		}
		if p.Nation.Adjective != "" {
			prefix = title.String(p.Nation.Adjective)
		}
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s %d", prefix, n)
		if !used[name] {
			return name
		}
	}
}

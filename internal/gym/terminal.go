package gym

// checkTerminal reports whether the game has ended and who won. A lone
// surviving non-barbarian player wins outright. Otherwise, once the end
// turn is reached, the alive non-barbarian player with the highest score
// wins; on a tie the first one in player order stands.
func (e *Env) checkTerminal() (done bool, winner int) {
	eng := e.engine
	players := eng.Players()

	alive, last := 0, -1
	for _, p := range players {
		if p.IsAlive && !p.IsBarbarian {
			alive++
			last = p.Index
		}
	}
	if alive == 1 {
		return true, last
	}

	info := eng.Info()
	if info.EndTurn <= 0 || info.Turn < info.EndTurn {
		return false, -1
	}
	best, winner := -1, -1
	for _, p := range players {
		if !p.IsAlive || p.IsBarbarian {
			continue
		}
		if p.Score > best {
			best, winner = p.Score, p.Index
		}
	}
	return true, winner
}

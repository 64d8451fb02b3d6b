package main

import (
	"fmt"

	"github.com/civgym/gym/internal/gym"
	"github.com/spf13/cobra"
)

func newSmokeCmd(opts *globalOptions) *cobra.Command {
	var turns int
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Start a game, print its state and end a few turns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			return runSmoke(a, report{w: cmd.OutOrStdout()}, turns)
		},
	}
	cmd.Flags().IntVar(&turns, "turns", 5, "end-turn actions to play")
	return cmd
}

func runSmoke(a *app, r report, turns int) error {
	cfg := a.gameConfig()
	r.banner("civgym smoke test", fmt.Sprintf("%s · %dx%d · %d AI", cfg.Ruleset, cfg.Width, cfg.Height, cfg.NumAIPlayers))

	if err := a.newGame(cfg); err != nil {
		r.fail("new game failed")
		return fmt.Errorf("new game: %w", err)
	}
	r.ok(fmt.Sprintf("game created, seed %d", a.env.Seed()))
	r.blank()

	obs := gym.Observation{Winner: -1}
	defer obs.Release()
	if err := a.env.GetObservation(&obs); err != nil {
		return fmt.Errorf("observe: %w", err)
	}

	r.section("Observation")
	r.stat("Map", fmt.Sprintf("%d x %d", obs.Width, obs.Height))
	r.stat("Turn", obs.Turn)
	r.stat("Year", obs.Year)
	r.stat("Players", len(obs.Players))
	r.stat("Visible units", len(obs.Units))
	r.stat("Visible cities", len(obs.Cities))
	r.blank()

	r.section("Players")
	for _, p := range obs.Players {
		kind := "Human"
		if p.IsAI {
			kind = "AI"
		}
		r.line("%d: %-8s %-5s gold %d, cities %d, units %d", p.Index, p.Name, kind, p.Gold, p.NumCities, p.NumUnits)
	}
	r.blank()

	r.section("Ruleset")
	r.stat("Unit types", a.env.NumUnitTypes())
	r.stat("Building types", a.env.NumBuildingTypes())
	r.stat("Technologies", a.env.NumTechs())
	for i := 0; i < 5 && i < a.env.NumUnitTypes(); i++ {
		r.line("unit %d: %s", i, a.env.UnitTypeName(i))
	}
	r.blank()

	r.section(fmt.Sprintf("%d end turns", turns))
	for i := 0; i < turns; i++ {
		res := a.env.Step(gym.Action{Type: gym.ActionEndTurn})
		r.line("turn %d: done=%t reward=%.2f", i+1, res.Done, res.Reward)
		if res.Done {
			r.ok("game over")
			break
		}
		if err := a.env.GetObservation(&obs); err != nil {
			return fmt.Errorf("observe: %w", err)
		}
		me := obs.Players[obs.ControlledPlayer]
		r.line("  now turn %d, cities %d, units %d", obs.Turn, me.NumCities, me.NumUnits)
	}
	r.blank()
	r.ok("smoke test complete")
	return nil
}

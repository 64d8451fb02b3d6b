package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the unit types, buildings and techs of the configured ruleset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			// Ruleset tables are only loaded as part of a game.
			if err := a.newGame(a.gameConfig()); err != nil {
				return fmt.Errorf("new game: %w", err)
			}
			c := a.env.Catalog()
			r := report{w: cmd.OutOrStdout()}
			r.banner("civgym catalog", c.Ruleset)
			printNames(r, "Unit types", c.UnitTypes)
			printNames(r, "Buildings", c.Buildings)
			printNames(r, "Technologies", c.Techs)
			return nil
		},
	}
}

func printNames(r report, title string, names []string) {
	r.section(fmt.Sprintf("%s (%d)", title, len(names)))
	for i, name := range names {
		r.line("%3d  %s", i, name)
	}
	r.blank()
}

package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/civgym/gym/internal/gym"
	"github.com/civgym/gym/internal/persist"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlayCmd(opts *globalOptions) *cobra.Command {
	var (
		episodes int
		maxSteps int
		noRecord bool
		skip     []string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play episodes with a random legal-action agent and record them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if episodes < 1 || maxSteps < 1 {
				return fmt.Errorf("--episodes and --max-steps must be positive")
			}
			skipped, err := parseActionTypes(skip)
			if err != nil {
				return fmt.Errorf("--skip: %w", err)
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			var store persist.Store = discardStore{}
			if !noRecord {
				rec, err := persist.Open(ctx, a.cfg.Database, a.log)
				if err != nil {
					return fmt.Errorf("episode store: %w", err)
				}
				defer rec.Close()
				store = rec
			}
			return runPlay(ctx, a, store, report{w: cmd.OutOrStdout()}, skipped, episodes, maxSteps)
		},
	}
	cmd.Flags().IntVar(&episodes, "episodes", 1, "episodes to play")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 500, "steps before an episode is truncated")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not write episodes to the database")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "action types the agent never picks, e.g. disband,city_buy")
	return cmd
}

type episodeSummary struct {
	Steps     int
	Turns     int
	Winner    int
	Reward    float64
	Truncated bool
}

func runPlay(ctx context.Context, a *app, store persist.Store, r report, skip map[gym.ActionType]bool, episodes, maxSteps int) error {
	base := a.gameConfig()
	bar := progressbar.Default(int64(episodes), "episodes")
	var summaries []episodeSummary
	for i := 0; i < episodes; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg := base
		if cfg.Seed != 0 {
			cfg.Seed += uint32(i)
		}
		s, err := runEpisode(ctx, a, store, cfg, skip, maxSteps)
		if err != nil {
			return fmt.Errorf("episode %d: %w", i+1, err)
		}
		summaries = append(summaries, s)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	r.blank()
	r.section("Episodes")
	for i, s := range summaries {
		end := fmt.Sprintf("winner %d", s.Winner)
		switch {
		case s.Truncated:
			end = "truncated"
		case s.Winner < 0:
			end = "no winner"
		}
		r.line("%3d: %5d steps, %3d turns, reward %+.0f, %s", i+1, s.Steps, s.Turns, s.Reward, end)
	}
	return nil
}

func runEpisode(ctx context.Context, a *app, store persist.Store, cfg gym.GameConfig, skip map[gym.ActionType]bool, maxSteps int) (episodeSummary, error) {
	sum := episodeSummary{Winner: -1}
	if err := a.newGame(cfg); err != nil {
		return sum, err
	}
	id, err := store.BeginEpisode(ctx, persist.EpisodeMeta{
		Ruleset:   cfg.Ruleset,
		Width:     cfg.Width,
		Height:    cfg.Height,
		AIPlayers: cfg.NumAIPlayers,
		Seed:      a.env.Seed(),
		Agent:     "random",
		StartedAt: time.Now(),
	})
	if err != nil {
		return sum, err
	}

	agent := newRandomAgent(int64(a.env.Seed()), skip)
	var mask gym.ActionMask
	defer mask.Release()
	done := false
	for !done && sum.Steps < maxSteps {
		if err := a.env.GetValidActions(&mask); err != nil {
			return sum, err
		}
		act := agent.choose(gym.LegalActions(&mask))
		res := a.env.Step(act)
		sum.Steps++
		sum.Reward += res.Reward
		done = res.Done
		if err := store.RecordStep(ctx, id, persist.StepRecord{
			Turn:       a.engine.Info().Turn,
			ActionType: act.Type.String(),
			ActorID:    act.ActorID,
			TargetID:   act.TargetID,
			SubTarget:  act.SubTarget,
			Reward:     res.Reward,
			Done:       res.Done,
		}); err != nil {
			return sum, err
		}
	}
	sum.Truncated = !done

	obs := gym.Observation{Winner: -1}
	defer obs.Release()
	if err := a.env.GetObservation(&obs); err != nil {
		return sum, err
	}
	sum.Turns = obs.Turn
	sum.Winner = obs.Winner

	a.log.Debug("episode finished",
		zap.Int("steps", sum.Steps),
		zap.Int("turns", sum.Turns),
		zap.Int("winner", sum.Winner),
		zap.Bool("truncated", sum.Truncated),
	)
	return sum, store.FinishEpisode(ctx, id, persist.Outcome{
		Turns:      sum.Turns,
		Steps:      sum.Steps,
		Winner:     sum.Winner,
		Reward:     sum.Reward,
		FinishedAt: time.Now(),
	})
}

// randomAgent picks uniformly among legal actions whose type is not skipped.
// End turn is the fallback when nothing else is left.
type randomAgent struct {
	rng  *rand.Rand
	skip map[gym.ActionType]bool
}

func newRandomAgent(seed int64, skip map[gym.ActionType]bool) *randomAgent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed)), skip: skip}
}

func (a *randomAgent) choose(legal []gym.Action) gym.Action {
	if len(a.skip) > 0 {
		kept := legal[:0]
		for _, act := range legal {
			if !a.skip[act.Type] {
				kept = append(kept, act)
			}
		}
		legal = kept
	}
	if len(legal) == 0 {
		return gym.Action{Type: gym.ActionEndTurn}
	}
	return legal[a.rng.Intn(len(legal))]
}

func parseActionTypes(names []string) (map[gym.ActionType]bool, error) {
	set := make(map[gym.ActionType]bool, len(names))
	for _, name := range names {
		t, err := gym.ParseActionType(name)
		if err != nil {
			return nil, err
		}
		set[t] = true
	}
	return set, nil
}

// discardStore stands in for the database when recording is off.
type discardStore struct{}

func (discardStore) BeginEpisode(context.Context, persist.EpisodeMeta) (uuid.UUID, error) {
	return uuid.New(), nil
}
func (discardStore) RecordStep(context.Context, uuid.UUID, persist.StepRecord) error { return nil }
func (discardStore) FinishEpisode(context.Context, uuid.UUID, persist.Outcome) error { return nil }
func (discardStore) Close() error { return nil }

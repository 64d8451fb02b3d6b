package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/civgym/gym/internal/config"
	"github.com/civgym/gym/internal/gym"
	"github.com/civgym/gym/internal/scripting"
	"github.com/civgym/gym/internal/world"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultConfigPath = "config/civgym.toml"

type globalOptions struct {
	configPath string
	settings   []string // name=value
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "civgym",
		Short:         "Reinforcement-learning environment over a turn-based strategy game",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env is fine.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $CIVGYM_CONFIG or "+defaultConfigPath+")")
	root.PersistentFlags().StringArrayVar(&opts.settings, "set", nil, "engine setting as name=value, repeatable")

	root.AddCommand(
		newSmokeCmd(opts),
		newPlayCmd(opts),
		newServeCmd(opts),
		newCatalogCmd(opts),
	)
	return root
}

// app is the wired stack every subcommand runs on.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	lua      *scripting.Engine
	engine   *world.Server
	env      *gym.Env
	settings []string
}

func openApp(opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	lua, err := scripting.NewEngine(cfg.Paths.ScriptsDir, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("scripting: %w", err)
	}
	engine := world.NewServer(world.ServerOptions{RulesetsDir: cfg.Paths.RulesetsDir}, lua, log)
	env := gym.New(engine, log)
	a := &app{cfg: cfg, log: log, lua: lua, engine: engine, env: env, settings: opts.settings}

	if err := env.Init(); err != nil {
		a.close()
		return nil, err
	}
	if err := applySettings(engine, opts.settings, log); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	a.env.Shutdown()
	a.lua.Close()
	_ = a.log.Sync()
}

func (a *app) gameConfig() gym.GameConfig {
	return gym.ConfigFrom(a.cfg.Game)
}

// newGame starts a game and re-applies the --set values, since loading the
// ruleset resets the settings it governs.
func (a *app) newGame(cfg gym.GameConfig) error {
	if err := a.env.NewGame(cfg); err != nil {
		return err
	}
	return applySettings(a.engine, a.settings, a.log)
}

// loadConfig resolves the config path from the flag, then CIVGYM_CONFIG,
// then the default location. Only a missing default file falls back to the
// built-in configuration.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("CIVGYM_CONFIG")
	}
	if path == "" {
		cfg, err := config.Load(defaultConfigPath)
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return cfg, err
	}
	return config.Load(path)
}

// applySettings forwards --set name=value pairs to the engine console.
func applySettings(engine *world.Server, settings []string, log *zap.Logger) error {
	for _, kv := range settings {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("--set %q: want name=value", kv)
		}
		out, err := engine.Execute("set " + strings.TrimSpace(name) + " " + strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("--set %s: %w", name, err)
		}
		log.Info("setting applied", zap.String("setting", out))
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

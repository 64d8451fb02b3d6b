package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// sqliteBackend writes episodes to a local SQLite file over one connection.
type sqliteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path, migrates it
// and returns a recorder over it.
func OpenSQLite(ctx context.Context, path string, flushEvery int, log *zap.Logger) (*Recorder, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunMigrations(ctx, db, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("episode store ready", zap.String("driver", "sqlite"), zap.String("path", path))
	return newRecorder(&sqliteBackend{db: db}, flushEvery, log), nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func sqliteTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func (b *sqliteBackend) insertEpisode(ctx context.Context, id uuid.UUID, m EpisodeMeta) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO episodes (id, ruleset, width, height, ai_players, seed, agent, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), m.Ruleset, m.Width, m.Height, m.AIPlayers, int64(m.Seed), m.Agent, sqliteTime(m.StartedAt),
	)
	return err
}

func (b *sqliteBackend) insertSteps(ctx context.Context, id uuid.UUID, firstSeq int, steps []StepRecord) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("steps begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO episode_steps (episode_id, seq, turn, action_type, actor_id, target_id, sub_target, reward, done)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("steps prepare: %w", err)
	}
	defer stmt.Close()

	for i, s := range steps {
		if _, err := stmt.ExecContext(ctx,
			id.String(), firstSeq+i, s.Turn, s.ActionType, s.ActorID, s.TargetID, s.SubTarget, s.Reward, s.Done,
		); err != nil {
			return fmt.Errorf("steps insert: %w", err)
		}
	}
	return tx.Commit()
}

func (b *sqliteBackend) finishEpisode(ctx context.Context, id uuid.UUID, out Outcome) error {
	res, err := b.db.ExecContext(ctx,
		`UPDATE episodes SET finished_at = ?, turns = ?, steps = ?, winner = ?, reward = ?
		 WHERE id = ?`,
		sqliteTime(out.FinishedAt), out.Turns, out.Steps, out.Winner, out.Reward, id.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUnknownEpisode
	}
	return nil
}

func (b *sqliteBackend) close() error {
	return b.db.Close()
}

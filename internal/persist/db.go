package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/civgym/gym/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// pgBackend writes episodes through a pgx connection pool.
type pgBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to cfg.DSN, migrates the schema and returns a
// recorder over it.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Recorder, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	err = RunMigrations(ctx, db, "postgres")
	db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("episode store ready", zap.String("driver", "postgres"), zap.Int32("max_conns", poolCfg.MaxConns))
	return newRecorder(&pgBackend{pool: pool}, cfg.FlushEvery, log), nil
}

func (b *pgBackend) insertEpisode(ctx context.Context, id uuid.UUID, m EpisodeMeta) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO episodes (id, ruleset, width, height, ai_players, seed, agent, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, m.Ruleset, m.Width, m.Height, m.AIPlayers, int64(m.Seed), m.Agent, m.StartedAt,
	)
	return err
}

// insertSteps sends the whole buffer as one batch inside a transaction.
func (b *pgBackend) insertSteps(ctx context.Context, id uuid.UUID, firstSeq int, steps []StepRecord) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("steps begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, s := range steps {
		batch.Queue(
			`INSERT INTO episode_steps (episode_id, seq, turn, action_type, actor_id, target_id, sub_target, reward, done)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, firstSeq+i, s.Turn, s.ActionType, s.ActorID, s.TargetID, s.SubTarget, s.Reward, s.Done,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("steps insert: %w", err)
	}
	return tx.Commit(ctx)
}

func (b *pgBackend) finishEpisode(ctx context.Context, id uuid.UUID, out Outcome) error {
	tag, err := b.pool.Exec(ctx,
		`UPDATE episodes SET finished_at = $2, turns = $3, steps = $4, winner = $5, reward = $6
		 WHERE id = $1`,
		id, out.FinishedAt, out.Turns, out.Steps, out.Winner, out.Reward,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownEpisode
	}
	return nil
}

func (b *pgBackend) close() error {
	b.pool.Close()
	return nil
}

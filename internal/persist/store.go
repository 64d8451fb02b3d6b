package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/civgym/gym/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EpisodeMeta describes the game an episode was played on.
type EpisodeMeta struct {
	Ruleset   string
	Width     int
	Height    int
	AIPlayers int
	Seed      uint32
	Agent     string
	StartedAt time.Time
}

// StepRecord is one agent action and what it earned.
type StepRecord struct {
	Turn       int
	ActionType string
	ActorID    int
	TargetID   int
	SubTarget  int
	Reward     float64
	Done       bool
}

// Outcome closes an episode.
type Outcome struct {
	Turns      int
	Steps      int
	Winner     int // -1 when nobody won
	Reward     float64
	FinishedAt time.Time
}

// Store records played episodes.
type Store interface {
	BeginEpisode(ctx context.Context, meta EpisodeMeta) (uuid.UUID, error)
	RecordStep(ctx context.Context, id uuid.UUID, step StepRecord) error
	FinishEpisode(ctx context.Context, id uuid.UUID, out Outcome) error
	Close() error
}

var ErrUnknownEpisode = errors.New("persist: unknown episode")

// backend is one SQL dialect's writes. insertSteps must be atomic.
type backend interface {
	insertEpisode(ctx context.Context, id uuid.UUID, meta EpisodeMeta) error
	insertSteps(ctx context.Context, id uuid.UUID, firstSeq int, steps []StepRecord) error
	finishEpisode(ctx context.Context, id uuid.UUID, out Outcome) error
	close() error
}

type episodeBuf struct {
	flushed int // steps already written
	pending []StepRecord
}

// Recorder buffers steps in memory and writes them in one transaction
// every flushEvery steps, and when the episode finishes.
type Recorder struct {
	b          backend
	log        *zap.Logger
	flushEvery int

	mu       sync.Mutex
	episodes map[uuid.UUID]*episodeBuf
}

func newRecorder(b backend, flushEvery int, log *zap.Logger) *Recorder {
	if flushEvery <= 0 {
		flushEvery = 1
	}
	return &Recorder{
		b:          b,
		log:        log,
		flushEvery: flushEvery,
		episodes:   make(map[uuid.UUID]*episodeBuf),
	}
}

func (r *Recorder) BeginEpisode(ctx context.Context, meta EpisodeMeta) (uuid.UUID, error) {
	id := uuid.New()
	if meta.StartedAt.IsZero() {
		meta.StartedAt = time.Now()
	}
	if err := r.b.insertEpisode(ctx, id, meta); err != nil {
		return uuid.Nil, fmt.Errorf("begin episode: %w", err)
	}
	r.mu.Lock()
	r.episodes[id] = &episodeBuf{pending: make([]StepRecord, 0, r.flushEvery)}
	r.mu.Unlock()
	r.log.Debug("episode started", zap.String("episode", id.String()), zap.Uint32("seed", meta.Seed))
	return id, nil
}

func (r *Recorder) RecordStep(ctx context.Context, id uuid.UUID, step StepRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep, ok := r.episodes[id]
	if !ok {
		return ErrUnknownEpisode
	}
	ep.pending = append(ep.pending, step)
	if len(ep.pending) < r.flushEvery {
		return nil
	}
	return r.flushLocked(ctx, id, ep)
}

func (r *Recorder) flushLocked(ctx context.Context, id uuid.UUID, ep *episodeBuf) error {
	if len(ep.pending) == 0 {
		return nil
	}
	if err := r.b.insertSteps(ctx, id, ep.flushed, ep.pending); err != nil {
		r.log.Error("step flush failed", zap.String("episode", id.String()), zap.Int("steps", len(ep.pending)), zap.Error(err))
		return fmt.Errorf("flush steps: %w", err)
	}
	ep.flushed += len(ep.pending)
	ep.pending = ep.pending[:0]
	return nil
}

// FinishEpisode writes any buffered steps and the outcome. The episode
// cannot be recorded to afterwards.
func (r *Recorder) FinishEpisode(ctx context.Context, id uuid.UUID, out Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep, ok := r.episodes[id]
	if !ok {
		return ErrUnknownEpisode
	}
	if err := r.flushLocked(ctx, id, ep); err != nil {
		return err
	}
	if out.FinishedAt.IsZero() {
		out.FinishedAt = time.Now()
	}
	if err := r.b.finishEpisode(ctx, id, out); err != nil {
		return fmt.Errorf("finish episode: %w", err)
	}
	delete(r.episodes, id)
	r.log.Info("episode finished",
		zap.String("episode", id.String()),
		zap.Int("turns", out.Turns),
		zap.Int("steps", out.Steps),
		zap.Int("winner", out.Winner),
		zap.Float64("reward", out.Reward),
	)
	return nil
}

// Close flushes what it can and closes the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	var errs []error
	for id, ep := range r.episodes {
		if err := r.flushLocked(context.Background(), id, ep); err != nil {
			errs = append(errs, err)
		}
	}
	r.episodes = map[uuid.UUID]*episodeBuf{}
	r.mu.Unlock()
	errs = append(errs, r.b.close())
	return errors.Join(errs...)
}

// Open connects to the database cfg names and migrates it.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Recorder, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return OpenSQLite(ctx, cfg.DSN, cfg.FlushEvery, log)
	case "postgres":
		return OpenPostgres(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

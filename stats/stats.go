// Package stats records player statistics asynchronously. Completions are
// posted back to the simulation thread.
package stats

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/metrics"
	"github.com/lefinal/bedwars-server/store"
	"go.uber.org/zap"
	"time"
)

// DefaultQueueSize is the default number of queued operations before new ones
// are dropped.
const DefaultQueueSize = 256

// operationTimeout is the timeout for a single store operation.
const operationTimeout = 5 * time.Second

// Store is the persistence used by Recorder. It is implemented by store.Mall.
type Store interface {
	PlayerStatsExist(ctx context.Context, player uuid.UUID) (bool, error)
	CreateDefaultPlayerStats(ctx context.Context, player uuid.UUID) error
	IncrementPlayerStat(ctx context.Context, player uuid.UUID, column store.StatColumn, delta int) error
	PlayerPlacement(ctx context.Context, player uuid.UUID) (int, error)
	TopPlayers(ctx context.Context, n int) ([]store.PlayerStats, error)
	ResetPlayerStats(ctx context.Context, player uuid.UUID) (store.PlayerStats, error)
}

// Poster runs functions on the simulation thread. It is implemented by
// games.Inbox.
type Poster interface {
	Post(fn func())
}

// statColumns maps games.StatKind to the column in the store.
var statColumns = map[games.StatKind]store.StatColumn{
	games.StatKill:          store.StatColumnKills,
	games.StatDeath:         store.StatColumnDeaths,
	games.StatWin:           store.StatColumnWins,
	games.StatGamesPlayed:   store.StatColumnGamesPlayed,
	games.StatBedsDestroyed: store.StatColumnBedsDestroyed,
}

// operation is a queued store operation.
type operation struct {
	name string
	run  func(ctx context.Context) error
}

// Recorder implements games.StatsRecorder. All calls are non-blocking. Store
// operations are performed by Run in order. Failed operations are logged and
// not retried.
type Recorder struct {
	logger *zap.Logger
	store  Store
	poster Poster
	queue  chan operation
}

// NewRecorder creates a new Recorder. Run must be called for performing
// operations.
func NewRecorder(logger *zap.Logger, store Store, poster Poster, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Recorder{
		logger: logger,
		store:  store,
		poster: poster,
		queue:  make(chan operation, queueSize),
	}
}

// Run performs queued operations until the given context.Context is done.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-r.queue:
			r.perform(ctx, op)
		}
	}
}

func (r *Recorder) perform(ctx context.Context, op operation) {
	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	start := time.Now()
	err := op.run(opCtx)
	metrics.StatsOperationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatsOperations.WithLabelValues("failure").Inc()
		errors.Log(r.logger, errors.Wrap(err, op.name, nil))
		return
	}
	metrics.StatsOperations.WithLabelValues("success").Inc()
}

// enqueue adds the operation to the queue. If the queue is full, the operation
// is dropped.
func (r *Recorder) enqueue(name string, run func(ctx context.Context) error) {
	select {
	case r.queue <- operation{name: name, run: run}:
	default:
		metrics.StatsOperations.WithLabelValues("dropped").Inc()
		r.logger.Warn("stats queue full, dropping operation", zap.String("operation", name))
	}
}

// RecordEvent adds the delta to the statistic of the player.
func (r *Recorder) RecordEvent(player uuid.UUID, kind games.StatKind, delta int) {
	column, ok := statColumns[kind]
	if !ok {
		errors.Log(r.logger, errors.NewInternalError(fmt.Sprintf("unknown stat kind %s", kind),
			errors.Details{"player": player}))
		return
	}
	r.enqueue(fmt.Sprintf("record %s", kind), func(ctx context.Context) error {
		return r.store.IncrementPlayerStat(ctx, player, column, delta)
	})
}

// EnsureProfile creates default statistics for the player if none exist.
func (r *Recorder) EnsureProfile(player uuid.UUID) {
	r.enqueue("ensure profile", func(ctx context.Context) error {
		exists, err := r.store.PlayerStatsExist(ctx, player)
		if err != nil {
			return errors.Wrap(err, "check exists", errors.Details{"player": player})
		}
		if exists {
			return nil
		}
		r.logger.Debug("creating default player stats", zap.String("player", player.String()))
		return r.store.CreateDefaultPlayerStats(ctx, player)
	})
}

// PlacementRank looks up the placement of the player. The given callback is
// posted with the result.
func (r *Recorder) PlacementRank(player uuid.UUID, done func(rank int, err error)) {
	r.enqueue("placement rank", func(ctx context.Context) error {
		rank, err := r.store.PlayerPlacement(ctx, player)
		r.poster.Post(func() { done(rank, err) })
		return err
	})
}

// Top looks up the best n players. The given callback is posted with the
// result.
func (r *Recorder) Top(n int, done func(entries []games.LeaderboardEntry, err error)) {
	r.enqueue("top players", func(ctx context.Context) error {
		top, err := r.store.TopPlayers(ctx, n)
		entries := make([]games.LeaderboardEntry, 0, len(top))
		for _, stats := range top {
			entries = append(entries, leaderboardEntry(stats))
		}
		r.poster.Post(func() { done(entries, err) })
		return err
	})
}

// ResetStats resets all statistics of the player. The given callback is posted
// with the previous statistics.
func (r *Recorder) ResetStats(player uuid.UUID, done func(previous games.LeaderboardEntry, err error)) {
	r.enqueue("reset stats", func(ctx context.Context) error {
		previous, err := r.store.ResetPlayerStats(ctx, player)
		r.poster.Post(func() { done(leaderboardEntry(previous), err) })
		return err
	})
}

func leaderboardEntry(stats store.PlayerStats) games.LeaderboardEntry {
	return games.LeaderboardEntry{
		Player:        stats.Player,
		Kills:         stats.Kills,
		Deaths:        stats.Deaths,
		Wins:          stats.Wins,
		GamesPlayed:   stats.GamesPlayed,
		BedsDestroyed: stats.BedsDestroyed,
	}
}

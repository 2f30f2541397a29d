package debugstatssvc

import (
	"context"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/service"
	"go.uber.org/zap"
	"runtime"
	"time"
)

// Config for NewService.
type Config struct {
	// IsEnabled describes whether periodic debug stats logging is desired.
	IsEnabled bool
	// Interval in which to log debug stats.
	Interval time.Duration
	// IncludeStack adds the stack of all goroutines to each log entry.
	IncludeStack bool
}

// SnapshotSource provides the current state of the match.
type SnapshotSource interface {
	Snapshot() games.Snapshot
}

type debugStatsService struct {
	logger *zap.Logger
	config Config
	source SnapshotSource
}

// NewService creates a service.Service that logs system and match state in the
// configured interval.
func NewService(logger *zap.Logger, config Config, source SnapshotSource) service.Service {
	return &debugStatsService{
		logger: logger,
		config: config,
		source: source,
	}
}

func (s *debugStatsService) Run(ctx context.Context) error {
	if !s.config.IsEnabled {
		return nil
	}
	s.logger.Debug("logging system state periodically", zap.Duration("interval", s.config.Interval))
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.logger.Debug("debug system stats", s.fields()...)
		}
	}
}

// fields returns the current system state like memory stats and the state of
// the match.
func (s *debugStatsService) fields() []zap.Field {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	snapshot := s.source.Snapshot()
	fields := []zap.Field{
		zap.Int("num_cpu", runtime.NumCPU()),
		zap.Int("num_goroutine", runtime.NumGoroutine()),
		zap.Uint64("memory_in_use_mb", memStats.Sys/1000/1000),
		zap.Any("phase", snapshot.Phase),
		zap.Int("countdown", snapshot.Countdown),
		zap.Int("online", snapshot.Online),
		zap.Int("pending_tasks", snapshot.PendingTasks),
	}
	if s.config.IncludeStack {
		buf := make([]byte, 1<<16)
		stackSize := runtime.Stack(buf, true)
		fields = append(fields, zap.String("stack", string(buf[:stackSize])))
	}
	return fields
}

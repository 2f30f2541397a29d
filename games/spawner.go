package games

import (
	"fmt"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/lefinal/bedwars-server/metrics"
	"go.uber.org/zap"
)

// Spawn cadences in game ticks.
const (
	bronzeInterval = 15
	ironDelay      = 300
	ironInterval   = 300
	goldInterval   = GameTicksPerSecond
	// goldSteps is the number of gold job runs between two gold drops.
	goldSteps = 40
)

// spawnLift is added to the Y coordinate of spawner locations so that items do
// not spawn inside the block.
const spawnLift = 0.2

// ResourceSpawnJob is a repeating job materializing one resource unit at each
// of its locations per run.
type ResourceSpawnJob struct {
	Tier      maps.Tier
	Locations []maps.Location
	// Delay is the number of game ticks before the first run.
	Delay uint64
	// Interval is the number of game ticks between two runs.
	Interval uint64
}

// Spawner manages the resource spawn jobs of a match. Like the Scheduler, it
// must only be used from the simulation thread.
type Spawner struct {
	logger    *zap.Logger
	scheduler *Scheduler
	world     World
	jobs      []ResourceSpawnJob
	taskIDs   []TaskID
	// goldRemaining is the number of gold job runs until the next gold drop.
	goldRemaining int
}

// NewSpawner creates a Spawner without jobs.
func NewSpawner(logger *zap.Logger, scheduler *Scheduler, world World) *Spawner {
	return &Spawner{
		logger:    logger,
		scheduler: scheduler,
		world:     world,
	}
}

// Prepare sets up the jobs for the given map. Spawner locations are resolved
// once here. Gold is only spawned if enabled.
func (s *Spawner) Prepare(m maps.Map, goldEnabled bool) {
	s.Stop()
	s.jobs = []ResourceSpawnJob{
		{
			Tier:      maps.TierBronze,
			Locations: liftedLocations(m.SpawnersFor(maps.TierBronze)),
			Delay:     0,
			Interval:  bronzeInterval,
		},
		{
			Tier:      maps.TierIron,
			Locations: liftedLocations(m.SpawnersFor(maps.TierIron)),
			Delay:     ironDelay,
			Interval:  ironInterval,
		},
	}
	if goldEnabled {
		s.jobs = append(s.jobs, ResourceSpawnJob{
			Tier:      maps.TierGold,
			Locations: liftedLocations(m.SpawnersFor(maps.TierGold)),
			Delay:     0,
			Interval:  goldInterval,
		})
	}
	s.logger.Debug("spawn jobs prepared",
		zap.String("map", m.Name),
		zap.Bool("gold_enabled", goldEnabled),
		zap.Int("jobs", len(s.jobs)))
}

// Jobs returns the prepared jobs.
func (s *Spawner) Jobs() []ResourceSpawnJob {
	out := make([]ResourceSpawnJob, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Start schedules all prepared jobs. Calling it while running does nothing.
func (s *Spawner) Start() {
	if s.Running() {
		return
	}
	s.goldRemaining = goldSteps
	for _, job := range s.jobs {
		job := job
		var fn func()
		if job.Tier == maps.TierGold {
			fn = func() { s.runGold(job) }
		} else {
			fn = func() { s.drop(job) }
		}
		id := s.scheduler.Every(fmt.Sprintf("spawn-%s", job.Tier), job.Delay, job.Interval, fn)
		s.taskIDs = append(s.taskIDs, id)
	}
}

// Stop cancels all running jobs.
func (s *Spawner) Stop() {
	for _, id := range s.taskIDs {
		s.scheduler.Cancel(id)
	}
	s.taskIDs = nil
}

// Running checks whether any job is scheduled.
func (s *Spawner) Running() bool {
	return len(s.taskIDs) > 0
}

func (s *Spawner) drop(job ResourceSpawnJob) {
	for _, location := range job.Locations {
		s.world.PlaceResource(job.Tier, location)
	}
	metrics.ResourcesSpawned.WithLabelValues(string(job.Tier)).Add(float64(len(job.Locations)))
}

func (s *Spawner) runGold(job ResourceSpawnJob) {
	s.goldRemaining--
	if s.goldRemaining <= 0 {
		s.drop(job)
		s.goldRemaining = goldSteps
	}
	label := FormatClock(s.goldRemaining)
	for _, location := range job.Locations {
		s.world.SetSpawnerLabel(location.Add(0, 1, 0), label)
	}
}

// FormatClock formats the given seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func liftedLocations(locations []maps.Location) []maps.Location {
	out := make([]maps.Location, 0, len(locations))
	for _, location := range locations {
		out = append(out, location.Add(0, spawnLift, 0))
	}
	return out
}

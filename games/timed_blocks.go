package games

import (
	"github.com/lefinal/bedwars-server/maps"
	"go.uber.org/zap"
	"math"
	"sort"
)

// DefaultBlockLifetime is the number of seconds a timed block stays in the
// world if no lifetime is given.
const DefaultBlockLifetime = 5

// blockExpiryInterval is the number of game ticks between two expiry sweeps.
const blockExpiryInterval = GameTicksPerSecond

// blockPosition is the block a location lies in.
type blockPosition struct {
	world   string
	x, y, z int
}

func blockPositionOf(location maps.Location) blockPosition {
	return blockPosition{
		world: location.World,
		x:     int(math.Floor(location.X)),
		y:     int(math.Floor(location.Y)),
		z:     int(math.Floor(location.Z)),
	}
}

// timedBlock is a placed block that is removed once expired.
type timedBlock struct {
	location maps.Location
	// expiresAt is the scheduler tick at which the block is removed.
	expiresAt uint64
}

// TimedBlocks removes placed blocks like wool or rescue platforms after their
// lifetime. Like the Scheduler, it must only be used from the simulation
// thread.
type TimedBlocks struct {
	logger    *zap.Logger
	scheduler *Scheduler
	world     World
	blocks    map[blockPosition]timedBlock
	taskID    TaskID
}

// NewTimedBlocks creates a stopped TimedBlocks.
func NewTimedBlocks(logger *zap.Logger, scheduler *Scheduler, world World) *TimedBlocks {
	return &TimedBlocks{
		logger:    logger,
		scheduler: scheduler,
		world:     world,
		blocks:    make(map[blockPosition]timedBlock),
	}
}

// Track registers the block at the given location for removal after the given
// number of seconds. Tracking the same block again replaces its expiry.
func (tb *TimedBlocks) Track(location maps.Location, lifetimeSeconds int) {
	if lifetimeSeconds <= 0 {
		lifetimeSeconds = DefaultBlockLifetime
	}
	tb.blocks[blockPositionOf(location)] = timedBlock{
		location:  location,
		expiresAt: tb.scheduler.Now() + uint64(lifetimeSeconds)*GameTicksPerSecond,
	}
}

// Start schedules the expiry sweep. Calling it while running does nothing.
func (tb *TimedBlocks) Start() {
	if tb.Running() {
		return
	}
	tb.taskID = tb.scheduler.Every("block-expiry", 0, blockExpiryInterval, tb.sweep)
}

// Stop cancels the sweep and forgets all tracked blocks. Blocks stay in the
// world.
func (tb *TimedBlocks) Stop() {
	if tb.taskID != 0 {
		tb.scheduler.Cancel(tb.taskID)
		tb.taskID = 0
	}
	tb.blocks = make(map[blockPosition]timedBlock)
}

// Running checks whether the sweep is scheduled.
func (tb *TimedBlocks) Running() bool {
	return tb.taskID != 0
}

// Len returns the number of tracked blocks.
func (tb *TimedBlocks) Len() int {
	return len(tb.blocks)
}

// sweep clears all expired blocks ordered by expiry.
func (tb *TimedBlocks) sweep() {
	now := tb.scheduler.Now()
	expired := make([]blockPosition, 0)
	for pos, block := range tb.blocks {
		if block.expiresAt <= now {
			expired = append(expired, pos)
		}
	}
	if len(expired) == 0 {
		return
	}
	sort.Slice(expired, func(i, j int) bool {
		a, b := tb.blocks[expired[i]], tb.blocks[expired[j]]
		if a.expiresAt != b.expiresAt {
			return a.expiresAt < b.expiresAt
		}
		pa, pb := expired[i], expired[j]
		if pa.world != pb.world {
			return pa.world < pb.world
		}
		if pa.x != pb.x {
			return pa.x < pb.x
		}
		if pa.y != pb.y {
			return pa.y < pb.y
		}
		return pa.z < pb.z
	})
	for _, pos := range expired {
		tb.world.ClearBlock(tb.blocks[pos].location)
		delete(tb.blocks, pos)
	}
	tb.logger.Debug("timed blocks expired", zap.Int("count", len(expired)), zap.Int("remaining", len(tb.blocks)))
}

package matchsvc

import (
	"context"
	"github.com/gobuffalo/nulls"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/event"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/lefinal/bedwars-server/portal"
	"go.uber.org/zap"
	"math"
	"sync"
)

// DefaultOutboxSize is the default number of messages that may be queued for
// publishing.
const DefaultOutboxSize = 1024

// materialAir is the material of empty blocks.
const materialAir = "AIR"

// outboundMessage is a message queued for publishing.
type outboundMessage struct {
	topic   portal.Topic
	payload interface{}
}

// blockKey addresses a block in a world.
type blockKey struct {
	world   string
	x, y, z int
}

func blockKeyOf(location maps.Location) blockKey {
	return blockKey{
		world: location.World,
		x:     int(math.Floor(location.X)),
		y:     int(math.Floor(location.Y)),
		z:     int(math.Floor(location.Z)),
	}
}

// Bridge implements games.World and games.Presenter by publishing to the game
// host. Calls never block as messages are queued and published in Run. If the
// queue is full, messages are dropped.
type Bridge struct {
	logger *zap.Logger
	portal portal.Portal
	outbox chan outboundMessage
	// blocks holds the last reported material by block.
	blocks map[blockKey]string
	// blocksMutex locks blocks.
	blocksMutex sync.RWMutex
}

// NewBridge creates a new Bridge. Messages are published after running it with
// Bridge.Run.
func NewBridge(logger *zap.Logger, portal portal.Portal, outboxSize int) *Bridge {
	return &Bridge{
		logger: logger,
		portal: portal,
		outbox: make(chan outboundMessage, outboxSize),
		blocks: make(map[blockKey]string),
	}
}

// Run publishes queued messages until the given context.Context is done.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case message := <-b.outbox:
			b.portal.Publish(ctx, message.topic, message.payload)
		}
	}
}

func (b *Bridge) enqueue(topic portal.Topic, payload interface{}) {
	select {
	case b.outbox <- outboundMessage{topic: topic, payload: payload}:
	default:
		b.logger.Warn("outbox full. dropping message.", zap.Any("topic", topic))
	}
}

// UpdateBlock remembers the material of the block at the given location.
func (b *Bridge) UpdateBlock(location maps.Location, material string) {
	b.blocksMutex.Lock()
	defer b.blocksMutex.Unlock()
	b.blocks[blockKeyOf(location)] = material
}

// BlockAt returns the last reported material at the location.
func (b *Bridge) BlockAt(location maps.Location) (string, bool) {
	b.blocksMutex.RLock()
	defer b.blocksMutex.RUnlock()
	material, ok := b.blocks[blockKeyOf(location)]
	return material, ok
}

func (b *Bridge) PlaceResource(tier maps.Tier, location maps.Location) {
	b.enqueue(topicPlaceResource, event.PlaceResourceEvent{
		Tier:     tier,
		Location: location,
	})
}

// ClearBlock requests the block to be set to air. The block is assumed to be
// air from now on.
func (b *Bridge) ClearBlock(location maps.Location) {
	b.UpdateBlock(location, materialAir)
	b.enqueue(topicClearBlock, event.ClearBlockEvent{Location: location})
}

func (b *Bridge) Teleport(player uuid.UUID, location maps.Location) {
	b.enqueue(topicTeleport, event.TeleportEvent{
		Player:   player,
		Location: location,
	})
}

func (b *Bridge) SetSpawnerLabel(location maps.Location, text string) {
	b.enqueue(topicSpawnerLabel, event.SpawnerLabelEvent{
		Location: location,
		Text:     text,
	})
}

func (b *Bridge) RosterChanged(teams []games.TeamView) {
	b.enqueue(topicRoster, event.RosterEvent{Teams: teams})
}

func (b *Bridge) PhaseChanged(snapshot games.Snapshot) {
	b.enqueue(topicPhase, event.PhaseEvent{Snapshot: snapshot})
}

func (b *Bridge) Countdown(phase games.MatchPhase, remaining int, matchID string) {
	e := event.CountdownEvent{
		Phase:     phase,
		Remaining: remaining,
	}
	if matchID != "" {
		e.MatchID = nulls.NewString(matchID)
	}
	b.enqueue(topicCountdown, e)
}

func (b *Bridge) Announce(announcement games.Announcement) {
	b.enqueue(topicAnnounce, event.AnnounceEvent{Announcement: announcement})
}

func (b *Bridge) Leaderboard(player uuid.UUID, entries []games.LeaderboardEntry) {
	b.enqueue(topicLeaderboard, event.LeaderboardEvent{
		Player:  player,
		Entries: entries,
	})
}

// Reject informs the game host that the request on the given topic failed.
func (b *Bridge) Reject(player uuid.NullUUID, request portal.Topic, err error) {
	b.enqueue(topicRejection, event.RejectionEvent{
		Player:  player,
		Request: string(request),
		Reason:  event.ErrorEventPayloadFromError(err),
	})
}

// DenyBedBreak requests the game host to restore a bed block that must not be
// broken.
func (b *Bridge) DenyBedBreak(player uuid.UUID, location maps.Location, err error) {
	b.enqueue(topicBedBreakDenied, event.BedBreakDeniedEvent{
		Player:   player,
		Location: location,
		Reason:   event.ErrorEventPayloadFromError(err),
	})
}

// StatsReset publishes the statistics of a player before they were reset.
func (b *Bridge) StatsReset(issuer uuid.NullUUID, previous games.LeaderboardEntry) {
	b.enqueue(topicStatsReset, event.StatsResetEvent{
		Issuer:   issuer,
		Previous: previous,
	})
}

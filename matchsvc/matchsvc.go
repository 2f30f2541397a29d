// Package matchsvc hosts a games.Match. It runs the simulation thread and
// connects the match with the game host via MQTT.
package matchsvc

import (
	"context"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/event"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/lefinal/bedwars-server/portal"
	"github.com/lefinal/bedwars-server/service"
	"go.uber.org/zap"
	"sync"
	"time"
)

// TickInterval is the real time between two game ticks.
const TickInterval = time.Second / games.GameTicksPerSecond

// Match is the part of games.Match that is driven by inbound events.
type Match interface {
	PlayerJoined(player uuid.UUID)
	PlayerQuit(player uuid.UUID)
	ReportElimination(victim uuid.UUID, killer uuid.NullUUID)
	BedAt(location maps.Location) (games.TeamKey, bool)
	ReportBedDestroyed(key games.TeamKey, breaker uuid.NullUUID) error
	SelectTeam(player uuid.UUID, key games.TeamKey) error
	CastMapVote(player uuid.UUID, mapName string) error
	CastModifierVote(player uuid.UUID, enabled bool) error
	RequestStart(force bool) error
	ForceMap(mapName string) error
	ShortenCountdown(seconds int) error
	PlaceTimedBlock(location maps.Location, lifetimeSeconds int) error
}

// Inbox queues work for the simulation thread.
type Inbox interface {
	Post(fn func())
	Drain() int
}

// Clock advances the game time by one tick.
type Clock interface {
	Advance()
}

// StatsResetter resets player statistics.
type StatsResetter interface {
	ResetStats(player uuid.UUID, done func(previous games.LeaderboardEntry, err error))
}

// Deps are the dependencies for NewMatchService.
type Deps struct {
	Match         Match
	Inbox         Inbox
	Clock         Clock
	Bridge        *Bridge
	StatsResetter StatsResetter
}

// matchService runs the simulation thread and handles inbound events.
type matchService struct {
	logger *zap.Logger
	portal portal.Portal
	match  Match
	inbox  Inbox
	clock  Clock
	bridge *Bridge
	stats  StatsResetter
	// tickInterval is the interval between two game ticks.
	tickInterval time.Duration
}

// NewMatchService creates a new service.Service ready to run. The Bridge is
// expected to be run separately.
func NewMatchService(logger *zap.Logger, portal portal.Portal, deps Deps) service.Service {
	return &matchService{
		logger:       logger,
		portal:       portal,
		match:        deps.Match,
		inbox:        deps.Inbox,
		clock:        deps.Clock,
		bridge:       deps.Bridge,
		stats:        deps.StatsResetter,
		tickInterval: TickInterval,
	}
}

// handle subscribes to the given topic and calls the handler for each received
// event until the context.Context is done.
func handle[T any](ctx context.Context, wg *sync.WaitGroup, p portal.Portal, topic portal.Topic, handler func(payload T)) {
	newsletter := portal.Subscribe[T](ctx, p, topic)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range newsletter.Receive {
			handler(e.Payload)
		}
	}()
}

// Run subscribes to all inbound topics and runs the simulation thread until the
// given context.Context is done.
func (s *matchService) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	handle(ctx, &wg, s.portal, topicPlayerJoin, s.handlePlayerJoin)
	handle(ctx, &wg, s.portal, topicPlayerQuit, s.handlePlayerQuit)
	handle(ctx, &wg, s.portal, topicPlayerDeath, s.handlePlayerDeath)
	handle(ctx, &wg, s.portal, topicBedBreak, s.handleBedBreak)
	handle(ctx, &wg, s.portal, topicBlockState, s.handleBlockState)
	handle(ctx, &wg, s.portal, topicBlockPlaced, s.handleBlockPlaced)
	handle(ctx, &wg, s.portal, topicTeamSelect, s.handleTeamSelect)
	handle(ctx, &wg, s.portal, topicVoteMap, s.handleVoteMap)
	handle(ctx, &wg, s.portal, topicVoteModifier, s.handleVoteModifier)
	handle(ctx, &wg, s.portal, topicAdminStart, s.handleAdminStart)
	handle(ctx, &wg, s.portal, topicAdminForceMap, s.handleAdminForceMap)
	handle(ctx, &wg, s.portal, topicAdminShortenCountdown, s.handleAdminShortenCountdown)
	handle(ctx, &wg, s.portal, topicAdminResetStats, s.handleAdminResetStats)
	s.logger.Info("simulation thread started", zap.Duration("tick_interval", s.tickInterval))
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case <-ticker.C:
			s.inbox.Drain()
			s.clock.Advance()
		}
	}
}

// reject logs the error and informs the game host if the requester is to
// blame.
func (s *matchService) reject(player uuid.NullUUID, request portal.Topic, err error) {
	if !errors.BlameUser(err) {
		errors.Log(s.logger, errors.Wrap(err, "handle request", errors.Details{"request": request}))
	} else {
		s.logger.Debug("request rejected", zap.Any("request", request), zap.Error(err))
	}
	s.bridge.Reject(player, request, err)
}

func (s *matchService) handlePlayerJoin(e event.PlayerJoinedEvent) {
	s.logger.Debug("player joined", zap.Any("player", e.Player), zap.String("name", e.Name.String))
	s.inbox.Post(func() {
		s.match.PlayerJoined(e.Player)
	})
}

func (s *matchService) handlePlayerQuit(e event.PlayerQuitEvent) {
	s.inbox.Post(func() {
		s.match.PlayerQuit(e.Player)
	})
}

func (s *matchService) handlePlayerDeath(e event.PlayerDeathEvent) {
	s.inbox.Post(func() {
		s.match.ReportElimination(e.Player, e.Killer)
	})
}

// handleBedBreak reports a destroyed bed if the broken block belongs to one.
// Breaking the own bed is denied.
func (s *matchService) handleBedBreak(e event.BedBreakEvent) {
	s.inbox.Post(func() {
		key, ok := s.match.BedAt(e.Location)
		if !ok {
			errors.Log(s.logger, errors.Error{
				Code:    errors.ErrNotFound,
				Kind:    errors.KindUnknownTeam,
				Message: "no team bed at broken block",
				Details: errors.Details{"player": e.Player, "location": e.Location},
			})
			return
		}
		err := s.match.ReportBedDestroyed(key, uuid.NullUUID{UUID: e.Player, Valid: true})
		if err == nil {
			return
		}
		if errors.Is(err, errors.KindOwnBed) {
			s.bridge.DenyBedBreak(e.Player, e.Location, err)
			return
		}
		s.reject(uuid.NullUUID{UUID: e.Player, Valid: true}, topicBedBreak, err)
	})
}

func (s *matchService) handleBlockState(e event.BlockStateEvent) {
	s.bridge.UpdateBlock(e.Location, e.Material)
}

// handleBlockPlaced updates the block cache and registers the block for
// removal after its lifetime.
func (s *matchService) handleBlockPlaced(e event.BlockPlacedEvent) {
	if e.Material != "" {
		s.bridge.UpdateBlock(e.Location, e.Material)
	}
	s.inbox.Post(func() {
		err := s.match.PlaceTimedBlock(e.Location, e.LifetimeSeconds)
		if err != nil {
			s.reject(uuid.NullUUID{UUID: e.Player, Valid: true}, topicBlockPlaced, err)
		}
	})
}

func (s *matchService) handleTeamSelect(e event.TeamSelectEvent) {
	s.inbox.Post(func() {
		err := s.match.SelectTeam(e.Player, e.Team)
		if err != nil {
			s.reject(uuid.NullUUID{UUID: e.Player, Valid: true}, topicTeamSelect, err)
		}
	})
}

// handleVoteMap casts the vote directly as votes are synchronized by the tally.
func (s *matchService) handleVoteMap(e event.MapVoteEvent) {
	err := s.match.CastMapVote(e.Player, e.Map)
	if err != nil {
		s.reject(uuid.NullUUID{UUID: e.Player, Valid: true}, topicVoteMap, err)
	}
}

func (s *matchService) handleVoteModifier(e event.ModifierVoteEvent) {
	err := s.match.CastModifierVote(e.Player, e.GoldEnabled)
	if err != nil {
		s.reject(uuid.NullUUID{UUID: e.Player, Valid: true}, topicVoteModifier, err)
	}
}

func (s *matchService) handleAdminStart(e event.AdminStartEvent) {
	s.inbox.Post(func() {
		err := s.match.RequestStart(e.Force)
		if err != nil {
			s.reject(e.Issuer, topicAdminStart, err)
			return
		}
		s.logger.Info("start requested", zap.Bool("force", e.Force), zap.Any("issuer", e.Issuer))
	})
}

func (s *matchService) handleAdminForceMap(e event.AdminForceMapEvent) {
	s.inbox.Post(func() {
		err := s.match.ForceMap(e.Map)
		if err != nil {
			s.reject(e.Issuer, topicAdminForceMap, err)
			return
		}
		s.logger.Info("map forced", zap.String("map", e.Map), zap.Any("issuer", e.Issuer))
	})
}

func (s *matchService) handleAdminShortenCountdown(e event.AdminShortenCountdownEvent) {
	s.inbox.Post(func() {
		err := s.match.ShortenCountdown(e.Seconds)
		if err != nil {
			s.reject(e.Issuer, topicAdminShortenCountdown, err)
		}
	})
}

// handleAdminResetStats resets the statistics of a player. The completion is
// posted to the inbox by the StatsResetter.
func (s *matchService) handleAdminResetStats(e event.AdminResetStatsEvent) {
	s.stats.ResetStats(e.Player, func(previous games.LeaderboardEntry, err error) {
		if err != nil {
			s.reject(e.Issuer, topicAdminResetStats, err)
			return
		}
		s.logger.Info("player stats reset", zap.Any("player", e.Player), zap.Any("issuer", e.Issuer))
		s.bridge.StatsReset(e.Issuer, previous)
	})
}

// terminator cancels the application context.
type terminator struct {
	logger *zap.Logger
	cancel context.CancelFunc
	once   sync.Once
}

// NewTerminator creates a games.Terminator that calls the given
// context.CancelFunc once.
func NewTerminator(logger *zap.Logger, cancel context.CancelFunc) games.Terminator {
	return &terminator{
		logger: logger,
		cancel: cancel,
	}
}

func (t *terminator) Terminate() {
	t.once.Do(func() {
		t.logger.Info("match resolved. shutting down.")
		t.cancel()
	})
}

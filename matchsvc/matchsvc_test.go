package matchsvc

import (
	"context"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/event"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/lefinal/bedwars-server/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
	"time"
)

const timeout = 3 * time.Second

// matchStub mocks Match.
type matchStub struct {
	mock.Mock
}

func (m *matchStub) PlayerJoined(player uuid.UUID) {
	m.Called(player)
}

func (m *matchStub) PlayerQuit(player uuid.UUID) {
	m.Called(player)
}

func (m *matchStub) ReportElimination(victim uuid.UUID, killer uuid.NullUUID) {
	m.Called(victim, killer)
}

func (m *matchStub) BedAt(location maps.Location) (games.TeamKey, bool) {
	args := m.Called(location)
	return args.Get(0).(games.TeamKey), args.Bool(1)
}

func (m *matchStub) ReportBedDestroyed(key games.TeamKey, breaker uuid.NullUUID) error {
	return m.Called(key, breaker).Error(0)
}

func (m *matchStub) SelectTeam(player uuid.UUID, key games.TeamKey) error {
	return m.Called(player, key).Error(0)
}

func (m *matchStub) CastMapVote(player uuid.UUID, mapName string) error {
	return m.Called(player, mapName).Error(0)
}

func (m *matchStub) CastModifierVote(player uuid.UUID, enabled bool) error {
	return m.Called(player, enabled).Error(0)
}

func (m *matchStub) RequestStart(force bool) error {
	return m.Called(force).Error(0)
}

func (m *matchStub) ForceMap(mapName string) error {
	return m.Called(mapName).Error(0)
}

func (m *matchStub) ShortenCountdown(seconds int) error {
	return m.Called(seconds).Error(0)
}

func (m *matchStub) PlaceTimedBlock(location maps.Location, lifetimeSeconds int) error {
	return m.Called(location, lifetimeSeconds).Error(0)
}

// statsResetterStub mocks StatsResetter.
type statsResetterStub struct {
	mock.Mock
}

func (s *statsResetterStub) ResetStats(player uuid.UUID, done func(previous games.LeaderboardEntry, err error)) {
	args := s.Called(player)
	done(args.Get(0).(games.LeaderboardEntry), args.Error(1))
}

// clockStub counts calls to Advance.
type clockStub struct {
	advanced atomic.Int32
}

func (c *clockStub) Advance() {
	c.advanced.Inc()
}

func TestNewMatchService(t *testing.T) {
	logger := zap.New(zapcore.NewNopCore())
	portalStub := &portal.Stub{}
	deps := Deps{
		Match:         &matchStub{},
		Inbox:         games.NewInbox(zap.New(zapcore.NewNopCore())),
		Clock:         &clockStub{},
		Bridge:        NewBridge(logger, portalStub, 1),
		StatsResetter: &statsResetterStub{},
	}
	s := NewMatchService(logger, portalStub, deps).(*matchService)
	require.NotNil(t, s, "should not be nil")
	assert.Equal(t, portalStub, s.portal, "should set correct portal")
	assert.Equal(t, deps.Match, s.match, "should set correct match")
	assert.Equal(t, deps.Bridge, s.bridge, "should set correct bridge")
	assert.Equal(t, TickInterval, s.tickInterval, "should use default tick interval")
	assert.Equal(t, 50*time.Millisecond, s.tickInterval, "should tick 20 times per second")
}

// matchServiceSuite tests matchService.
type matchServiceSuite struct {
	suite.Suite
	portal  *portal.Stub
	match   *matchStub
	stats   *statsResetterStub
	clock   *clockStub
	bridge  *Bridge
	service *matchService
	logs    *observer.ObservedLogs
}

func (suite *matchServiceSuite) SetupTest() {
	logger := zap.New(zapcore.NewNopCore())
	var core zapcore.Core
	core, suite.logs = observer.New(zap.DebugLevel)
	suite.portal = &portal.Stub{}
	suite.match = &matchStub{}
	suite.stats = &statsResetterStub{}
	suite.clock = &clockStub{}
	suite.bridge = NewBridge(logger, suite.portal, 16)
	suite.service = NewMatchService(zap.New(core), suite.portal, Deps{
		Match:         suite.match,
		Inbox:         games.NewInbox(zap.New(zapcore.NewNopCore())),
		Clock:         suite.clock,
		Bridge:        suite.bridge,
		StatsResetter: suite.stats,
	}).(*matchService)
	suite.service.tickInterval = time.Millisecond
}

// serve delivers the given payload on the topic. All other topics receive
// nothing.
func (suite *matchServiceSuite) serve(ctx context.Context, topic portal.Topic, payload interface{}) {
	suite.portal.On("Subscribe", mock.Anything, topic).
		Return(portal.NewServingNewsletter(ctx, payload)).Once()
	suite.portal.On("Subscribe", mock.Anything, mock.Anything).
		Return(portal.NewIdleNewsletter(ctx))
}

// run the service until the given context.Context is done and wait for it to
// return.
func (suite *matchServiceSuite) run(ctx context.Context) {
	err := suite.service.Run(ctx)
	suite.NoError(err, "should not fail")
}

// start runs the service in the background. The returned function cancels the
// context.Context and waits for the service to return.
func (suite *matchServiceSuite) start(ctx context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		suite.run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// awaitOutbound waits for a message on the given topic in the outbox of the
// bridge.
func (suite *matchServiceSuite) awaitOutbound(ctx context.Context, topic portal.Topic) outboundMessage {
	for {
		select {
		case <-ctx.Done():
			suite.FailNow("timeout", "should publish to %s", topic)
			return outboundMessage{}
		case message := <-suite.bridge.outbox:
			if message.topic == topic {
				return message
			}
		}
	}
}

func (suite *matchServiceSuite) TestAdvancesClock() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.portal.On("Subscribe", mock.Anything, mock.Anything).
		Return(portal.NewIdleNewsletter(timeout))
	stop := suite.start(timeout, cancel)
	suite.Eventually(func() bool {
		return suite.clock.advanced.Load() >= 3
	}, time.Second, time.Millisecond, "should advance clock")
	stop()
}

func (suite *matchServiceSuite) TestSubscribesAll() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	topics := []portal.Topic{
		topicPlayerJoin, topicPlayerQuit, topicPlayerDeath, topicBedBreak, topicBlockState, topicBlockPlaced,
		topicTeamSelect, topicVoteMap, topicVoteModifier, topicAdminStart, topicAdminForceMap, topicAdminShortenCountdown,
		topicAdminResetStats,
	}
	for _, topic := range topics {
		suite.portal.On("Subscribe", mock.Anything, topic).
			Return(portal.NewIdleNewsletter(timeout)).Once()
	}
	defer suite.portal.AssertExpectations(suite.T())
	cancel()
	suite.run(timeout)
}

func (suite *matchServiceSuite) TestPlayerJoin() {
	player := uuid.New()
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicPlayerJoin, event.PlayerJoinedEvent{Player: player})
	suite.match.On("PlayerJoined", player).Run(func(_ mock.Arguments) {
		cancel()
	}).Once()
	defer suite.match.AssertExpectations(suite.T())
	suite.run(timeout)
	suite.Equal(context.Canceled, timeout.Err(), "should not time out")
}

func (suite *matchServiceSuite) TestPlayerDeathWithKiller() {
	victim := uuid.New()
	killer := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicPlayerDeath, event.PlayerDeathEvent{Player: victim, Killer: killer})
	suite.match.On("ReportElimination", victim, killer).Run(func(_ mock.Arguments) {
		cancel()
	}).Once()
	defer suite.match.AssertExpectations(suite.T())
	suite.run(timeout)
	suite.Equal(context.Canceled, timeout.Err(), "should not time out")
}

func (suite *matchServiceSuite) TestBedBreakNoBed() {
	location := maps.Location{World: "world", X: 1, Y: 2, Z: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicBedBreak, event.BedBreakEvent{Player: uuid.New(), Location: location})
	suite.match.On("BedAt", location).Run(func(_ mock.Arguments) {
		cancel()
	}).Return(games.TeamKey(""), false).Once()
	defer suite.match.AssertExpectations(suite.T())
	suite.run(timeout)
	suite.match.AssertNotCalled(suite.T(), "ReportBedDestroyed", mock.Anything, mock.Anything)
	suite.Eventually(func() bool {
		return suite.logs.FilterMessage("no team bed at broken block").FilterLevelExact(zap.WarnLevel).Len() == 1
	}, time.Second, time.Millisecond, "should log unmatched bed break")
}

func (suite *matchServiceSuite) TestBedBreak() {
	player := uuid.New()
	location := maps.Location{World: "world", X: 1, Y: 2, Z: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicBedBreak, event.BedBreakEvent{Player: player, Location: location})
	suite.match.On("BedAt", location).Return(games.TeamKey("1red"), true).Once()
	suite.match.On("ReportBedDestroyed", games.TeamKey("1red"), uuid.NullUUID{UUID: player, Valid: true}).
		Run(func(_ mock.Arguments) {
			cancel()
		}).Return(nil).Once()
	defer suite.match.AssertExpectations(suite.T())
	suite.run(timeout)
	suite.Equal(context.Canceled, timeout.Err(), "should not time out")
}

func (suite *matchServiceSuite) TestBedBreakOwnBed() {
	player := uuid.New()
	location := maps.Location{World: "world", X: 1, Y: 2, Z: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicBedBreak, event.BedBreakEvent{Player: player, Location: location})
	suite.match.On("BedAt", location).Return(games.TeamKey("1red"), true).Once()
	suite.match.On("ReportBedDestroyed", mock.Anything, mock.Anything).
		Return(errors.NewRejectionError(errors.KindOwnBed, "own bed", nil)).Once()
	defer suite.start(timeout, cancel)()
	message := suite.awaitOutbound(timeout, topicBedBreakDenied)
	denied, ok := message.payload.(event.BedBreakDeniedEvent)
	suite.Require().True(ok, "should publish denial")
	suite.Equal(player, denied.Player, "should set player")
	suite.Equal(location, denied.Location, "should set location")
	suite.Equal(string(errors.KindOwnBed), denied.Reason.Kind, "should set reason")
}

func (suite *matchServiceSuite) TestBlockState() {
	location := maps.Location{World: "world", X: 1, Y: 2, Z: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicBlockState, event.BlockStateEvent{Location: location, Material: "RED_BED"})
	defer suite.start(timeout, cancel)()
	suite.Eventually(func() bool {
		material, ok := suite.bridge.BlockAt(location)
		return ok && material == "RED_BED"
	}, time.Second, time.Millisecond, "should update block cache")
}

func (suite *matchServiceSuite) TestBlockPlaced() {
	location := maps.Location{World: "world", X: 1, Y: 2, Z: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicBlockPlaced, event.BlockPlacedEvent{
		Player:          uuid.New(),
		Location:        location,
		Material:        "WHITE_WOOL",
		LifetimeSeconds: 7,
	})
	suite.match.On("PlaceTimedBlock", location, 7).Run(func(_ mock.Arguments) {
		cancel()
	}).Return(nil).Once()
	defer suite.match.AssertExpectations(suite.T())
	suite.run(timeout)
	suite.Equal(context.Canceled, timeout.Err(), "should not time out")
	material, ok := suite.bridge.BlockAt(location)
	suite.True(ok, "should cache block")
	suite.Equal("WHITE_WOOL", material, "should cache material")
}

func (suite *matchServiceSuite) TestBlockPlacedOutsideGame() {
	player := uuid.New()
	location := maps.Location{World: "world", X: 1, Y: 2, Z: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicBlockPlaced, event.BlockPlacedEvent{Player: player, Location: location})
	suite.match.On("PlaceTimedBlock", location, 0).
		Return(errors.NewMatchPhaseViolationError("place timed block", games.MatchPhaseLobby)).Once()
	defer suite.start(timeout, cancel)()
	message := suite.awaitOutbound(timeout, topicRejection)
	rejection, ok := message.payload.(event.RejectionEvent)
	suite.Require().True(ok, "should publish rejection")
	suite.Equal(uuid.NullUUID{UUID: player, Valid: true}, rejection.Player, "should set player")
	suite.Equal(string(topicBlockPlaced), rejection.Request, "should set request")
	suite.Equal(string(errors.KindMatchPhaseViolation), rejection.Reason.Kind, "should set reason")
}

func (suite *matchServiceSuite) TestVoteRejected() {
	player := uuid.New()
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicVoteMap, event.MapVoteEvent{Player: player, Map: "nowhere"})
	suite.match.On("CastMapVote", player, "nowhere").
		Return(errors.NewRejectionError(errors.KindUnknownMap, "unknown map", nil)).Once()
	defer suite.start(timeout, cancel)()
	message := suite.awaitOutbound(timeout, topicRejection)
	rejection, ok := message.payload.(event.RejectionEvent)
	suite.Require().True(ok, "should publish rejection")
	suite.Equal(uuid.NullUUID{UUID: player, Valid: true}, rejection.Player, "should set player")
	suite.Equal(string(topicVoteMap), rejection.Request, "should set request")
	suite.Equal(string(errors.KindUnknownMap), rejection.Reason.Kind, "should set reason")
}

func (suite *matchServiceSuite) TestAdminStartRejectedInternal() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicAdminStart, event.AdminStartEvent{Force: true})
	suite.match.On("RequestStart", true).Return(errors.NewInternalError("sad life", nil)).Once()
	defer suite.start(timeout, cancel)()
	message := suite.awaitOutbound(timeout, topicRejection)
	rejection, ok := message.payload.(event.RejectionEvent)
	suite.Require().True(ok, "should publish rejection")
	suite.Equal("internal server error", rejection.Reason.Message, "should hide internal error")
}

func (suite *matchServiceSuite) TestAdminShortenCountdown() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicAdminShortenCountdown, event.AdminShortenCountdownEvent{Seconds: 5})
	suite.match.On("ShortenCountdown", 5).Run(func(_ mock.Arguments) {
		cancel()
	}).Return(nil).Once()
	defer suite.match.AssertExpectations(suite.T())
	suite.run(timeout)
	suite.Equal(context.Canceled, timeout.Err(), "should not time out")
}

func (suite *matchServiceSuite) TestAdminResetStats() {
	player := uuid.New()
	issuer := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	previous := games.LeaderboardEntry{Player: player, Kills: 12, Wins: 3}
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.serve(timeout, topicAdminResetStats, event.AdminResetStatsEvent{Issuer: issuer, Player: player})
	suite.stats.On("ResetStats", player).Return(previous, nil).Once()
	defer suite.start(timeout, cancel)()
	message := suite.awaitOutbound(timeout, topicStatsReset)
	suite.Equal(event.StatsResetEvent{
		Issuer:   issuer,
		Previous: previous,
	}, message.payload, "should publish previous stats")
}

func TestMatchService(t *testing.T) {
	suite.Run(t, new(matchServiceSuite))
}

func TestTerminator(t *testing.T) {
	calls := atomic.NewInt32(0)
	terminator := NewTerminator(zap.New(zapcore.NewNopCore()), func() {
		calls.Inc()
	})
	terminator.Terminate()
	terminator.Terminate()
	assert.EqualValues(t, 1, calls.Load(), "should cancel only once")
}

package stats

import (
	"context"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/metrics"
	"github.com/lefinal/bedwars-server/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sync"
	"testing"
	"time"
)

const timeout = 5 * time.Second

// RecorderTestSuite tests Recorder.
type RecorderTestSuite struct {
	suite.Suite
	store    *StoreMock
	inbox    *games.Inbox
	recorder *Recorder
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func (suite *RecorderTestSuite) SetupTest() {
	suite.store = &StoreMock{}
	suite.inbox = games.NewInbox(zap.New(zapcore.NewNopCore()))
	suite.recorder = NewRecorder(zap.New(zapcore.NewNopCore()), suite.store, suite.inbox, 8)
	suite.ctx, suite.cancel = context.WithTimeout(context.Background(), timeout)
}

func (suite *RecorderTestSuite) TearDownTest() {
	suite.cancel()
	suite.wg.Wait()
}

func (suite *RecorderTestSuite) run() {
	suite.wg.Add(1)
	go func() {
		defer suite.wg.Done()
		suite.NoError(suite.recorder.Run(suite.ctx))
	}()
}

// waitForInbox waits until the inbox holds at least one function and drains
// it.
func (suite *RecorderTestSuite) waitForInbox() {
	suite.Require().Eventually(func() bool {
		return suite.inbox.Len() > 0
	}, timeout, 10*time.Millisecond, "should post completion")
	suite.inbox.Drain()
}

func (suite *RecorderTestSuite) TestRecordEvent() {
	player := uuid.New()
	done := make(chan struct{})
	suite.store.On("IncrementPlayerStat", mock.Anything, player, store.StatColumnBedsDestroyed, 1).
		Return(nil).Run(func(_ mock.Arguments) { close(done) })
	suite.run()
	suite.recorder.RecordEvent(player, games.StatBedsDestroyed, 1)
	select {
	case <-suite.ctx.Done():
		suite.Fail("timeout", "timeout while waiting for store call")
	case <-done:
	}
}

func (suite *RecorderTestSuite) TestFailureNotRetried() {
	player := uuid.New()
	called := make(chan struct{}, 4)
	suite.store.On("IncrementPlayerStat", mock.Anything, player, store.StatColumnKills, 1).
		Return(errors.NewInternalError("db down", nil)).Run(func(_ mock.Arguments) { called <- struct{}{} })
	failuresBefore := testutil.ToFloat64(metrics.StatsOperations.WithLabelValues("failure"))
	suite.run()
	suite.recorder.RecordEvent(player, games.StatKill, 1)
	select {
	case <-suite.ctx.Done():
		suite.Fail("timeout", "timeout while waiting for store call")
		return
	case <-called:
	}
	suite.Eventually(func() bool {
		return testutil.ToFloat64(metrics.StatsOperations.WithLabelValues("failure")) == failuresBefore+1
	}, timeout, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	suite.Len(called, 0, "should not retry")
}

func (suite *RecorderTestSuite) TestEnsureProfileCreatesMissing() {
	player := uuid.New()
	done := make(chan struct{})
	suite.store.On("PlayerStatsExist", mock.Anything, player).Return(false, nil)
	suite.store.On("CreateDefaultPlayerStats", mock.Anything, player).Return(nil).
		Run(func(_ mock.Arguments) { close(done) })
	suite.run()
	suite.recorder.EnsureProfile(player)
	select {
	case <-suite.ctx.Done():
		suite.Fail("timeout", "timeout while waiting for create")
	case <-done:
	}
}

func (suite *RecorderTestSuite) TestEnsureProfileKeepsExisting() {
	player := uuid.New()
	done := make(chan struct{})
	suite.store.On("PlayerStatsExist", mock.Anything, player).Return(true, nil).
		Run(func(_ mock.Arguments) { close(done) })
	suite.run()
	suite.recorder.EnsureProfile(player)
	select {
	case <-suite.ctx.Done():
		suite.Fail("timeout", "timeout while waiting for lookup")
	case <-done:
	}
	suite.cancel()
	suite.wg.Wait()
	suite.store.AssertNotCalled(suite.T(), "CreateDefaultPlayerStats", mock.Anything, mock.Anything)
}

func (suite *RecorderTestSuite) TestPlacementRankPostedToInbox() {
	player := uuid.New()
	suite.store.On("PlayerPlacement", mock.Anything, player).Return(3, nil)
	suite.run()
	rank := 0
	suite.recorder.PlacementRank(player, func(r int, err error) {
		suite.NoError(err)
		rank = r
	})
	suite.waitForInbox()
	suite.Equal(3, rank)
}

func (suite *RecorderTestSuite) TestTopPostedToInbox() {
	first := uuid.New()
	suite.store.On("TopPlayers", mock.Anything, 2).Return([]store.PlayerStats{
		{Player: first, Wins: 9, Kills: 20},
	}, nil)
	suite.run()
	var entries []games.LeaderboardEntry
	suite.recorder.Top(2, func(e []games.LeaderboardEntry, err error) {
		suite.NoError(err)
		entries = e
	})
	suite.waitForInbox()
	suite.Require().Len(entries, 1)
	suite.Equal(first, entries[0].Player)
	suite.Equal(9, entries[0].Wins)
}

func (suite *RecorderTestSuite) TestResetStats() {
	player := uuid.New()
	suite.store.On("ResetPlayerStats", mock.Anything, player).Return(store.PlayerStats{Player: player, Deaths: 4}, nil)
	suite.run()
	var previous games.LeaderboardEntry
	suite.recorder.ResetStats(player, func(p games.LeaderboardEntry, err error) {
		suite.NoError(err)
		previous = p
	})
	suite.waitForInbox()
	suite.Equal(4, previous.Deaths)
}

func (suite *RecorderTestSuite) TestFullQueueDrops() {
	// Not running, so that the queue fills up.
	droppedBefore := testutil.ToFloat64(metrics.StatsOperations.WithLabelValues("dropped"))
	for i := 0; i < 10; i++ {
		suite.recorder.RecordEvent(uuid.New(), games.StatWin, 1)
	}
	suite.Equal(droppedBefore+2, testutil.ToFloat64(metrics.StatsOperations.WithLabelValues("dropped")))
}

func TestRecorder(t *testing.T) {
	suite.Run(t, new(RecorderTestSuite))
}

package games

import (
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/stretchr/testify/mock"
)

// WorldMock mocks World.
type WorldMock struct {
	mock.Mock
}

func (w *WorldMock) PlaceResource(tier maps.Tier, location maps.Location) {
	w.Called(tier, location)
}

func (w *WorldMock) ClearBlock(location maps.Location) {
	w.Called(location)
}

func (w *WorldMock) Teleport(player uuid.UUID, location maps.Location) {
	w.Called(player, location)
}

func (w *WorldMock) BlockAt(location maps.Location) (string, bool) {
	args := w.Called(location)
	return args.String(0), args.Bool(1)
}

func (w *WorldMock) SetSpawnerLabel(location maps.Location, text string) {
	w.Called(location, text)
}

// StatsRecorderMock mocks StatsRecorder. Callbacks are not called unless
// configured via mock.Call.Run.
type StatsRecorderMock struct {
	mock.Mock
}

func (s *StatsRecorderMock) RecordEvent(player uuid.UUID, kind StatKind, delta int) {
	s.Called(player, kind, delta)
}

func (s *StatsRecorderMock) EnsureProfile(player uuid.UUID) {
	s.Called(player)
}

func (s *StatsRecorderMock) PlacementRank(player uuid.UUID, done func(rank int, err error)) {
	s.Called(player, done)
}

func (s *StatsRecorderMock) Top(n int, done func(entries []LeaderboardEntry, err error)) {
	s.Called(n, done)
}

// PresenterMock mocks Presenter.
type PresenterMock struct {
	mock.Mock
}

func (p *PresenterMock) RosterChanged(teams []TeamView) {
	p.Called(teams)
}

func (p *PresenterMock) PhaseChanged(snapshot Snapshot) {
	p.Called(snapshot)
}

func (p *PresenterMock) Countdown(phase MatchPhase, remaining int, matchID string) {
	p.Called(phase, remaining, matchID)
}

func (p *PresenterMock) Announce(announcement Announcement) {
	p.Called(announcement)
}

func (p *PresenterMock) Leaderboard(player uuid.UUID, entries []LeaderboardEntry) {
	p.Called(player, entries)
}

// TerminatorMock mocks Terminator.
type TerminatorMock struct {
	mock.Mock
}

func (t *TerminatorMock) Terminate() {
	t.Called()
}

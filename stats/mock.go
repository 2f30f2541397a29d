package stats

import (
	"context"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/store"
	"github.com/stretchr/testify/mock"
)

// StoreMock mocks Store.
type StoreMock struct {
	mock.Mock
}

func (s *StoreMock) PlayerStatsExist(ctx context.Context, player uuid.UUID) (bool, error) {
	args := s.Called(ctx, player)
	return args.Bool(0), args.Error(1)
}

func (s *StoreMock) CreateDefaultPlayerStats(ctx context.Context, player uuid.UUID) error {
	return s.Called(ctx, player).Error(0)
}

func (s *StoreMock) IncrementPlayerStat(ctx context.Context, player uuid.UUID, column store.StatColumn, delta int) error {
	return s.Called(ctx, player, column, delta).Error(0)
}

func (s *StoreMock) PlayerPlacement(ctx context.Context, player uuid.UUID) (int, error) {
	args := s.Called(ctx, player)
	return args.Int(0), args.Error(1)
}

func (s *StoreMock) TopPlayers(ctx context.Context, n int) ([]store.PlayerStats, error) {
	args := s.Called(ctx, n)
	var top []store.PlayerStats
	top, _ = args.Get(0).([]store.PlayerStats)
	return top, args.Error(1)
}

func (s *StoreMock) ResetPlayerStats(ctx context.Context, player uuid.UUID) (store.PlayerStats, error) {
	args := s.Called(ctx, player)
	return args.Get(0).(store.PlayerStats), args.Error(1)
}

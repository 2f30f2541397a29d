package store

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"testing"
)

func newQueryMall() *Mall {
	return &Mall{
		logger:  zap.New(zapcore.NewNopCore()),
		dialect: goqu.Dialect("postgres"),
	}
}

func TestMall_incrementPlayerStatQuery(t *testing.T) {
	m := newQueryMall()
	player := uuid.MustParse("5c8a1cbb-6f2d-4a4c-9b3e-0a6b4a1f8c11")
	q, err := m.incrementPlayerStatQuery(player, StatColumnWins, 1)
	require.NoError(t, err, "should build query")
	assert.Contains(t, q, `INSERT INTO "bedwars_players"`)
	assert.Contains(t, q, player.String())
	assert.Contains(t, q, `ON CONFLICT (uuid) DO UPDATE SET`)
	assert.Contains(t, q, `"bedwars_players"."wins" + "excluded"."wins"`)
}

func TestMall_incrementPlayerStatQueryUnknownColumn(t *testing.T) {
	m := newQueryMall()
	_, err := m.incrementPlayerStatQuery(uuid.New(), "password", 1)
	assert.Error(t, err, "should reject unknown column")
}

func TestMall_placementQuery(t *testing.T) {
	m := newQueryMall()
	player := uuid.New()
	q, err := m.placementQuery(player)
	require.NoError(t, err, "should build query")
	assert.Contains(t, q, "COUNT(*) + 1")
	assert.Contains(t, q, `"wins" > (SELECT "wins" FROM "bedwars_players"`)
	assert.Contains(t, q, player.String())
}

func TestMall_topPlayersQuery(t *testing.T) {
	m := newQueryMall()
	q, err := m.topPlayersQuery(10)
	require.NoError(t, err, "should build query")
	assert.Contains(t, q, `ORDER BY "wins" DESC, "kills" DESC, "uuid" ASC LIMIT 10`)
}

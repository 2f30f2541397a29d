package store

import (
	"context"
	"fmt"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
)

// playersTable holds the statistics of all players.
const playersTable = "bedwars_players"

// StatColumn is a counter column of PlayerStats.
type StatColumn string

const (
	StatColumnKills         StatColumn = "kills"
	StatColumnDeaths        StatColumn = "deaths"
	StatColumnWins          StatColumn = "wins"
	StatColumnGamesPlayed   StatColumn = "games_played"
	StatColumnBedsDestroyed StatColumn = "beds_destroyed"
)

// statColumns holds all valid StatColumn values.
var statColumns = map[StatColumn]struct{}{
	StatColumnKills:         {},
	StatColumnDeaths:        {},
	StatColumnWins:          {},
	StatColumnGamesPlayed:   {},
	StatColumnBedsDestroyed: {},
}

// PlayerStats holds the persisted statistics of a player.
type PlayerStats struct {
	Player        uuid.UUID
	Kills         int
	Deaths        int
	Wins          int
	GamesPlayed   int
	BedsDestroyed int
}

// playerStatsSelect returns the select expressions for scanning PlayerStats
// with scanPlayerStats.
func playerStatsSelect() []interface{} {
	return []interface{}{
		goqu.C("uuid"),
		goqu.C(string(StatColumnKills)),
		goqu.C(string(StatColumnDeaths)),
		goqu.C(string(StatColumnWins)),
		goqu.C(string(StatColumnGamesPlayed)),
		goqu.C(string(StatColumnBedsDestroyed)),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayerStats(row rowScanner, q string) (PlayerStats, error) {
	var stats PlayerStats
	var playerStr string
	err := row.Scan(&playerStr,
		&stats.Kills,
		&stats.Deaths,
		&stats.Wins,
		&stats.GamesPlayed,
		&stats.BedsDestroyed)
	if err != nil {
		return PlayerStats{}, errors.NewScanDBRowError(err, "scan player stats", q)
	}
	stats.Player, err = uuid.Parse(playerStr)
	if err != nil {
		return PlayerStats{}, errors.NewInternalErrorFromErr(err, "parse player uuid",
			errors.Details{"was": playerStr})
	}
	return stats, nil
}

// PlayerStatsExist checks whether statistics for the given player exist.
func (m *Mall) PlayerStatsExist(ctx context.Context, player uuid.UUID) (bool, error) {
	q, _, err := m.dialect.From(playersTable).
		Select(goqu.COUNT("*")).
		Where(goqu.C("uuid").Eq(player.String())).ToSQL()
	if err != nil {
		return false, errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	var count int
	err = m.db.QueryRow(ctx, q).Scan(&count)
	if err != nil {
		return false, errors.NewExecQueryError(err, "query player stats count", q)
	}
	return count > 0, nil
}

// CreateDefaultPlayerStats creates zeroed statistics for the given player. If
// they already exist, nothing changes.
func (m *Mall) CreateDefaultPlayerStats(ctx context.Context, player uuid.UUID) error {
	q, _, err := m.dialect.Insert(playersTable).Rows(goqu.Record{
		"uuid":                          player.String(),
		string(StatColumnKills):         0,
		string(StatColumnDeaths):        0,
		string(StatColumnWins):          0,
		string(StatColumnGamesPlayed):   0,
		string(StatColumnBedsDestroyed): 0,
	}).OnConflict(goqu.DoNothing()).ToSQL()
	if err != nil {
		return errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	_, err = m.db.Exec(ctx, q)
	if err != nil {
		return errors.NewExecQueryError(err, "exec create query", q)
	}
	return nil
}

// incrementPlayerStatQuery builds the upsert query for IncrementPlayerStat.
func (m *Mall) incrementPlayerStatQuery(player uuid.UUID, column StatColumn, delta int) (string, error) {
	if _, ok := statColumns[column]; !ok {
		return "", errors.NewInternalError(fmt.Sprintf("unknown stat column %s", column),
			errors.Details{"column": column})
	}
	q, _, err := m.dialect.Insert(playersTable).Rows(goqu.Record{
		"uuid":         player.String(),
		string(column): delta,
	}).OnConflict(goqu.DoUpdate("uuid", goqu.Record{
		string(column): goqu.L("? + ?",
			goqu.I(fmt.Sprintf("%s.%s", playersTable, column)),
			goqu.I(fmt.Sprintf("excluded.%s", column))),
	})).ToSQL()
	if err != nil {
		return "", errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	return q, nil
}

// IncrementPlayerStat adds the given delta to the statistic of the player.
// Missing statistics are created.
func (m *Mall) IncrementPlayerStat(ctx context.Context, player uuid.UUID, column StatColumn, delta int) error {
	q, err := m.incrementPlayerStatQuery(player, column, delta)
	if err != nil {
		return errors.Wrap(err, "increment player stat query", nil)
	}
	_, err = m.db.Exec(ctx, q)
	if err != nil {
		return errors.NewExecQueryError(err, "exec increment query", q)
	}
	return nil
}

// placementQuery builds the query for PlayerPlacement.
func (m *Mall) placementQuery(player uuid.UUID) (string, error) {
	playerWins := m.dialect.From(playersTable).
		Select(goqu.C(string(StatColumnWins))).
		Where(goqu.C("uuid").Eq(player.String()))
	q, _, err := m.dialect.From(playersTable).
		Select(goqu.L("COUNT(*) + 1")).
		Where(goqu.C(string(StatColumnWins)).Gt(playerWins)).ToSQL()
	if err != nil {
		return "", errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	return q, nil
}

// PlayerPlacement returns the leaderboard placement of the given player by
// wins, starting with 1.
func (m *Mall) PlayerPlacement(ctx context.Context, player uuid.UUID) (int, error) {
	exists, err := m.PlayerStatsExist(ctx, player)
	if err != nil {
		return 0, errors.Wrap(err, "check player stats exist", nil)
	}
	if !exists {
		return 0, errors.NewResourceNotFoundError("player stats not found", errors.Details{"player": player})
	}
	q, err := m.placementQuery(player)
	if err != nil {
		return 0, errors.Wrap(err, "placement query", nil)
	}
	var placement int
	err = m.db.QueryRow(ctx, q).Scan(&placement)
	if err != nil {
		return 0, errors.NewExecQueryError(err, "query placement", q)
	}
	return placement, nil
}

// PlayerStatsByID retrieves the statistics of the given player.
func (m *Mall) PlayerStatsByID(ctx context.Context, player uuid.UUID) (PlayerStats, error) {
	q, _, err := m.dialect.From(playersTable).
		Select(playerStatsSelect()...).
		Where(goqu.C("uuid").Eq(player.String())).ToSQL()
	if err != nil {
		return PlayerStats{}, errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return PlayerStats{}, errors.NewExecQueryError(err, "query db", q)
	}
	defer rows.Close()
	if !rows.Next() {
		return PlayerStats{}, errors.NewResourceNotFoundError("player stats not found",
			errors.Details{"player": player})
	}
	return scanPlayerStats(rows, q)
}

// topPlayersQuery builds the query for TopPlayers.
func (m *Mall) topPlayersQuery(n int) (string, error) {
	q, _, err := m.dialect.From(playersTable).
		Select(playerStatsSelect()...).
		Order(goqu.C(string(StatColumnWins)).Desc(), goqu.C(string(StatColumnKills)).Desc(), goqu.C("uuid").Asc()).
		Limit(uint(n)).ToSQL()
	if err != nil {
		return "", errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	return q, nil
}

// TopPlayers retrieves the statistics of the best n players by wins.
func (m *Mall) TopPlayers(ctx context.Context, n int) ([]PlayerStats, error) {
	if n <= 0 {
		return []PlayerStats{}, nil
	}
	q, err := m.topPlayersQuery(n)
	if err != nil {
		return nil, errors.Wrap(err, "top players query", nil)
	}
	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return nil, errors.NewExecQueryError(err, "query db", q)
	}
	defer rows.Close()
	top := make([]PlayerStats, 0, n)
	for rows.Next() {
		stats, err := scanPlayerStats(rows, q)
		if err != nil {
			return nil, errors.Wrap(err, "scan top player", nil)
		}
		top = append(top, stats)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewExecQueryError(err, "read rows", q)
	}
	return top, nil
}

// ResetPlayerStats sets all statistics of the given player to zero in a single
// transaction and returns the previous values.
func (m *Mall) ResetPlayerStats(ctx context.Context, player uuid.UUID) (PlayerStats, error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return PlayerStats{}, errors.NewDBTxBeginError(err)
	}
	defer m.rollbackTx(ctx, tx, "reset player stats")
	q, _, err := m.dialect.From(playersTable).
		Select(playerStatsSelect()...).
		Where(goqu.C("uuid").Eq(player.String())).
		ForUpdate(exp.Wait).ToSQL()
	if err != nil {
		return PlayerStats{}, errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	previous, err := scanPlayerStats(tx.QueryRow(ctx, q), q)
	if err != nil {
		return PlayerStats{}, errors.Wrap(err, "previous player stats", errors.Details{"player": player})
	}
	q, _, err = m.dialect.Update(playersTable).Set(goqu.Record{
		string(StatColumnKills):         0,
		string(StatColumnDeaths):        0,
		string(StatColumnWins):          0,
		string(StatColumnGamesPlayed):   0,
		string(StatColumnBedsDestroyed): 0,
	}).Where(goqu.C("uuid").Eq(player.String())).ToSQL()
	if err != nil {
		return PlayerStats{}, errors.NewInternalErrorFromErr(err, "update query to sql", nil)
	}
	_, err = tx.Exec(ctx, q)
	if err != nil {
		return PlayerStats{}, errors.NewExecQueryError(err, "exec reset query", q)
	}
	err = tx.Commit(ctx)
	if err != nil {
		return PlayerStats{}, errors.NewDBTxCommitError(err)
	}
	return previous, nil
}

package app

import (
	"context"
	nativeerrors "errors"
	"fmt"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lefinal/bedwars-server/embedded"
	"github.com/lefinal/bedwars-server/errors"
	"go.uber.org/zap"
)

// defaultMaxDBConnections is the maximum number of database connections.
const defaultMaxDBConnections = 16

// keyValTable holds server-wide key-value pairs like the database version.
const keyValTable = "bedwars"

// dbVersionKey is the key in keyValTable for the database version.
const dbVersionKey = "db-version"

// pgErrUndefinedTable is the PostgreSQL error code for missing relations.
const pgErrUndefinedTable = "42P01"

// dbVersion is used for determining the current database version. This is saved
// in keyValTable when properly set up. If the version does not exist, the
// database needs to be initialized. If it is and the latest version is greater,
// migrations can be performed.
type dbVersion string

// dbVersionZero is used when no database version could be found, and therefore
// we conclude that it has not been initialized yet.
const dbVersionZero dbVersion = "0"

// dbMigration is used for performing and checking database migrations.
type dbMigration struct {
	version dbVersion
	up      string
}

// dbMigrations are the sql migrations in an ordered (!) list. The order is used
// to determine which migrations need to be done when the current database
// version is not the latest one.
var dbMigrations = []dbMigration{
	{
		version: "1.0",
		up:      embedded.DBMigration1x0,
	},
}

var dialect = goqu.Dialect("postgres")

// connectDB connects to the database with the given connection string, performs
// migrations and returns the connection pool.
func connectDB(ctx context.Context, logger *zap.Logger, connectionStr string, maxDBConnections int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connectionStr)
	if err != nil {
		return nil, errors.FromErr("parse db connection string", errors.ErrFatal, err, nil)
	}
	poolConfig.MaxConns = maxDBConnections
	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.FromErr("connect to database", errors.ErrFatal, err, nil)
	}
	err = testDBConnection(ctx, db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "test db connection", nil)
	}
	err = performDBMigrations(ctx, logger, db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "perform db migrations", nil)
	}
	return db, nil
}

// testDBConnection tests the database connection by simply querying 1.
func testDBConnection(ctx context.Context, db *pgxpool.Pool) error {
	q, _, err := goqu.Select(goqu.V(1)).ToSQL()
	if err != nil {
		return errors.NewInternalErrorFromErr(err, "test query to sql", nil)
	}
	var got int
	err = db.QueryRow(ctx, q).Scan(&got)
	if err != nil {
		return errors.NewScanDBRowError(err, "test query failed", q)
	}
	if got != 1 {
		return errors.Error{
			Code:    errors.ErrFatal,
			Message: fmt.Sprintf("test db connection: expected 1 as result but got %d", got),
			Details: errors.Details{"got": got},
		}
	}
	return nil
}

// performDBMigrations performs all needed database migrations according to the
// (un)set database version in one transaction.
func performDBMigrations(ctx context.Context, logger *zap.Logger, db *pgxpool.Pool) error {
	currentVersion, err := retrieveCurrentDBVersion(ctx, db)
	if err != nil {
		return errors.Wrap(err, "retrieve current db version", nil)
	}
	logger.Info("current database version", zap.Any("version", currentVersion))
	migrationsToDo, err := getDBMigrationsToDo(currentVersion)
	if err != nil {
		return errors.Wrap(err, "get db migrations to do", nil)
	}
	if len(migrationsToDo) == 0 {
		return nil
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return errors.NewDBTxBeginError(err)
	}
	defer rollbackTx(ctx, logger, tx, "database migration failed")
	var newVersion dbVersion
	for i, migration := range migrationsToDo {
		logger.Info(fmt.Sprintf("performing database migration %d/%d...", i+1, len(migrationsToDo)),
			zap.Any("target_version", migration.version))
		_, err = tx.Exec(ctx, migration.up)
		if err != nil {
			return errors.NewExecQueryError(err, fmt.Sprintf("migrate to %s", migration.version), migration.up)
		}
		newVersion = migration.version
	}
	q, err := updateDBVersionQuery(currentVersion, newVersion)
	if err != nil {
		return errors.Wrap(err, "update db version query", nil)
	}
	_, err = tx.Exec(ctx, q)
	if err != nil {
		return errors.NewExecQueryError(err, "update db version", q)
	}
	err = tx.Commit(ctx)
	if err != nil {
		return errors.NewDBTxCommitError(err)
	}
	logger.Info("database migrated", zap.Any("version", newVersion))
	return nil
}

// updateDBVersionQuery builds the query for setting the database version.
func updateDBVersionQuery(currentVersion dbVersion, newVersion dbVersion) (string, error) {
	var q string
	var err error
	if currentVersion == dbVersionZero {
		q, _, err = dialect.Insert(goqu.T(keyValTable)).Rows(goqu.Record{
			"key":   dbVersionKey,
			"value": newVersion,
		}).ToSQL()
	} else {
		q, _, err = dialect.Update(goqu.T(keyValTable)).
			Set(goqu.Record{"value": newVersion}).
			Where(goqu.C("key").Eq(dbVersionKey)).ToSQL()
	}
	if err != nil {
		return "", errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	return q, nil
}

// getDBMigrationsToDo retrieves all database migrations that need to be
// performed. If the version is dbVersionZero, it will return all migrations. If
// the version is unknown, an error will be returned.
func getDBMigrationsToDo(currentVersion dbVersion) ([]dbMigration, error) {
	if currentVersion == dbVersionZero {
		return dbMigrations, nil
	}
	found := false
	migrationsToDo := make([]dbMigration, 0)
	for _, migration := range dbMigrations {
		if migration.version == currentVersion {
			if found {
				return nil, errors.NewInternalError(fmt.Sprintf("duplicate database version %v in available migrations",
					currentVersion), errors.Details{"version": currentVersion})
			}
			found = true
			continue
		}
		if found {
			migrationsToDo = append(migrationsToDo, migration)
		}
	}
	if !found {
		return nil, errors.NewResourceNotFoundError(fmt.Sprintf("no database version found matching %v", currentVersion),
			errors.Details{"version": currentVersion})
	}
	return migrationsToDo, nil
}

// retrieveCurrentDBVersion retrieves the current dbVersion from the given
// database. If no version could be found, dbVersionZero will be returned.
func retrieveCurrentDBVersion(ctx context.Context, db *pgxpool.Pool) (dbVersion, error) {
	q, _, err := dialect.From(goqu.T(keyValTable)).
		Select(goqu.C("value")).
		Where(goqu.C("key").Eq(dbVersionKey)).ToSQL()
	if err != nil {
		return "", errors.NewInternalErrorFromErr(err, "query to sql", nil)
	}
	var version string
	err = db.QueryRow(ctx, q).Scan(&version)
	if err != nil {
		if isUndefinedTableErr(err) || nativeerrors.Is(err, pgx.ErrNoRows) {
			return dbVersionZero, nil
		}
		return "", errors.NewScanDBRowError(err, "retrieve db version", q)
	}
	return dbVersion(version), nil
}

// isUndefinedTableErr checks whether the error was caused by a missing relation.
func isUndefinedTableErr(err error) bool {
	var pgErr *pgconn.PgError
	return nativeerrors.As(err, &pgErr) && pgErr.Code == pgErrUndefinedTable
}

// rollbackTx rolls back the given pgx.Tx if not already committed.
func rollbackTx(ctx context.Context, logger *zap.Logger, tx pgx.Tx, reason string) {
	err := tx.Rollback(ctx)
	if err != nil && !nativeerrors.Is(err, pgx.ErrTxClosed) {
		errors.Log(logger, errors.Error{
			Code:    errors.ErrInternal,
			Message: "rollback tx",
			Err:     err,
			Details: errors.Details{"rollbackReason": reason},
		})
	}
}

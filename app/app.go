package app

import (
	"context"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/logging"
	"github.com/lefinal/bedwars-server/logpublishsvc"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/lefinal/bedwars-server/matchsvc"
	"github.com/lefinal/bedwars-server/portal"
	"github.com/lefinal/bedwars-server/stats"
	"github.com/lefinal/bedwars-server/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"math/rand"
	"os"
	"time"
)

// publishLogBufferSize is the number of log entries that may be queued for
// publishing.
const publishLogBufferSize = 256

// App is a complete BedWars server instance hosting one match.
type App struct {
	// config is the main config used for the App.
	config Config
	logger *zap.Logger
	// publishLog receives log entries to publish.
	publishLog <-chan logging.LogEntry
}

// NewApp creates a new App with the given Config. Start it with App.Boot.
func NewApp(config Config) *App {
	return &App{
		config: config,
	}
}

// Boot sets everything up based on the set config and runs until the given
// context.Context is done or the match has been resolved.
func (app *App) Boot(ctx context.Context) error {
	err := ValidateConfig(app.config)
	if err != nil {
		return errors.Error{
			Code:    errors.ErrFatal,
			Err:     err,
			Message: "invalid config",
		}
	}
	app.logger, app.publishLog = app.setupLogging(app.config.Log)
	defer func() {
		_ = app.logger.Sync()
	}()
	err = app.boot(ctx)
	if err != nil {
		err = errors.Wrap(err, "boot", nil)
		errors.Log(app.logger, err)
		return err
	}
	return nil
}

func (app *App) boot(ctx context.Context) error {
	appCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()
	logger := app.logger
	logger.Warn("booting up", zap.String("server_id", app.config.ServerID))
	playType, err := games.ParsePlayType(app.config.PlayType)
	if err != nil {
		return errors.Wrap(err, "parse play type", nil)
	}
	catalog, err := maps.LoadCatalog(logger.Named("maps"), app.config.MapsDir, playType.String())
	if err != nil {
		return errors.Wrap(err, "load map catalog", nil)
	}
	if catalog.Len() == 0 {
		return errors.Error{
			Code:    errors.ErrFatal,
			Message: "no maps available for play type",
			Details: errors.Details{"dir": app.config.MapsDir, "play_type": playType.String()},
		}
	}
	// Connect database.
	logger.Debug("connecting to database")
	db, err := connectDB(ctx, logger.Named("db"), app.config.DBConn, defaultMaxDBConnections)
	if err != nil {
		return errors.Wrap(err, "connect database", nil)
	}
	defer db.Close()
	mall := store.NewMall(logger.Named("store"), db)
	logger.Debug("database ready")
	portalBase, err := portal.NewBase(logger.Named("portal"), portal.Config{
		MQTTAddr: app.config.MQTTAddr,
		ServerID: app.config.ServerID,
	})
	if err != nil {
		return errors.Wrap(err, "new portal base", nil)
	}
	// Set up the match.
	statsQueueSize := stats.DefaultQueueSize
	if app.config.StatsQueueSize.Valid {
		statsQueueSize = app.config.StatsQueueSize.Int
	}
	scheduler := games.NewScheduler(logger.Named("scheduler"))
	inbox := games.NewInbox(logger.Named("inbox"))
	recorder := stats.NewRecorder(logger.Named("stats"), mall, inbox, statsQueueSize)
	bridge := matchsvc.NewBridge(logger.Named("bridge"), portalBase.NewPortal("match-bridge"), matchsvc.DefaultOutboxSize)
	match := games.NewMatch(logger.Named("match"), playType, scheduler, games.Collaborators{
		Roster:     games.NewRosterForPlayType(playType, nil),
		Votes:      games.NewVoteTally(catalog),
		Catalog:    catalog,
		World:      bridge,
		Stats:      recorder,
		Presenter:  bridge,
		Terminator: matchsvc.NewTerminator(logger.Named("terminator"), shutdown),
	}, rand.New(rand.NewSource(time.Now().UnixNano())))
	if app.config.ForcedMap.Valid {
		err = match.ForceMap(app.config.ForcedMap.String)
		if err != nil {
			return errors.Wrap(err, "force map from config", errors.Details{"map": app.config.ForcedMap.String})
		}
		logger.Info("map forced by config", zap.String("map", app.config.ForcedMap.String))
	}
	services, err := createServices(app.config, logger, servicesDeps{
		portalBase: portalBase,
		match:      match,
		scheduler:  scheduler,
		inbox:      inbox,
		bridge:     bridge,
		recorder:   recorder,
		publishLog: app.publishLog,
	})
	if err != nil {
		return errors.Wrap(err, "create services", nil)
	}
	logger.Warn("setup completed. running services...",
		zap.String("play_type", playType.String()),
		zap.Strings("maps", catalog.ListMapIDs()))
	err = services.run(appCtx, logger)
	if err != nil {
		return errors.Wrap(err, "run services", nil)
	}
	logger.Warn("shut down")
	return nil
}

func (app *App) setupLogging(config LogConfig) (*zap.Logger, <-chan logging.LogEntry) {
	encConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	cores := make([]zapcore.Core, 0)
	// Setup stdout logger with colorful level output.
	stdOutEncConfig := encConfig
	stdOutEncConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(stdOutEncConfig),
		zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= config.StdoutLogLevel && level < zap.ErrorLevel
		})))
	// Setup error logger.
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(encConfig),
		zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= zap.ErrorLevel
		})))
	// Setup high priority logger.
	if config.HighPriorityOutput.Valid {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename: config.HighPriorityOutput.String,
				MaxSize:  config.MaxSize,
				MaxAge:   config.KeepDays,
			}),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= zap.WarnLevel
			})))
	}
	// Setup debug logger.
	if config.DebugOutput.Valid {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename: config.DebugOutput.String,
				MaxSize:  config.MaxSize,
				MaxAge:   config.KeepDays,
			}),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= zap.DebugLevel
			})))
	}
	// Setup publish logger. Entries of the publishing portal are omitted in order
	// to avoid loops.
	publishCore, publishLog := logging.NewPublishCore(config.PublishLogLevel, publishLogBufferSize,
		logpublishsvc.LoggerName)
	cores = append(cores, publishCore)
	logger := zap.New(zapcore.NewTee(cores...))
	return logger, publishLog
}

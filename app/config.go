package app

import (
	"encoding/json"
	nativeerrors "errors"
	"github.com/gobuffalo/nulls"
	"github.com/joho/godotenv"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"go.uber.org/zap/zapcore"
	"io/fs"
	"os"
	"regexp"
)

// Environment variables that override the config file.
const (
	envServerID = "BEDWARS_SERVER_ID"
	envDBConn   = "BEDWARS_DB_CONN"
	envMQTTAddr = "BEDWARS_MQTT_ADDR"
)

// Defaults for optional config fields.
const (
	defaultPlayType = "2x1"
	defaultMapsDir  = "maps"
	defaultLogSize  = 50
	defaultKeepDays = 7
)

// serverIDPattern restricts server ids to be usable in MQTT topics.
var serverIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Config is the configuration needed in order to boot an App.
type Config struct {
	// ServerID identifies this server in MQTT topics.
	ServerID string `json:"server_id"`
	// PlayType is the mode in the form WxY.
	PlayType string `json:"play_type"`
	// MapsDir is the directory with map files.
	MapsDir string `json:"maps_dir"`
	// ForcedMap is an optional map that overrides all votes.
	ForcedMap nulls.String `json:"forced_map"`
	// DBConn is the connection string for the PostgreSQL database.
	DBConn string `json:"db_conn"`
	// MQTTAddr is the address of the MQTT broker the game host is connected to.
	MQTTAddr string `json:"mqtt_addr"`
	// WebAddr is the optional address for serving health checks, metrics and the
	// live match feed.
	WebAddr nulls.String `json:"web_addr"`
	// StatsQueueSize is the optional size of the stats operation queue.
	StatsQueueSize nulls.Int `json:"stats_queue_size"`
	// Log is the config for logging.
	Log LogConfig `json:"log"`
}

// LogConfig is the config for logging.
type LogConfig struct {
	// StdoutLogLevel is the minimum level for logging to stdout.
	StdoutLogLevel zapcore.Level `json:"stdout_log_level"`
	// PublishLogLevel is the minimum level for publishing log entries via MQTT.
	PublishLogLevel zapcore.Level `json:"publish_log_level"`
	// HighPriorityOutput is the optional file for warnings and errors.
	HighPriorityOutput nulls.String `json:"high_priority_output"`
	// DebugOutput is the optional file for all log entries.
	DebugOutput nulls.String `json:"debug_output"`
	// MaxSize is the maximum size in megabytes of log files before rotation.
	MaxSize int `json:"max_size"`
	// KeepDays is the number of days to keep rotated log files.
	KeepDays int `json:"keep_days"`
	// SystemDebugStatsInterval is the optional interval in seconds for logging
	// system stats.
	SystemDebugStatsInterval nulls.Int `json:"system_debug_stats_interval"`
}

// defaultConfig returns the Config with defaults for optional fields.
func defaultConfig() Config {
	return Config{
		PlayType: defaultPlayType,
		MapsDir:  defaultMapsDir,
		Log: LogConfig{
			StdoutLogLevel:  zapcore.InfoLevel,
			PublishLogLevel: zapcore.InfoLevel,
			MaxSize:         defaultLogSize,
			KeepDays:        defaultKeepDays,
		},
	}
}

// LoadConfig reads the config file at the given path. Variables from the given
// env file are loaded first if it exists. Environment variables override the
// connection settings of the file.
func LoadConfig(path string, envFile string) (Config, error) {
	config := defaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.FromErr("read config file", errors.ErrFatal, err, errors.Details{"path": path})
	}
	err = json.Unmarshal(raw, &config)
	if err != nil {
		return Config{}, errors.FromErr("parse config file", errors.ErrFatal, err, errors.Details{"path": path})
	}
	if envFile != "" {
		err = godotenv.Load(envFile)
		if err != nil && !nativeerrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.FromErr("load env file", errors.ErrFatal, err, errors.Details{"path": envFile})
		}
	}
	applyEnv(&config)
	return config, nil
}

// applyEnv overrides config fields with set environment variables.
func applyEnv(config *Config) {
	if v, ok := os.LookupEnv(envServerID); ok {
		config.ServerID = v
	}
	if v, ok := os.LookupEnv(envDBConn); ok {
		config.DBConn = v
	}
	if v, ok := os.LookupEnv(envMQTTAddr); ok {
		config.MQTTAddr = v
	}
}

// ValidateConfig assures that all required fields are set and valid.
func ValidateConfig(config Config) error {
	if !serverIDPattern.MatchString(config.ServerID) {
		return errors.NewRejectionError(errors.KindInvalidConfig, "server id must only contain letters, digits, dashes and underscores",
			errors.Details{"was": config.ServerID})
	}
	if _, err := games.ParsePlayType(config.PlayType); err != nil {
		return errors.Wrap(err, "parse play type", nil)
	}
	if config.MapsDir == "" {
		return errors.NewRejectionError(errors.KindInvalidConfig, "missing maps dir", nil)
	}
	if config.DBConn == "" {
		return errors.NewRejectionError(errors.KindInvalidConfig, "missing db connection string", nil)
	}
	if config.MQTTAddr == "" {
		return errors.NewRejectionError(errors.KindInvalidConfig, "missing mqtt addr", nil)
	}
	if config.StatsQueueSize.Valid && config.StatsQueueSize.Int <= 0 {
		return errors.NewRejectionError(errors.KindInvalidConfig, "stats queue size must be positive",
			errors.Details{"was": config.StatsQueueSize.Int})
	}
	if config.Log.SystemDebugStatsInterval.Valid && config.Log.SystemDebugStatsInterval.Int <= 0 {
		return errors.NewRejectionError(errors.KindInvalidConfig, "system debug stats interval must be positive",
			errors.Details{"was": config.Log.SystemDebugStatsInterval.Int})
	}
	return nil
}

// Package logging provides a zapcore.Core that forwards log entries for being
// published.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"strings"
	"time"
)

// noPublishFieldKey is the key of the field set via NoPublish.
const noPublishFieldKey = "no_publish"

// NoPublish is a field that marks log entries as not to be published.
func NoPublish() zap.Field {
	return zap.Bool(noPublishFieldKey, true)
}

// LogEntry is a log entry to publish.
type LogEntry struct {
	Time       time.Time
	Level      zapcore.Level
	LoggerName string
	Message    string
	Fields     map[string]interface{}
}

// publishCore is a zapcore.Core that forwards entries to a channel. If the
// channel is full, entries are dropped.
type publishCore struct {
	zapcore.LevelEnabler
	// fields are the ones added via With.
	fields []zapcore.Field
	// noPublish is set if NoPublish was added via With.
	noPublish bool
	// omitLoggers holds names of loggers whose entries are not published.
	omitLoggers []string
	entries     chan<- LogEntry
}

// NewPublishCore creates a zapcore.Core that forwards all entries to the
// returned channel. Entries with the NoPublish field or from loggers with one of
// the given names (or their children) are omitted.
func NewPublishCore(level zapcore.LevelEnabler, bufferSize int, omitLoggers ...string) (zapcore.Core, <-chan LogEntry) {
	entries := make(chan LogEntry, bufferSize)
	return &publishCore{
		LevelEnabler: level,
		omitLoggers:  omitLoggers,
		entries:      entries,
	}, entries
}

func isNoPublish(fields []zapcore.Field) bool {
	for _, field := range fields {
		if field.Key == noPublishFieldKey && field.Type == zapcore.BoolType && field.Integer == 1 {
			return true
		}
	}
	return false
}

func (c *publishCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	combined = append(combined, c.fields...)
	combined = append(combined, fields...)
	return &publishCore{
		LevelEnabler: c.LevelEnabler,
		fields:       combined,
		noPublish:    c.noPublish || isNoPublish(fields),
		omitLoggers:  c.omitLoggers,
		entries:      c.entries,
	}
}

func (c *publishCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.noPublish || c.isOmittedLogger(entry.LoggerName) || !c.Enabled(entry.Level) {
		return checked
	}
	return checked.AddCore(entry, c)
}

func (c *publishCore) isOmittedLogger(name string) bool {
	for _, omit := range c.omitLoggers {
		if name == omit || strings.HasPrefix(name, omit+".") {
			return true
		}
	}
	return false
}

func (c *publishCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if isNoPublish(fields) {
		return nil
	}
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range c.fields {
		field.AddTo(enc)
	}
	for _, field := range fields {
		field.AddTo(enc)
	}
	select {
	case c.entries <- LogEntry{
		Time:       entry.Time,
		Level:      entry.Level,
		LoggerName: entry.LoggerName,
		Message:    entry.Message,
		Fields:     enc.Fields,
	}:
	default:
	}
	return nil
}

func (c *publishCore) Sync() error {
	return nil
}

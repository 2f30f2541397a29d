// Package logpublishsvc publishes log entries in batches so that dashboards can
// follow the server without access to its log files.
package logpublishsvc

import (
	"context"
	"github.com/lefinal/bedwars-server/event"
	"github.com/lefinal/bedwars-server/logging"
	"github.com/lefinal/bedwars-server/portal"
	"github.com/lefinal/bedwars-server/service"
	"go.uber.org/zap"
	"time"
)

// topicLogBatch is the topic log batches are published to.
const topicLogBatch portal.Topic = "log/batch"

// LoggerName is the name of the portal logger for this service. Entries of it
// must not be published in order to avoid loops.
const LoggerName = "log-publish"

// collectDelay is the time entries are collected after the first one of a batch
// was received.
const collectDelay = 100 * time.Millisecond

// maxBatchSize is the maximum number of entries in one batch. Additional entries
// that were already queued are counted as dropped.
const maxBatchSize = 64

type logPublishService struct {
	logger *zap.Logger
	portal portal.Portal
	// logEntriesIn is the channel to read log entries to publish from.
	logEntriesIn <-chan logging.LogEntry
}

// New creates a new log publish service that reads entries from the given
// channel until it is closed.
func New(logger *zap.Logger, portal portal.Portal, logEntriesIn <-chan logging.LogEntry) service.Service {
	return &logPublishService{
		logger:       logger,
		portal:       portal,
		logEntriesIn: logEntriesIn,
	}
}

func (s *logPublishService) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, more := <-s.logEntriesIn:
			if !more {
				return nil
			}
			batch, more := s.collect(ctx, entry)
			if len(batch.Entries) > 0 {
				s.portal.Publish(ctx, topicLogBatch, batch)
			}
			if !more {
				return nil
			}
		}
	}
}

// collect waits for collectDelay and then takes all queued entries. It returns
// false if the input channel was closed.
func (s *logPublishService) collect(ctx context.Context, first logging.LogEntry) (event.LogBatchEvent, bool) {
	batch := event.LogBatchEvent{
		Entries: []event.LogEntry{logEntryEvent(first)},
	}
	select {
	case <-ctx.Done():
		return batch, true
	case <-time.After(collectDelay):
	}
	for {
		select {
		case entry, more := <-s.logEntriesIn:
			if !more {
				return batch, false
			}
			if len(batch.Entries) >= maxBatchSize {
				batch.Dropped++
				continue
			}
			batch.Entries = append(batch.Entries, logEntryEvent(entry))
		default:
			return batch, true
		}
	}
}

func logEntryEvent(entry logging.LogEntry) event.LogEntry {
	return event.LogEntry{
		Time:       entry.Time,
		Level:      entry.Level.String(),
		LoggerName: entry.LoggerName,
		Message:    entry.Message,
		Fields:     entry.Fields,
	}
}

package event

import "time"

// LogEntry is a published log entry.
type LogEntry struct {
	Time       time.Time              `json:"time"`
	Level      string                 `json:"level"`
	LoggerName string                 `json:"logger_name,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// LogBatchEvent holds log entries collected over a short period of time.
type LogBatchEvent struct {
	// Entries in the order they were logged.
	Entries []LogEntry `json:"entries"`
	// Dropped is the number of entries that did not fit into the batch.
	Dropped int `json:"dropped,omitempty"`
}

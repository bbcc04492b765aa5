// Package testutil provides shared test helpers for SymRxn packages.
package testutil

import (
	"strings"
	"sync"

	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry.
// Children created by With and Named share the parent's record.
type MockLogger struct {
	mu       *sync.Mutex
	store    *[]LogMessage
	name     string
	inherit  []logging.Field
	Messages []LogMessage
}

// LogMessage is a single entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field and whether it was present.
func (lm LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range lm.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	m := &MockLogger{mu: &sync.Mutex{}}
	m.store = &m.Messages
	return m
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]logging.Field, 0, len(m.inherit)+len(fields))
	all = append(all, m.inherit...)
	all = append(all, fields...)
	*m.store = append(*m.store, LogMessage{Level: level, Logger: m.name, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := &MockLogger{mu: m.mu, store: m.store, name: m.name}
	child.inherit = append(append([]logging.Field{}, m.inherit...), fields...)
	return child
}

func (m *MockLogger) Named(name string) logging.Logger {
	full := name
	if m.name != "" {
		full = m.name + "." + name
	}
	return &MockLogger{mu: m.mu, store: m.store, name: full, inherit: m.inherit}
}

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]LogMessage, len(*m.store))
	copy(result, *m.store)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.store = (*m.store)[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	return len(m.Find(level, msg)) > 0
}

// Find returns entries at level whose message contains substr.
func (m *MockLogger) Find(level, substr string) []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogMessage
	for _, logged := range *m.store {
		if logged.Level == level && strings.Contains(logged.Message, substr) {
			out = append(out, logged)
		}
	}
	return out
}

//Personal.AI order the ending

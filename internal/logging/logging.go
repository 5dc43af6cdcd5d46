// Package logging provides the server's internal operational trace: a
// thin wrapper over *zap.Logger used by conn and server for
// accept/error/close diagnostics. It is separate from the embedder-visible
// events.Hub log stream — nothing written here is observable through the
// public API.
package logging

import "go.uber.org/zap"

// Logger wraps a *zap.Logger with the small set of fields this server's
// components actually need to attach (connID, remote address, error).
type Logger struct {
	z *zap.Logger
}

// New wraps an existing *zap.Logger. A nil z is replaced with zap.NewNop().
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Development returns a Logger backed by zap's development preset
// (human-readable console encoding, debug level), used when the server is
// constructed without an explicit logger.
func Development() *Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// WithConn returns a child logger with a connID field attached, so every
// subsequent line it writes is scoped to that connection.
func (l *Logger) WithConn(connID string) *Logger {
	return &Logger{z: l.z.With(zap.String("conn_id", connID))}
}

// Info logs an informational operational event.
func (l *Logger) Info(msg string, fields ...zap.Field) { l.z.Info(msg, fields...) }

// Warn logs a recoverable anomaly.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.z.Warn(msg, fields...) }

// Error logs an operation that failed.
func (l *Logger) Error(msg string, err error, fields ...zap.Field) {
	l.z.Error(msg, append(fields, zap.Error(err))...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }

package logger

import (
	"context"
	"time"
)

type contextKey struct{}

// LogContext holds session-scoped logging fields.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SessionID string    // replication session identifier
	Role      string    // sender or receiver
	Peer      string    // free-form peer label (host, file name)
	StartTime time.Time // for duration calculation
}

// WithContext returns a copy of ctx carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext returns the LogContext of ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for a session.
func NewLogContext(sessionID, role string) *LogContext {
	return &LogContext{
		SessionID: sessionID,
		Role:      role,
		StartTime: time.Now(),
	}
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithRole returns a copy with the role set.
func (lc *LogContext) WithRole(role string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Role = role
	}
	return c
}

// WithTrace returns a copy with the trace ID set.
func (lc *LogContext) WithTrace(traceID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
	}
	return c
}

// DurationMs returns milliseconds elapsed since StartTime.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}

// Duration returns milliseconds elapsed since start.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

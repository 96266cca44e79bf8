// Package notify is the best-effort diagnostic side channel used when a
// build degrades a field instead of failing. Reporters never return
// errors and never alter control flow.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Reporter receives diagnostic messages.
type Reporter interface {
	Notify(ctx context.Context, message string)
}

// Counter counts delivered notifications.
type Counter interface {
	Inc()
}

type ctxKey struct{}

// WithIdentifier attaches the identifier of the record being built, so
// every notification raised during the build carries it.
func WithIdentifier(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Identifier returns the record identifier attached to ctx, or "".
func Identifier(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// LogReporter writes notifications to a structured logger at warn level.
type LogReporter struct {
	logger  *slog.Logger
	counter Counter
}

// NewLogReporter creates a reporter writing to logger. counter may be nil.
func NewLogReporter(logger *slog.Logger, counter Counter) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger, counter: counter}
}

// Notify logs message with the record identifier from ctx.
func (r *LogReporter) Notify(ctx context.Context, message string) {
	r.logger.WarnContext(ctx, "build_notification",
		slog.String("record_id", Identifier(ctx)),
		slog.String("message", message))
	if r.counter != nil {
		r.counter.Inc()
	}
}

// Discard drops every notification.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Notify(context.Context, string) {}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Notify records message.
func (r *Recorder) Notify(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Reset forgets all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

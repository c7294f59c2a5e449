// Package analytics records learner activity to the local event log and
// pushes it to a remote collector.
package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/mathblocks/internal/store"
)

// User identifies who an event belongs to. A nil *User is anonymous.
type User struct {
	Name      string
	SessionID string
}

// Logger appends events to the store. It never fails the caller: write
// errors are logged and dropped.
type Logger struct {
	repo store.EventRepo
	log  zerolog.Logger
	now  func() time.Time
}

// NewLogger returns a Logger writing to repo. A nil repo discards events.
func NewLogger(repo store.EventRepo, log zerolog.Logger) *Logger {
	return &Logger{repo: repo, log: log, now: time.Now}
}

// LogEvent records one event.
func (l *Logger) LogEvent(ctx context.Context, name string, user *User, payload map[string]any) {
	if l == nil || l.repo == nil {
		return
	}
	e := store.Event{
		Timestamp: l.now(),
		Name:      name,
		Payload:   payload,
	}
	if user != nil {
		e.Learner = user.Name
		e.SessionID = user.SessionID
	}
	if m, ok := payload["model"].(string); ok {
		e.Model = m
	}
	if _, err := l.repo.Append(ctx, e); err != nil {
		l.log.Warn().Err(err).Str("event", name).Msg("analytics event dropped")
	}
}

// Sink binds a Logger to one learner and model so components can record
// events without knowing either.
type Sink struct {
	logger *Logger
	user   *User
	model  string
}

// For returns a Sink for user playing model.
func (l *Logger) For(user *User, model string) *Sink {
	return &Sink{logger: l, user: user, model: model}
}

// Record logs name with payload, tagging it with the sink's model.
func (s *Sink) Record(name string, payload map[string]any) {
	p := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		p[k] = v
	}
	p["model"] = s.model
	s.logger.LogEvent(context.Background(), name, s.user, p)
}

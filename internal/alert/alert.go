// Package alert defines the user-facing notification port. The client core
// emits notifications (submission results, fraud alerts, session expiry) and
// the bound presentation layer decides how to show them.
package alert

import (
	"context"
	"log/slog"
	"sync"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	// SeverityFraud marks the distinct alert raised when a transaction is
	// flagged as fraudulent or its score exceeds the high-risk threshold.
	SeverityFraud Severity = "fraud"
)

type Notification struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the structured log. Default sink for
// the headless client.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) {
	switch n.Severity {
	case SeverityError, SeverityFraud:
		slog.WarnContext(ctx, "Notification", "severity", n.Severity, "text", n.Text)
	default:
		slog.InfoContext(ctx, "Notification", "severity", n.Severity, "text", n.Text)
	}
}

// Recorder collects notifications in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// All returns a copy of the collected notifications in emission order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// BySeverity returns collected notifications with the given severity.
func (r *Recorder) BySeverity(sev Severity) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notifications {
		if n.Severity == sev {
			out = append(out, n)
		}
	}
	return out
}

// Fanout forwards each notification to every wrapped notifier.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, notifier := range f {
		notifier.Notify(ctx, n)
	}
}

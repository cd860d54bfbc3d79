// Package notify sends operational alerts (failed backend writes, fixture
// fallbacks) to chat platforms.
package notify

import (
	"context"
	"errors"
	"sync"
)

// Severity levels.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
)

// Color constants for alert severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Alert is one message to deliver.
type Alert struct {
	Title    string
	Body     string
	Severity string
	Fields   []Field
}

// Field is a key-value pair displayed with an alert.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Color returns the sidebar color for the alert's severity.
func (a Alert) Color() string {
	switch a.Severity {
	case SeveritySuccess:
		return ColorSuccess
	case SeverityWarning:
		return ColorWarning
	case SeverityError:
		return ColorError
	default:
		return ColorInfo
	}
}

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Nop discards alerts.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }

// Multi fans an alert out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Once wraps a notifier so each key alerts at most once per process.
type Once struct {
	next Notifier
	mu   sync.Mutex
	sent map[string]bool
}

// NewOnce returns a de-duplicating notifier.
func NewOnce(next Notifier) *Once {
	return &Once{next: next, sent: make(map[string]bool)}
}

// NotifyKey delivers a unless an alert with the same key was already sent.
func (o *Once) NotifyKey(ctx context.Context, key string, a Alert) error {
	o.mu.Lock()
	if o.sent[key] {
		o.mu.Unlock()
		return nil
	}
	o.sent[key] = true
	o.mu.Unlock()
	return o.next.Notify(ctx, a)
}

// Notify delivers a unconditionally.
func (o *Once) Notify(ctx context.Context, a Alert) error {
	return o.next.Notify(ctx, a)
}

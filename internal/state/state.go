// Package state holds the in-memory collections the dashboard and CLI read
// from. Writes are applied locally whether or not the backend accepts them;
// the backend outcome is reported next to the local value.
package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/qadesk/internal/metrics"
	"github.com/zulandar/qadesk/internal/notify"
	"github.com/zulandar/qadesk/internal/store"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an ID is not present in local state.
var ErrNotFound = errors.New("state: not found")

// ValidationError rejects user input before any state is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Result is the locally applied value of a write plus the backend error,
// if the backend rejected or never received it.
type Result[T any] struct {
	Value     T
	RemoteErr error
}

// Warning returns the user-facing message for RemoteErr, or "".
func (r Result[T]) Warning() string { return store.Message(r.RemoteErr) }

// Status describes a collection's load state.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Count   int    `json:"count"`
}

// Opts configures a state holder.
type Opts struct {
	Logger *zap.Logger
	// Alerts receives fixture fallbacks (once per entity) and plan-create
	// failures. Nil disables alerts.
	Alerts *notify.Once
	// Now overrides the clock for tests.
	Now func() time.Time
}

// deps is the plumbing shared by every holder.
type deps struct {
	log      *zap.Logger
	alerts   *notify.Once
	now      func() time.Time
	onChange func()
}

func newDeps(opts Opts) *deps {
	d := &deps{log: opts.Logger, alerts: opts.Alerts, now: opts.Now}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.now == nil {
		d.now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func (d *deps) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}

// remoteFailed logs and counts a write the backend did not accept.
func (d *deps) remoteFailed(entity, op, id string, err error) {
	metrics.RemoteFailure(entity, op)
	d.log.Warn("backend write failed, applied locally",
		zap.String("entity", entity),
		zap.String("op", op),
		zap.String("id", id),
		zap.Error(err))
}

// fellBack logs, counts and alerts a fetch that substituted fixtures.
func (d *deps) fellBack(ctx context.Context, entity string, err error) {
	metrics.Fallback(entity)
	d.log.Warn("backend fetch failed, using fixtures",
		zap.String("entity", entity),
		zap.Error(err))
	if d.alerts == nil {
		return
	}
	alert := notify.Alert{
		Title:    fmt.Sprintf("qadesk: %s 已切换到本地数据", entity),
		Body:     store.Message(err),
		Severity: notify.SeverityWarning,
		Fields:   []notify.Field{{Name: "entity", Value: entity, Short: true}},
	}
	if aerr := d.alerts.NotifyKey(ctx, "fallback:"+entity, alert); aerr != nil {
		d.log.Warn("alert delivery failed", zap.Error(aerr))
	}
}

func (d *deps) alert(ctx context.Context, a notify.Alert) {
	if d.alerts == nil {
		return
	}
	if err := d.alerts.Notify(ctx, a); err != nil {
		d.log.Warn("alert delivery failed", zap.Error(err))
	}
}

// nextID returns prefix-<unix ms>, bumping the number until it is unused.
func nextID(prefix string, now time.Time, taken func(string) bool) string {
	n := now.UnixMilli()
	for {
		id := prefix + "-" + strconv.FormatInt(n, 10)
		if !taken(id) {
			return id
		}
		n++
	}
}

// SplitList splits a comma-separated form value, trimming blanks.
func SplitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

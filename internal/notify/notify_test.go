package notify

import (
	"context"
	"errors"
	"testing"
)

type recorder struct {
	got []Alert
	err error
}

func (r *recorder) Notify(_ context.Context, a Alert) error {
	r.got = append(r.got, a)
	return r.err
}

func TestAlert_Color(t *testing.T) {
	tests := map[string]string{
		SeveritySuccess: ColorSuccess,
		SeverityWarning: ColorWarning,
		SeverityError:   ColorError,
		SeverityInfo:    ColorInfo,
		"":              ColorInfo,
	}
	for sev, want := range tests {
		if got := (Alert{Severity: sev}).Color(); got != want {
			t.Errorf("Color(%q) = %q, want %q", sev, got, want)
		}
	}
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("boom")}
	err := Multi{a, b}.Notify(context.Background(), Alert{Title: "x"})
	if err == nil || err.Error() != "boom" {
		t.Errorf("err = %v, want boom", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", len(a.got), len(b.got))
	}
}

func TestOnce(t *testing.T) {
	r := &recorder{}
	o := NewOnce(r)
	ctx := context.Background()
	o.NotifyKey(ctx, "plans", Alert{})
	o.NotifyKey(ctx, "plans", Alert{})
	o.NotifyKey(ctx, "requirements", Alert{})
	if len(r.got) != 2 {
		t.Errorf("deliveries = %d, want 2", len(r.got))
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).Notify(context.Background(), Alert{}); err != nil {
		t.Errorf("Nop returned %v", err)
	}
}

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 12, 19, 8, 30, 0, 0, time.Local)
	got := NextRun("0 9 * * *", from)
	want := time.Date(2024, 12, 19, 9, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
	if !NextRun("not a cron expr", from).IsZero() {
		t.Error("invalid expression should yield zero time")
	}
	if got := NextRun("@every 5m", from); got.Sub(from) != 5*time.Minute {
		t.Errorf("@every 5m = %v", got.Sub(from))
	}
}

func TestNew_InvalidExpression(t *testing.T) {
	_, err := New(context.Background(), "61 * * * *", func(context.Context) error { return nil }, nil)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRun_SkipsOverlap(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	s, err := New(context.Background(), "@every 1h", func(context.Context) error {
		calls++
		<-release
		return errors.New("backend down")
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.run(context.Background(), func(ctx context.Context) error {
			calls++
			<-release
			return nil
		})
		close(done)
	}()
	for {
		s.mu.Lock()
		r := s.running
		s.mu.Unlock()
		if r {
			break
		}
		time.Sleep(time.Millisecond)
	}
	s.run(context.Background(), func(context.Context) error {
		t.Error("overlapping run should be skipped")
		return nil
	})
	close(release)
	<-done

	if calls != 1 || s.Runs() != 1 {
		t.Errorf("calls=%d runs=%d", calls, s.Runs())
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(context.Background(), "@every 1h", func(context.Context) error { return nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}

package slack

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/qadesk/internal/notify"
)

// --- Mock Slack client ---

type mockSlackClient struct {
	mu       sync.Mutex
	posted   []postedMessage
	failures []error
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func (m *mockSlackClient) PostMessageContext(_ context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return "", "", err
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{BotToken: "xoxb"}); err == nil || !strings.Contains(err.Error(), "channel id") {
		t.Errorf("missing channel err = %v", err)
	}
	if _, err := New(Opts{ChannelID: "C1"}); err == nil || !strings.Contains(err.Error(), "bot token") {
		t.Errorf("missing token err = %v", err)
	}
	if _, err := New(Opts{ChannelID: "C1", Client: &mockSlackClient{}}); err != nil {
		t.Errorf("mock client err = %v", err)
	}
}

func TestNotify_Posts(t *testing.T) {
	mock := &mockSlackClient{}
	n, _ := New(Opts{ChannelID: "C1", Client: mock})
	err := n.Notify(context.Background(), notify.Alert{Title: "plan create failed", Severity: notify.SeverityError})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(mock.posted) != 1 || mock.posted[0].channelID != "C1" {
		t.Fatalf("posted = %+v", mock.posted)
	}
	if len(mock.posted[0].options) != 2 {
		t.Errorf("options = %d, want text + attachments", len(mock.posted[0].options))
	}
}

func TestNotify_RetriesRateLimit(t *testing.T) {
	mock := &mockSlackClient{failures: []error{&slackapi.RateLimitedError{RetryAfter: time.Millisecond}}}
	n, _ := New(Opts{ChannelID: "C1", Client: mock})
	if err := n.Notify(context.Background(), notify.Alert{Title: "x"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(mock.posted) != 1 {
		t.Errorf("posted = %d, want 1 after retry", len(mock.posted))
	}
}

func TestNotify_OtherErrorNotRetried(t *testing.T) {
	mock := &mockSlackClient{failures: []error{errors.New("channel_not_found"), nil}}
	n, _ := New(Opts{ChannelID: "C1", Client: mock})
	err := n.Notify(context.Background(), notify.Alert{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("err = %v", err)
	}
}

func TestToAttachment(t *testing.T) {
	att := toAttachment(notify.Alert{
		Title: "t", Body: "b", Severity: notify.SeverityWarning,
		Fields: []notify.Field{{Name: "plan", Value: "PLAN-1", Short: true}},
	})
	if att.Color != notify.ColorWarning || att.Title != "t" || att.Text != "b" {
		t.Errorf("attachment = %+v", att)
	}
	if len(att.Fields) != 1 || att.Fields[0].Title != "plan" || !att.Fields[0].Short {
		t.Errorf("fields = %+v", att.Fields)
	}
}

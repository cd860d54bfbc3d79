package ghimport

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v68/github"
)

type mockIssues struct {
	pages [][]*github.Issue
	calls []*github.IssueListByRepoOptions
	errs  []error
}

func (m *mockIssues) ListByRepo(_ context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error) {
	cp := *opts
	m.calls = append(m.calls, &cp)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, nil, err
		}
	}
	page := opts.Page
	if page == 0 {
		page = 1
	}
	resp := &github.Response{}
	if page < len(m.pages) {
		resp.NextPage = page + 1
	}
	return m.pages[page-1], resp, nil
}

func issue(n int, title string, labels ...string) *github.Issue {
	is := &github.Issue{Number: github.Ptr(n), Title: github.Ptr(title), Body: github.Ptr("body")}
	for _, l := range labels {
		is.Labels = append(is.Labels, &github.Label{Name: github.Ptr(l)})
	}
	return is
}

func TestNew_RequiresRepo(t *testing.T) {
	if _, err := New(Opts{Owner: "acme"}); err == nil {
		t.Error("expected error for missing repo")
	}
	if _, err := New(Opts{Owner: "acme", Repo: "qa", Token: "tok"}); err != nil {
		t.Errorf("New: %v", err)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		issue    *github.Issue
		wantID   string
		priority string
		reason   string
	}{
		{"full", issue(12, "登录锁定", "system:用户管理系统", "module:登录", "priority:high"), "GH-12", "high", ""},
		{"unknown priority ignored", issue(3, "x", "system:s", "module:m", "priority:urgent"), "GH-3", "medium", ""},
		{"no module", issue(4, "x", "system:s"), "GH-4", "medium", "missing module label"},
		{"no system", issue(5, "x", "module:m"), "GH-5", "medium", "missing system label"},
		{"blank title", issue(6, "  ", "system:s", "module:m"), "GH-6", "medium", "missing title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, reason := Convert(tt.issue)
			if reason != tt.reason {
				t.Errorf("reason = %q, want %q", reason, tt.reason)
			}
			if req.ID != tt.wantID || req.Priority != tt.priority {
				t.Errorf("req = %+v", req)
			}
		})
	}
}

func TestFetch_PagesSkipsPRsAndKnown(t *testing.T) {
	pr := issue(2, "pr", "system:s", "module:m")
	pr.PullRequestLinks = &github.PullRequestLinks{URL: github.Ptr("https://example/pr/2")}
	m := &mockIssues{pages: [][]*github.Issue{
		{issue(1, "one", "system:s", "module:m"), pr},
		{issue(3, "three", "system:s", "module:m"), issue(4, "four", "system:s")},
	}}
	s, err := New(Opts{Owner: "acme", Repo: "qa", Labels: []string{"requirement"}, Issues: m})
	if err != nil {
		t.Fatal(err)
	}

	b, err := s.Fetch(context.Background(), func(id string) bool { return id == "GH-3" })
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Requirements) != 1 || b.Requirements[0].ID != "GH-1" {
		t.Errorf("requirements = %+v", b.Requirements)
	}
	if len(b.Skipped) != 1 || b.Skipped[0].Number != 4 {
		t.Errorf("skipped = %+v", b.Skipped)
	}
	if len(m.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(m.calls))
	}
	if m.calls[0].State != "open" || strings.Join(m.calls[0].Labels, ",") != "requirement" {
		t.Errorf("first call opts = %+v", m.calls[0])
	}
	if m.calls[1].Page != 2 {
		t.Errorf("second page = %d", m.calls[1].Page)
	}
}

func TestFetch_RetriesRateLimit(t *testing.T) {
	rle := &github.RateLimitError{Rate: github.Rate{Reset: github.Timestamp{Time: time.Now()}}}
	m := &mockIssues{
		pages: [][]*github.Issue{{issue(1, "one", "system:s", "module:m")}},
		errs:  []error{rle, nil},
	}
	s, _ := New(Opts{Owner: "acme", Repo: "qa", Issues: m})
	b, err := s.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Requirements) != 1 || len(m.calls) != 2 {
		t.Errorf("requirements=%d calls=%d", len(b.Requirements), len(m.calls))
	}
}

func TestFetch_Error(t *testing.T) {
	m := &mockIssues{errs: []error{errors.New("boom")}}
	s, _ := New(Opts{Owner: "acme", Repo: "qa", Issues: m})
	if _, err := s.Fetch(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "acme/qa") {
		t.Errorf("err = %v", err)
	}
}

// Package ghimport turns open GitHub issues into requirements.
package ghimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/zulandar/qadesk/internal/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	idPrefix       = "GH-"
	systemLabel    = "system:"
	moduleLabel    = "module:"
	priorityLabel  = "priority:"
	perPage        = 100
	maxRateRetries = 3
)

var priorities = map[string]bool{"low": true, "medium": true, "high": true, "critical": true}

// issueLister is the subset of the GitHub issues service used here.
type issueLister interface {
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
}

// Opts configures a Syncer.
type Opts struct {
	Owner  string
	Repo   string
	Token  string
	Labels []string
	Logger *zap.Logger
	// Issues overrides the GitHub client for tests.
	Issues issueLister
}

// Syncer lists open issues and converts them to requirements.
type Syncer struct {
	owner  string
	repo   string
	labels []string
	issues issueLister
	log    *zap.Logger
}

// New creates a Syncer. An empty token uses unauthenticated requests.
func New(opts Opts) (*Syncer, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("ghimport: owner and repo are required")
	}
	s := &Syncer{
		owner:  opts.Owner,
		repo:   opts.Repo,
		labels: opts.Labels,
		issues: opts.Issues,
		log:    opts.Logger,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.issues == nil {
		var client *github.Client
		if opts.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
			client = github.NewClient(oauth2.NewClient(context.Background(), ts))
		} else {
			client = github.NewClient(nil)
		}
		s.issues = client.Issues
	}
	return s, nil
}

// Skipped is an issue that could not become a requirement.
type Skipped struct {
	Number int    `json:"number"`
	Reason string `json:"reason"`
}

// Batch is the outcome of one listing.
type Batch struct {
	Requirements []models.Requirement `json:"requirements"`
	Skipped      []Skipped            `json:"skipped"`
}

// Fetch lists every open issue carrying the configured labels. Pull
// requests, IDs in known, and issues without system and module labels are
// left out.
func (s *Syncer) Fetch(ctx context.Context, known func(id string) bool) (*Batch, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Labels:      s.labels,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	batch := &Batch{}
	for {
		var issues []*github.Issue
		var resp *github.Response
		err := retryOnRateLimit(ctx, func() error {
			var err error
			issues, resp, err = s.issues.ListByRepo(ctx, s.owner, s.repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("ghimport: list %s/%s: %w", s.owner, s.repo, err)
		}
		for _, is := range issues {
			if is.IsPullRequest() {
				continue
			}
			req, reason := Convert(is)
			if reason != "" {
				batch.Skipped = append(batch.Skipped, Skipped{Number: is.GetNumber(), Reason: reason})
				continue
			}
			if known != nil && known(req.ID) {
				continue
			}
			batch.Requirements = append(batch.Requirements, req)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	s.log.Info("github issues listed",
		zap.String("repo", s.owner+"/"+s.repo),
		zap.Int("new", len(batch.Requirements)),
		zap.Int("skipped", len(batch.Skipped)))
	return batch, nil
}

// Convert maps an issue to a requirement. A non-empty reason means the
// issue lacks the labels needed to place it.
func Convert(is *github.Issue) (models.Requirement, string) {
	req := models.Requirement{
		ID:          fmt.Sprintf("%s%d", idPrefix, is.GetNumber()),
		Title:       strings.TrimSpace(is.GetTitle()),
		Description: is.GetBody(),
		Priority:    "medium",
		Status:      models.RequirementPending,
	}
	for _, l := range is.Labels {
		name := strings.TrimSpace(l.GetName())
		switch {
		case strings.HasPrefix(name, systemLabel):
			req.System = strings.TrimSpace(strings.TrimPrefix(name, systemLabel))
		case strings.HasPrefix(name, moduleLabel):
			req.Module = strings.TrimSpace(strings.TrimPrefix(name, moduleLabel))
		case strings.HasPrefix(name, priorityLabel):
			if p := strings.TrimSpace(strings.TrimPrefix(name, priorityLabel)); priorities[p] {
				req.Priority = p
			}
		}
	}
	switch {
	case req.Title == "":
		return req, "missing title"
	case req.System == "":
		return req, "missing system label"
	case req.Module == "":
		return req, "missing module label"
	}
	return req, ""
}

// retryOnRateLimit waits out GitHub's rate-limit reset a few times before
// giving up.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		wait, ok := rateLimitWait(err)
		if !ok || attempt >= maxRateRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func rateLimitWait(err error) (time.Duration, bool) {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return clampWait(time.Until(rle.Rate.Reset.Time)), true
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		if abuse.RetryAfter != nil {
			return clampWait(*abuse.RetryAfter), true
		}
		return time.Second, true
	}
	return 0, false
}

func clampWait(d time.Duration) time.Duration {
	switch {
	case d < 100*time.Millisecond:
		return 100 * time.Millisecond
	case d > time.Minute:
		return time.Minute
	}
	return d
}

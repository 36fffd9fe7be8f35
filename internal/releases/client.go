// Package releases lists published editor versions from the public GitHub
// tags of the upstream repository.
package releases

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	gh "github.com/google/go-github/v60/github"
)

const (
	upstreamOwner = "microsoft"
	upstreamRepo  = "vscode"
)

// Client wraps the GitHub API for version listing.
type Client struct {
	gh *gh.Client
}

// New creates a client. token may be empty; unauthenticated requests work
// for the low call volume here but hit stricter rate limits.
func New(token string) *Client {
	c := gh.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &Client{gh: c}
}

// newWithClient creates a Client with an injected GitHub client (for testing).
func newWithClient(ghClient *gh.Client) *Client {
	return &Client{gh: ghClient}
}

// Versions returns up to limit released versions, newest first. Tags that do
// not name a plain release build are skipped.
func (c *Client) Versions(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 30
	}

	var out []string
	opts := &gh.ListOptions{PerPage: 100}
	for len(out) < limit {
		tags, resp, err := c.gh.Repositories.ListTags(ctx, upstreamOwner, upstreamRepo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s tags: %w", upstreamOwner, upstreamRepo, err)
		}
		for _, t := range tags {
			name := t.GetName()
			if !IsReleaseVersion(name) {
				continue
			}
			out = append(out, name)
			if len(out) == limit {
				break
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// IsReleaseVersion reports whether a tag names a plain release build, i.e. a
// semver version with no prerelease or build suffix.
func IsReleaseVersion(tag string) bool {
	v, err := semver.StrictNewVersion(tag)
	if err != nil {
		return false
	}
	return v.Prerelease() == "" && v.Metadata() == ""
}

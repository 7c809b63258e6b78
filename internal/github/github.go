package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v47/github"
)

const defaultAPIURL = "https://api.github.com/"

var (
	// ErrMissingToken is returned by NewClient when GITHUB_TOKEN is unset.
	ErrMissingToken = errors.New("GITHUB_TOKEN environment variable is not set")
	// ErrAuth marks 401 and 403 responses.
	ErrAuth = errors.New("github authentication failed")
	// ErrNotFound marks 404 responses.
	ErrNotFound = errors.New("not found")
)

// Client wraps the go-github client with the calls sentinel needs.
type Client struct {
	gh *github.Client
}

// NewClient creates a client from GITHUB_TOKEN and GITHUB_API_URL.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, ErrMissingToken
	}
	return newClient(token, os.Getenv("GITHUB_API_URL"), nil)
}

func newClient(token, apiURL string, base http.RoundTripper) (*Client, error) {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_API_URL: %w", err)
	}
	if base == nil {
		base = http.DefaultTransport
	}
	gh := github.NewClient(&http.Client{
		Timeout:   60 * time.Second,
		Transport: &bearerTransport{token: token, base: base},
	})
	gh.BaseURL = u
	return &Client{gh: gh}, nil
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}

// GetPRDiff fetches the unified diff of a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	diff, _, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, prNumber, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", wrapError(err, fmt.Sprintf("PR #%d in %s/%s", prNumber, owner, repo))
	}
	return diff, nil
}

// GetPRFiles lists the paths changed in a pull request, following pagination.
func (c *Client) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]string, error) {
	opts := &github.ListOptions{PerPage: 100}
	var names []string
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, wrapError(err, fmt.Sprintf("files of PR #%d", prNumber))
		}
		for _, f := range files {
			names = append(names, f.GetFilename())
		}
		if resp.NextPage == 0 {
			return names, nil
		}
		opts.Page = resp.NextPage
	}
}

// PostReview posts a pull request review with inline comments.
func (c *Client) PostReview(ctx context.Context, owner, repo string, prNumber int, rv ReviewRequest) error {
	req := &github.PullRequestReviewRequest{
		Body:  github.String(rv.Body),
		Event: github.String(rv.Event),
	}
	for _, cm := range rv.Comments {
		req.Comments = append(req.Comments, &github.DraftReviewComment{
			Path: github.String(cm.Path),
			Line: github.Int(cm.Line),
			Side: github.String("RIGHT"),
			Body: github.String(cm.Body),
		})
	}
	if _, _, err := c.gh.PullRequests.CreateReview(ctx, owner, repo, prNumber, req); err != nil {
		var er *github.ErrorResponse
		if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("GitHub rejected review (422): %s", er.Message)
		}
		return wrapError(err, fmt.Sprintf("review on PR #%d", prNumber))
	}
	return nil
}

// wrapError classifies API errors so callers can match them with errors.Is.
func wrapError(err error, what string) error {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuth, er.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return fmt.Errorf("GitHub API error (status %d): %s", er.Response.StatusCode, er.Message)
	}
	return fmt.Errorf("fetching %s: %w", what, err)
}

// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	StatisticsFetcher
	RepositoryLister
}

// Options configures NewGitHubGateway.
type Options struct {
	Token string
	// BaseURL points the REST client at a GitHub Enterprise API, e.g. https://ghe.example.com/api/v3/.
	BaseURL string
	// GraphQLURL points the GraphQL client at a GitHub Enterprise API.
	GraphQLURL string
	// RateLimitSleep is the longest single sleep on a secondary rate limit.
	RateLimitSleep time.Duration
	Poll           PollPolicy
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	*StatisticsClient
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *log.Logger) (*GitHubGateway, error) {
	if opts.RateLimitSleep <= 0 {
		opts.RateLimitSleep = 1 * time.Hour
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(opts.RateLimitSleep, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		restClient, err = restClient.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
	}
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}

	return newGateway(restClient, graphqlClient, opts.Poll, logger), nil
}

func newGateway(restClient Requester, graphqlClient *githubv4.Client, policy PollPolicy, logger *log.Logger) *GitHubGateway {
	poller := NewStatisticsPoller(restClient, policy, logger)
	stats := NewStatisticsClient(poller, logger)
	return &GitHubGateway{
		StatisticsClient: stats,
		graphqlClient:    graphqlClient,
		logger:           stats.logger,
	}
}

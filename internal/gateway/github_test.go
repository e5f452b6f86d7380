package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/repostats/internal/domain"
)

// fastPolicy keeps poll waits short so tests finish quickly.
var fastPolicy = PollPolicy{
	MaxAttempts:     5,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	Multiplier:      2,
}

// newTestRESTClient returns a go-github client that talks to the mock server.
func newTestRESTClient(t *testing.T, server *httptest.Server) *github.Client {
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL
	return restClient
}

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler, policy PollPolicy) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := newTestRESTClient(t, server)
	// Use NewEnterpriseClient to point the GraphQL client to our mock server's URL.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())
	logger := log.New(io.Discard, "", 0)

	return newGateway(restClient, graphqlClient, policy, logger), server
}

func TestNewGitHubGateway(t *testing.T) {
	gateway, err := NewGitHubGateway(Options{Token: "token", Poll: fastPolicy}, nil)
	require.NoError(t, err)
	assert.NotNil(t, gateway.StatisticsClient)
	assert.NotNil(t, gateway.graphqlClient)

	_, err = NewGitHubGateway(Options{Token: "token", BaseURL: "://bad"}, nil)
	assert.Error(t, err)
}

func TestGitHubGateway_Statistics(t *testing.T) {
	testCases := []struct {
		name         string
		expectedPath string
		responseBody string
		call         func(g *GitHubGateway) (any, error)
		expected     any
	}{
		{
			name:         "Contributors",
			expectedPath: "/repos/octokit/octokit.net/stats/contributors",
			responseBody: `[{"author":{"login":"shiftkey","id":359239},"total":135,"weeks":[{"w":1367712000,"a":6898,"d":77,"c":10}]}]`,
			call: func(g *GitHubGateway) (any, error) {
				return g.Contributors(context.Background(), "octokit", "octokit.net")
			},
			expected: []domain.Contributor{{
				Author: domain.Author{Login: "shiftkey", ID: 359239},
				Total:  135,
				Weeks:  []domain.ContributorWeek{{Week: 1367712000, Additions: 6898, Deletions: 77, Commits: 10}},
			}},
		},
		{
			name:         "CommitActivity",
			expectedPath: "/repos/octokit/octokit.net/stats/commit_activity",
			responseBody: `[{"days":[0,3,26,20,39,1,0],"total":89,"week":1336280400}]`,
			call: func(g *GitHubGateway) (any, error) {
				return g.CommitActivity(context.Background(), "octokit", "octokit.net")
			},
			expected: []domain.WeeklyCommitActivity{{Days: []int{0, 3, 26, 20, 39, 1, 0}, Total: 89, Week: 1336280400}},
		},
		{
			name:         "CodeFrequency",
			expectedPath: "/repos/octokit/octokit.net/stats/code_frequency",
			responseBody: `[[1302998400,1124,-435],[1303603200,0,0]]`,
			call: func(g *GitHubGateway) (any, error) {
				return g.CodeFrequency(context.Background(), "octokit", "octokit.net")
			},
			expected: []domain.WeeklyCodeFrequency{
				{Week: time.Unix(1302998400, 0).UTC(), Additions: 1124, Deletions: -435},
				{Week: time.Unix(1303603200, 0).UTC()},
			},
		},
		{
			name:         "Participation",
			expectedPath: "/repos/octokit/octokit.net/stats/participation",
			responseBody: `{"all":[11,21,15],"owner":[3,2,3]}`,
			call: func(g *GitHubGateway) (any, error) {
				return g.Participation(context.Background(), "octokit", "octokit.net")
			},
			expected: domain.WeeklyCommitCounts{All: []int{11, 21, 15}, Owner: []int{3, 2, 3}},
		},
		{
			name:         "PunchCard",
			expectedPath: "/repos/octokit/octokit.net/stats/punch_card",
			responseBody: `[[0,0,5],[0,1,43]]`,
			call: func(g *GitHubGateway) (any, error) {
				return g.PunchCard(context.Background(), "octokit", "octokit.net")
			},
			expected: domain.PunchCard{Points: []domain.PunchPoint{
				{DayOfWeek: time.Sunday, HourOfDay: 0, CommitCount: 5},
				{DayOfWeek: time.Sunday, HourOfDay: 1, CommitCount: 43},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tc.expectedPath, r.URL.Path)
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler), fastPolicy)
			defer server.Close()

			result, err := tc.call(gateway)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestGitHubGateway_StatisticsEmpty(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusOK} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler), fastPolicy)
			defer server.Close()
			ctx := context.Background()

			contributors, err := gateway.Contributors(ctx, "o", "r")
			require.NoError(t, err)
			assert.NotNil(t, contributors)
			assert.Empty(t, contributors)

			activity, err := gateway.CommitActivity(ctx, "o", "r")
			require.NoError(t, err)
			assert.NotNil(t, activity)
			assert.Empty(t, activity)

			frequency, err := gateway.CodeFrequency(ctx, "o", "r")
			require.NoError(t, err)
			assert.NotNil(t, frequency)
			assert.Empty(t, frequency)

			counts, err := gateway.Participation(ctx, "o", "r")
			require.NoError(t, err)
			assert.Empty(t, counts.All)
			assert.Empty(t, counts.Owner)

			card, err := gateway.PunchCard(ctx, "o", "r")
			require.NoError(t, err)
			assert.NotNil(t, card.Points)
			assert.Empty(t, card.Points)
		})
	}
}

func TestGitHubGateway_StatisticsMalformedPayload(t *testing.T) {
	testCases := []struct {
		name         string
		responseBody string
		call         func(g *GitHubGateway) error
	}{
		{
			name:         "punch card triple too short",
			responseBody: `[[0,1]]`,
			call: func(g *GitHubGateway) error {
				_, err := g.PunchCard(context.Background(), "o", "r")
				return err
			},
		},
		{
			name:         "code frequency triple too long",
			responseBody: `[[1,2,3,4]]`,
			call: func(g *GitHubGateway) error {
				_, err := g.CodeFrequency(context.Background(), "o", "r")
				return err
			},
		},
		{
			name:         "participation owner longer than all",
			responseBody: `{"all":[1],"owner":[1,2]}`,
			call: func(g *GitHubGateway) error {
				_, err := g.Participation(context.Background(), "o", "r")
				return err
			},
		},
		{
			name:         "contributors object instead of array",
			responseBody: `{"message":"unexpected"}`,
			call: func(g *GitHubGateway) error {
				_, err := g.Contributors(context.Background(), "o", "r")
				return err
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler), fastPolicy)
			defer server.Close()

			err := tc.call(gateway)

			require.Error(t, err)
			assert.Equal(t, KindDecode, KindOf(err))
		})
	}
}

func TestGitHubGateway_StatisticsInvalidArguments(t *testing.T) {
	var requests atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler), fastPolicy)
	defer server.Close()
	ctx := context.Background()

	_, err := gateway.Contributors(ctx, "", "repo")
	assert.True(t, IsKind(err, KindInvalidArgument))
	_, err = gateway.CommitActivity(ctx, "owner", "")
	assert.True(t, IsKind(err, KindInvalidArgument))
	_, err = gateway.CodeFrequency(ctx, " ", "repo")
	assert.True(t, IsKind(err, KindInvalidArgument))
	_, err = gateway.Participation(ctx, "owner", "\t")
	assert.True(t, IsKind(err, KindInvalidArgument))
	_, err = gateway.PunchCard(ctx, "", "")
	assert.True(t, IsKind(err, KindInvalidArgument))

	assert.Zero(t, requests.Load())
}

func TestGitHubGateway_ListRepositories(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "organization(login: $org)")
		assert.Contains(t, string(body), `"org":"octokit"`)

		w.WriteHeader(http.StatusOK)
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `{"data":{"organization":{"repositories":{"pageInfo":{"hasNextPage":true,"endCursor":"cursor-1"},"nodes":[{"name":"go-octokit","isArchived":false,"owner":{"login":"octokit"}}]}}}}`)
			return
		}
		assert.Contains(t, string(body), "cursor-1")
		fmt.Fprint(w, `{"data":{"organization":{"repositories":{"pageInfo":{"hasNextPage":false,"endCursor":"cursor-2"},"nodes":[{"name":"octokit.net","isArchived":false,"owner":{"login":"octokit"}},{"name":"octokit.objc","isArchived":true,"owner":{"login":"octokit"}}]}}}}`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler), fastPolicy)
	defer server.Close()

	repos, err := gateway.ListRepositories(context.Background(), "octokit")

	require.NoError(t, err)
	assert.Equal(t, []domain.RepoRef{
		{Owner: "octokit", Name: "go-octokit"},
		{Owner: "octokit", Name: "octokit.net"},
	}, repos)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGitHubGateway_ListRepositoriesErrors(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"errors":[{"message":"Could not resolve to an Organization"}]}`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler), fastPolicy)
	defer server.Close()

	_, err := gateway.ListRepositories(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list repositories of missing")

	_, err = gateway.ListRepositories(context.Background(), "")
	assert.True(t, IsKind(err, KindInvalidArgument))
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndpoint(t *testing.T) {
	testCases := []struct {
		name         string
		owner        string
		repo         string
		resource     Resource
		expectedPath string
		expectError  bool
	}{
		{name: "contributors", owner: "octokit", repo: "octokit.net", resource: ResourceContributors, expectedPath: "repos/octokit/octokit.net/stats/contributors"},
		{name: "commit activity", owner: "octokit", repo: "octokit.net", resource: ResourceCommitActivity, expectedPath: "repos/octokit/octokit.net/stats/commit_activity"},
		{name: "code frequency", owner: "octokit", repo: "octokit.net", resource: ResourceCodeFrequency, expectedPath: "repos/octokit/octokit.net/stats/code_frequency"},
		{name: "participation", owner: "octokit", repo: "octokit.net", resource: ResourceParticipation, expectedPath: "repos/octokit/octokit.net/stats/participation"},
		{name: "punch card", owner: "octokit", repo: "octokit.net", resource: ResourcePunchCard, expectedPath: "repos/octokit/octokit.net/stats/punch_card"},
		{name: "escapes path segments", owner: "a b", repo: "c?d", resource: ResourcePunchCard, expectedPath: "repos/a%20b/c%3Fd/stats/punch_card"},
		{name: "empty owner", owner: "", repo: "r", resource: ResourcePunchCard, expectError: true},
		{name: "blank owner", owner: "  ", repo: "r", resource: ResourcePunchCard, expectError: true},
		{name: "empty repository", owner: "o", repo: "", resource: ResourcePunchCard, expectError: true},
		{name: "unknown resource", owner: "o", repo: "r", resource: "traffic", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			endpoint, err := NewEndpoint(tc.owner, tc.repo, tc.resource)
			if tc.expectError {
				assert.True(t, IsKind(err, KindInvalidArgument))
				assert.Equal(t, Endpoint{}, endpoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPath, endpoint.Path())
			assert.Equal(t, "/"+tc.expectedPath, endpoint.String())
			assert.Equal(t, tc.owner, endpoint.Owner())
			assert.Equal(t, tc.repo, endpoint.Repo())
			assert.Equal(t, tc.resource, endpoint.Resource())
		})
	}
}

func TestStatsError(t *testing.T) {
	cause := context.Canceled
	err := fmt.Errorf("fetch punch card: %w", &StatsError{
		Kind:     KindCancelled,
		Endpoint: "/repos/o/r/stats/punch_card",
		Attempts: 2,
		Err:      cause,
	})

	assert.Equal(t, KindCancelled, KindOf(err))
	assert.True(t, IsKind(err, KindCancelled))
	assert.False(t, IsKind(err, KindDecode))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "fetch punch card: github stats cancelled (/repos/o/r/stats/punch_card) after 2 attempts: context canceled", err.Error())

	httpErr := &StatsError{Kind: KindHTTPStatus, StatusCode: 404, Message: "Not Found"}
	assert.Equal(t, "github stats http status: status 404: Not Found", httpErr.Error())

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindUnknown))
	assert.Equal(t, "unknown", ErrorKind(42).String())
}

package gateway

import (
	"context"
	"io"
	"log"

	"github.com/naka-gawa/repostats/internal/domain"
)

// StatisticsFetcher fetches the repository statistics resources.
type StatisticsFetcher interface {
	Contributors(ctx context.Context, owner, repo string) ([]domain.Contributor, error)
	CommitActivity(ctx context.Context, owner, repo string) ([]domain.WeeklyCommitActivity, error)
	CodeFrequency(ctx context.Context, owner, repo string) ([]domain.WeeklyCodeFrequency, error)
	Participation(ctx context.Context, owner, repo string) (domain.WeeklyCommitCounts, error)
	PunchCard(ctx context.Context, owner, repo string) (domain.PunchCard, error)
}

type participationPayload struct {
	All   []int `json:"all"`
	Owner []int `json:"owner"`
}

// StatisticsClient implements StatisticsFetcher on top of a Poller.
type StatisticsClient struct {
	poller Poller
	logger *log.Logger
}

// NewStatisticsClient creates a StatisticsClient.
func NewStatisticsClient(poller Poller, logger *log.Logger) *StatisticsClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StatisticsClient{poller: poller, logger: logger}
}

// Contributors returns every contributor with their weekly additions, deletions and commits.
func (c *StatisticsClient) Contributors(ctx context.Context, owner, repo string) ([]domain.Contributor, error) {
	contributors, err := fetchResource[[]domain.Contributor](ctx, c, owner, repo, ResourceContributors)
	if err != nil {
		return nil, err
	}
	if contributors == nil {
		contributors = []domain.Contributor{}
	}
	return contributors, nil
}

// CommitActivity returns the last year of commit activity grouped by week.
func (c *StatisticsClient) CommitActivity(ctx context.Context, owner, repo string) ([]domain.WeeklyCommitActivity, error) {
	activity, err := fetchResource[[]domain.WeeklyCommitActivity](ctx, c, owner, repo, ResourceCommitActivity)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		activity = []domain.WeeklyCommitActivity{}
	}
	return activity, nil
}

// CodeFrequency returns the weekly aggregate of additions and deletions.
func (c *StatisticsClient) CodeFrequency(ctx context.Context, owner, repo string) ([]domain.WeeklyCodeFrequency, error) {
	raw, err := fetchResource[[][]int64](ctx, c, owner, repo, ResourceCodeFrequency)
	if err != nil {
		return nil, err
	}
	weeks, err := domain.NewCodeFrequency(raw)
	if err != nil {
		return nil, shapeError(ResourceCodeFrequency, owner, repo, err)
	}
	return weeks, nil
}

// Participation returns the weekly commit counts of the owner and of everyone, oldest week first.
func (c *StatisticsClient) Participation(ctx context.Context, owner, repo string) (domain.WeeklyCommitCounts, error) {
	raw, err := fetchResource[participationPayload](ctx, c, owner, repo, ResourceParticipation)
	if err != nil {
		return domain.WeeklyCommitCounts{}, err
	}
	counts, err := domain.NewWeeklyCommitCounts(raw.All, raw.Owner)
	if err != nil {
		return domain.WeeklyCommitCounts{}, shapeError(ResourceParticipation, owner, repo, err)
	}
	return counts, nil
}

// PunchCard returns the number of commits per hour of each day of the week.
func (c *StatisticsClient) PunchCard(ctx context.Context, owner, repo string) (domain.PunchCard, error) {
	raw, err := fetchResource[[][]int](ctx, c, owner, repo, ResourcePunchCard)
	if err != nil {
		return domain.PunchCard{}, err
	}
	card, err := domain.NewPunchCard(raw)
	if err != nil {
		return domain.PunchCard{}, shapeError(ResourcePunchCard, owner, repo, err)
	}
	return card, nil
}

func fetchResource[T any](ctx context.Context, c *StatisticsClient, owner, repo string, resource Resource) (T, error) {
	endpoint, err := NewEndpoint(owner, repo, resource)
	if err != nil {
		var zero T
		return zero, err
	}
	c.logger.Printf("Fetching %s...", endpoint)
	return Fetch[T](ctx, c.poller, endpoint)
}

func shapeError(resource Resource, owner, repo string, err error) error {
	endpoint := Endpoint{owner: owner, repo: repo, resource: resource}
	return &StatsError{Kind: KindDecode, Endpoint: endpoint.String(), Err: err}
}

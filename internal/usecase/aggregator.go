// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/repostats/internal/domain"
	"github.com/naka-gawa/repostats/internal/gateway"
)

// Aggregator is the use case for aggregating GitHub repository statistics.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      *log.Logger
	concurrency int
}

// NewAggregator creates a new Aggregator instance.
// concurrency bounds how many repositories are processed at once.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ResolveRepos merges the explicitly requested repositories with every repository of org.
// Duplicates are dropped and the first occurrence wins.
func (a *Aggregator) ResolveRepos(ctx context.Context, org string, refs []domain.RepoRef) ([]domain.RepoRef, error) {
	all := append([]domain.RepoRef{}, refs...)
	if org != "" {
		orgRepos, err := a.fetcher.ListRepositories(ctx, org)
		if err != nil {
			return nil, err
		}
		all = append(all, orgRepos...)
	}

	seen := make(map[domain.RepoRef]bool, len(all))
	resolved := make([]domain.RepoRef, 0, len(all))
	for _, ref := range all {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		resolved = append(resolved, ref)
	}
	return resolved, nil
}

// repoData holds the raw statistics fetched for one repository.
type repoData struct {
	contributors  []domain.Contributor
	activity      []domain.WeeklyCommitActivity
	frequency     []domain.WeeklyCodeFrequency
	participation domain.WeeklyCommitCounts
	punchCard     domain.PunchCard
}

// Aggregate performs the main business logic.
// It fetches all statistics of every repository concurrently and summarizes them.
// The first failure cancels the remaining work and no partial result is returned.
func (a *Aggregator) Aggregate(ctx context.Context, repos []domain.RepoRef) ([]*domain.RepoStats, error) {
	a.logger.Printf("Usecase: Starting aggregation of %d repositories...", len(repos))

	results := make([]*domain.RepoStats, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, ref := range repos {
		eg.Go(func() error {
			data, err := a.fetchRepo(egCtx, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			results[i] = summarize(ref, data)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Println("Usecase: All data fetched successfully.")

	// Sort by repository name for consistent output.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	a.logger.Println("Usecase: Aggregation complete.")
	return results, nil
}

// fetchRepo fetches the five statistics resources of one repository concurrently.
func (a *Aggregator) fetchRepo(ctx context.Context, ref domain.RepoRef) (repoData, error) {
	var data repoData
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		data.contributors, err = a.fetcher.Contributors(egCtx, ref.Owner, ref.Name)
		return err
	})

	eg.Go(func() error {
		var err error
		data.activity, err = a.fetcher.CommitActivity(egCtx, ref.Owner, ref.Name)
		return err
	})

	eg.Go(func() error {
		var err error
		data.frequency, err = a.fetcher.CodeFrequency(egCtx, ref.Owner, ref.Name)
		return err
	})

	eg.Go(func() error {
		var err error
		data.participation, err = a.fetcher.Participation(egCtx, ref.Owner, ref.Name)
		return err
	})

	eg.Go(func() error {
		var err error
		data.punchCard, err = a.fetcher.PunchCard(egCtx, ref.Owner, ref.Name)
		return err
	})

	if err := eg.Wait(); err != nil {
		return repoData{}, err
	}
	return data, nil
}

func summarize(ref domain.RepoRef, data repoData) *domain.RepoStats {
	result := &domain.RepoStats{
		Name:         ref.String(),
		Contributors: len(data.contributors),
	}

	top := -1
	for _, c := range data.contributors {
		if c.Total > top {
			top = c.Total
			result.TopContributor = c.Author.Login
		}
	}

	for _, week := range data.activity {
		result.CommitsLastYear += week.Total
	}

	for _, week := range data.frequency {
		result.Additions += week.Additions
		if week.Deletions < 0 {
			result.Deletions -= week.Deletions
		} else {
			result.Deletions += week.Deletions
		}
	}

	result.WeeklyCommits = weeklySummary(data.participation.All)
	result.OwnerCommitShare = ownerShare(data.participation)

	if busiest, ok := data.punchCard.Busiest(); ok && busiest.CommitCount > 0 {
		result.BusiestSlot = &busiest
	}
	return result
}

// weeklySummary describes the distribution of weekly commit counts.
// An empty series yields the zero summary.
func weeklySummary(weeks []int) domain.WeeklySummary {
	data := stats.LoadRawData(weeks)
	if data.Len() == 0 {
		return domain.WeeklySummary{}
	}
	var summary domain.WeeklySummary
	summary.Mean, _ = stats.Mean(data)
	summary.Median, _ = stats.Median(data)
	summary.P90, _ = stats.Percentile(data, 90)
	summary.StdDev, _ = stats.StandardDeviation(data)
	return summary
}

// ownerShare is the fraction of commits made by the owner, or 0 when there are none.
func ownerShare(counts domain.WeeklyCommitCounts) float64 {
	total, err := stats.Sum(stats.LoadRawData(counts.All))
	if err != nil || total == 0 {
		return 0
	}
	owner, err := stats.Sum(stats.LoadRawData(counts.Owner))
	if err != nil {
		return 0
	}
	return owner / total
}

package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/repostats/internal/domain"
)

// RepositoryLister enumerates the repositories of an organization.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, org string) ([]domain.RepoRef, error)
}

// orgRepositoriesQuery pages through an organization's repositories.
type orgRepositoriesQuery struct {
	Organization struct {
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name       string
				IsArchived bool
				Owner      struct {
					Login string
				}
			}
		} `graphql:"repositories(first: 100, after: $cursor, orderBy: {field: NAME, direction: ASC})"`
	} `graphql:"organization(login: $org)"`
}

// ListRepositories returns every non-archived repository of the organization.
func (g *GitHubGateway) ListRepositories(ctx context.Context, org string) ([]domain.RepoRef, error) {
	if strings.TrimSpace(org) == "" {
		return nil, invalidArgument("organization", "must not be empty")
	}
	g.logger.Printf("Listing repositories of %s using GraphQL API...", org)

	variables := map[string]interface{}{
		"org":    githubv4.String(org),
		"cursor": (*githubv4.String)(nil),
	}
	var repos []domain.RepoRef
	for {
		var q orgRepositoriesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to list repositories of %s: %w", org, err)
		}
		for _, node := range q.Organization.Repositories.Nodes {
			if node.IsArchived {
				continue
			}
			repos = append(repos, domain.RepoRef{Owner: node.Owner.Login, Name: node.Name})
		}
		if !q.Organization.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Organization.Repositories.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Found %d repositories in %s.", len(repos), org)
	return repos, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repostats/internal/domain"
	"github.com/naka-gawa/repostats/internal/gateway"
	"github.com/naka-gawa/repostats/internal/report"
)

func resourceNames() []string {
	names := make([]string, 0, len(gateway.Resources))
	for _, r := range gateway.Resources {
		names = append(names, string(r))
	}
	return names
}

var fetchCmd = &cobra.Command{
	Use:       "fetch <resource>",
	Short:     "Fetches one statistics resource of a repository",
	Long:      `Fetches one statistics resource of a repository and prints it. Resources: ` + strings.Join(resourceNames(), ", ") + `.`,
	Example:   `  repostats fetch punch_card --owner octokit --repo octokit.net --format table`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: resourceNames(),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		logger := newLogger(cmd)

		resource := gateway.Resource(args[0])
		if !resource.Valid() {
			fmt.Fprintf(os.Stderr, "Error: unknown resource %q (expected one of %s)\n", args[0], strings.Join(resourceNames(), ", "))
			os.Exit(1)
		}
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")

		_, githubGateway, format, err := setup(cmd, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up: %v\n", err)
			os.Exit(1)
		}

		result, err := fetchResource(ctx, githubGateway, resource, owner, repo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch %s: %v\n", resource, err)
			os.Exit(1)
		}

		// Only the punch card has a table layout; everything else is printed as JSON.
		if card, ok := result.(domain.PunchCard); ok && format == report.FormatTable {
			err = report.WritePunchCardTable(os.Stdout, card)
		} else {
			err = report.WriteJSON(os.Stdout, result)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
			os.Exit(1)
		}
	},
}

func fetchResource(ctx context.Context, f gateway.StatisticsFetcher, resource gateway.Resource, owner, repo string) (any, error) {
	switch resource {
	case gateway.ResourceContributors:
		return f.Contributors(ctx, owner, repo)
	case gateway.ResourceCommitActivity:
		return f.CommitActivity(ctx, owner, repo)
	case gateway.ResourceCodeFrequency:
		return f.CodeFrequency(ctx, owner, repo)
	case gateway.ResourceParticipation:
		return f.Participation(ctx, owner, repo)
	case gateway.ResourcePunchCard:
		return f.PunchCard(ctx, owner, repo)
	}
	return nil, fmt.Errorf("unknown resource %q", resource)
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("owner", "", "Repository owner (required)")
	fetchCmd.Flags().String("repo", "", "Repository name (required)")
	fetchCmd.MarkFlagRequired("owner")
	fetchCmd.MarkFlagRequired("repo")
}

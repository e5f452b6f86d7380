package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repostats/internal/domain"
	"github.com/naka-gawa/repostats/internal/report"
	"github.com/naka-gawa/repostats/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes statistics of one or more repositories",
	Long: `Fetches all statistics of the given repositories (or of every repository
of an organization) and prints a per-repository summary.`,
	Example: `  repostats stats --repo octokit/octokit.net --repo octokit/go-octokit
  repostats stats --org octokit --format table`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		logger := newLogger(cmd)

		repoArgs, _ := cmd.Flags().GetStringSlice("repo")
		org, _ := cmd.Flags().GetString("org")
		if len(repoArgs) == 0 && org == "" {
			fmt.Fprintln(os.Stderr, "Error: at least one --repo or an --org is required.")
			os.Exit(1)
		}
		refs := make([]domain.RepoRef, 0, len(repoArgs))
		for _, arg := range repoArgs {
			ref, err := domain.ParseRepoRef(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			refs = append(refs, ref)
		}

		// Inject dependencies and run the main business logic.
		cfg, githubGateway, format, err := setup(cmd, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(githubGateway, logger, cfg.Concurrency)

		repos, err := aggregator.ResolveRepos(ctx, org, refs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve repositories: %v\n", err)
			os.Exit(1)
		}
		results, err := aggregator.Aggregate(ctx, repos)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate stats: %v\n", err)
			os.Exit(1)
		}

		if format == report.FormatTable {
			err = report.WriteStatsTable(os.Stdout, results)
		} else {
			err = report.WriteJSON(os.Stdout, results)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringSliceP("repo", "r", nil, "Repository as owner/name (repeatable)")
	statsCmd.Flags().StringP("org", "o", "", "Include every non-archived repository of this organization")
}

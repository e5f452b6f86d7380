// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repostats/internal/config"
	"github.com/naka-gawa/repostats/internal/gateway"
	"github.com/naka-gawa/repostats/internal/report"
)

var rootCmd = &cobra.Command{
	Use:   "repostats",
	Short: "A CLI tool to fetch GitHub repository statistics.",
	Long: `repostats fetches the statistics GitHub computes for a repository
(contributors, commit activity, code frequency, participation and punch card),
waiting while GitHub is still computing them, and summarizes them per repository.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("format", "f", string(report.FormatJSON), "Output format (json or table)")
}

// newLogger discards all logs unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// setup loads the configuration and builds the GitHub gateway.
func setup(cmd *cobra.Command, logger *log.Logger) (config.Config, *gateway.GitHubGateway, report.Format, error) {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return config.Config{}, nil, "", err
	}

	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return config.Config{}, nil, "", err
	}

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:          cfg.GitHubToken,
		BaseURL:        cfg.GitHubAPIURL,
		GraphQLURL:     cfg.GitHubGraphQLURL,
		RateLimitSleep: cfg.RateLimitSleep,
		Poll: gateway.PollPolicy{
			MaxAttempts:         cfg.PollMaxAttempts,
			InitialInterval:     cfg.PollInitialInterval,
			MaxInterval:         cfg.PollMaxInterval,
			MaxElapsed:          cfg.PollMaxElapsed,
			Multiplier:          cfg.PollMultiplier,
			RandomizationFactor: gateway.DefaultPollPolicy().RandomizationFactor,
		},
	}, logger)
	if err != nil {
		return config.Config{}, nil, "", err
	}
	return cfg, githubGateway, format, nil
}

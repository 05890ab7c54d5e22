// Package scheduler implements the scheduler command for recurring scrapes.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/config"
	"github.com/jonesrussell/subsift/internal/index"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/reddit"
	"github.com/jonesrussell/subsift/internal/scheduler"
	"github.com/jonesrussell/subsift/internal/scrape"
)

// DefaultSchedule scrapes every six hours.
const DefaultSchedule = "0 */6 * * *"

// Command returns the scheduler command for use in the root command.
func Command() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run recurring scrapes of the configured subreddits",
		Long: `Scheduler scrapes every configured subreddit on a cron schedule and
keeps running until interrupted. Each tick appends new titles to the
dataset and records a run in the ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			return run(cmd.Context(), deps, schedule)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", DefaultSchedule, "cron schedule for scrapes")

	return cmd
}

func run(ctx context.Context, deps cmdcommon.CommandDeps, schedule string) error {
	redditCfg := deps.Config.GetRedditConfig()
	if err := redditCfg.Validate(); err != nil {
		return err
	}
	scraperCfg := deps.Config.GetScraperConfig()
	if len(scraperCfg.Subreddits) == 0 {
		return fmt.Errorf("no subreddits configured; set scraper.subreddits")
	}

	store, err := cmdcommon.OpenStore(deps)
	if err != nil {
		return err
	}

	ledger, err := cmdcommon.OpenRunLog(deps)
	if err != nil {
		return err
	}
	defer ledger.Close()

	indexer, err := buildIndexer(deps.Config.GetElasticsearchConfig(), deps.Logger)
	if err != nil {
		return err
	}

	client := reddit.NewClient(reddit.Config{
		ClientID:         redditCfg.ClientID,
		ClientSecret:     redditCfg.ClientSecret,
		Username:         redditCfg.Username,
		Password:         redditCfg.Password,
		UserAgent:        redditCfg.UserAgent,
		AuthURL:          redditCfg.AuthURL,
		APIURL:           redditCfg.APIURL,
		RequestInterval:  scraperCfg.RequestInterval,
		RequestTimeout:   redditCfg.RequestTimeout,
		MaxRetries:       scraperCfg.MaxRetries,
		RetryInitialWait: scraperCfg.RetryInitialWait,
	}, deps.Logger)

	runner := scrape.NewRunner(client, store, ledger, indexer, deps.Logger)
	runScrape := func(runCtx context.Context, opts scrape.Options) error {
		_, runErr := runner.Run(runCtx, opts)
		return runErr
	}

	sched := scheduler.New(
		runScrape,
		scraperCfg.Subreddits,
		scraperCfg.Pages,
		scraperCfg.PageLimit,
		deps.Logger,
	)
	if err = sched.Start(ctx, schedule); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Block until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		deps.Logger.Info("Received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	sched.Stop()
	return nil
}

func buildIndexer(cfg *config.ElasticsearchConfig, log logger.Interface) (scrape.PostIndexer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	client, err := index.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	return index.New(client, cfg.IndexName, cfg.BulkSize, log), nil
}

// Package scrape implements the scrape command for fetching post titles
// from Reddit into the dataset.
package scrape

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/config"
	"github.com/jonesrussell/subsift/internal/index"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/reddit"
	"github.com/jonesrussell/subsift/internal/scrape"
)

// Command returns the scrape command for use in the root command.
func Command() *cobra.Command {
	var (
		subreddit string
		pages     int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape post titles from Reddit into the dataset",
		Long: `Scrape fetches the newest submissions from one or more subreddits
through the Reddit API and merges their titles into the CSV dataset.
Posts already present (by Reddit fullname ID) are kept unchanged.

Without --subreddit, every subreddit from the configuration is scraped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			return run(cmd.Context(), deps, subreddit, pages, limit)
		},
	}

	cmd.Flags().StringVarP(&subreddit, "subreddit", "r", "", "subreddit to scrape (default: all configured)")
	cmd.Flags().IntVarP(&pages, "pages", "p", 0, "listing pages to fetch per subreddit (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "posts per listing page, capped at 100 (default from config)")

	return cmd
}

func run(ctx context.Context, deps cmdcommon.CommandDeps, subreddit string, pages, limit int) error {
	redditCfg := deps.Config.GetRedditConfig()
	if err := redditCfg.Validate(); err != nil {
		return err
	}
	scraperCfg := deps.Config.GetScraperConfig()

	subreddits := scraperCfg.Subreddits
	if subreddit != "" {
		subreddits = []string{subreddit}
	}
	if len(subreddits) == 0 {
		return fmt.Errorf("no subreddits configured; use --subreddit or set scraper.subreddits")
	}
	if pages <= 0 {
		pages = scraperCfg.Pages
	}
	if limit <= 0 || limit > config.DefaultPageLimit {
		limit = scraperCfg.PageLimit
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

	for _, sub := range subreddits {
		deps.Logger.Info("Scraping subreddit", "subreddit", sub, "pages", pages)
		run, runErr := runner.Run(ctx, scrape.Options{
			Subreddit: sub,
			Pages:     pages,
			PageLimit: limit,
		})
		if runErr != nil {
			return fmt.Errorf("scrape of r/%s failed: %w", sub, runErr)
		}
		fmt.Printf("r/%s: fetched %d posts, %d new, dataset now %d\n",
			sub, run.PostsFetched, run.PostsAdded, run.DatasetTotal)
	}
	return nil
}

// buildIndexer returns a post indexer when Elasticsearch is enabled, nil
// otherwise.
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

// Package search implements the search command for querying indexed post
// titles in Elasticsearch.
package search

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/index"
)

// DefaultSearchSize defines the default number of search results to return
// when no size is specified via command-line flags.
const DefaultSearchSize = 10

// Command returns the search command for use in the root command.
func Command() *cobra.Command {
	var (
		query     string
		subreddit string
		size      int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search indexed post titles",
		Long: `Search runs a full-text query against the Elasticsearch index of
scraped posts. Requires elasticsearch.enabled in the configuration and
posts indexed by previous scrapes.

Examples:
  # Search all subreddits
  subsift search -q "borrow checker"

  # Restrict to one subreddit
  subsift search -q generics -r golang -s 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			esCfg := deps.Config.GetElasticsearchConfig()
			if !esCfg.Enabled {
				return fmt.Errorf("elasticsearch is disabled; set elasticsearch.enabled to use search")
			}

			client, err := index.NewClient(esCfg, deps.Logger)
			if err != nil {
				return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
			}
			idx := index.New(client, esCfg.IndexName, esCfg.BulkSize, deps.Logger)

			hits, err := idx.SearchTitles(cmd.Context(), query, subreddit, size)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(hits) == 0 {
				fmt.Println("No results.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Score", "Subreddit", "Title", "ID"})
			for _, hit := range hits {
				t.AppendRow(table.Row{
					fmt.Sprintf("%.2f", hit.Score),
					hit.Post.Subreddit,
					hit.Post.Title,
					hit.Post.ID,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "query string to search for")
	cmd.Flags().StringVarP(&subreddit, "subreddit", "r", "", "restrict results to one subreddit")
	cmd.Flags().IntVarP(&size, "size", "s", DefaultSearchSize, "number of results to return")

	if err := cmd.MarkFlagRequired("query"); err != nil {
		fmt.Fprintf(os.Stderr, "Error marking query flag as required: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

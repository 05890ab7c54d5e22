package dataset

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonesrussell/subsift/internal/domain"
)

// LabelCount is the number of posts carrying one subreddit label.
type LabelCount struct {
	Label string
	Count int
	Share float64
}

// Stats summarizes the dataset for reporting and the HTTP API.
type Stats struct {
	Total  int          `json:"total"`
	Labels []LabelCount `json:"labels"`
	// BaselineAccuracy is the accuracy of always predicting the majority
	// label: the share of the largest class.
	BaselineAccuracy float64 `json:"baseline_accuracy"`
	MajorityLabel    string  `json:"majority_label"`
	// Title length summaries.
	MeanTitleChars  float64 `json:"mean_title_chars"`
	MeanTitleTokens float64 `json:"mean_title_tokens"`
	MinTitleChars   int     `json:"min_title_chars"`
	MaxTitleChars   int     `json:"max_title_chars"`
}

// ComputeStats derives descriptive statistics over the posts. An empty
// input yields ErrEmptyDataset so callers can distinguish "nothing scraped
// yet" from a real dataset.
func ComputeStats(posts []domain.Post) (*Stats, error) {
	if len(posts) == 0 {
		return nil, ErrEmptyDataset
	}
	stats := &Stats{Total: len(posts)}

	counts := make(map[string]int)
	var charSum, tokenSum int
	stats.MinTitleChars = utf8.RuneCountInString(posts[0].Title)

	for i := range posts {
		counts[posts[i].Subreddit]++

		chars := utf8.RuneCountInString(posts[i].Title)
		charSum += chars
		tokenSum += len(strings.Fields(posts[i].Title))
		if chars < stats.MinTitleChars {
			stats.MinTitleChars = chars
		}
		if chars > stats.MaxTitleChars {
			stats.MaxTitleChars = chars
		}
	}

	labels := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		labels = append(labels, LabelCount{
			Label: label,
			Count: count,
			Share: float64(count) / float64(len(posts)),
		})
	}
	// Largest class first; ties broken alphabetically for stable output.
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Count != labels[j].Count {
			return labels[i].Count > labels[j].Count
		}
		return labels[i].Label < labels[j].Label
	})

	stats.Labels = labels
	stats.MajorityLabel = labels[0].Label
	stats.BaselineAccuracy = labels[0].Share
	stats.MeanTitleChars = float64(charSum) / float64(len(posts))
	stats.MeanTitleTokens = float64(tokenSum) / float64(len(posts))
	return stats, nil
}

package dataset

import (
	"fmt"
	"math/rand"

	"github.com/jonesrussell/subsift/internal/domain"
)

// Split divides posts into train and test sets. The split is stratified:
// each label contributes testFraction of its posts to the test set, so class
// balance survives the split. The shuffle is seeded for reproducibility.
func Split(posts []domain.Post, testFraction float64, seed int64) (train, test []domain.Post, err error) {
	if len(posts) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}

	byLabel := make(map[string][]domain.Post)
	var order []string
	for _, p := range posts {
		if _, ok := byLabel[p.Subreddit]; !ok {
			order = append(order, p.Subreddit)
		}
		byLabel[p.Subreddit] = append(byLabel[p.Subreddit], p)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, label := range order {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		cut := int(float64(len(group)) * testFraction)
		// Keep at least one sample on each side when the group allows it.
		if cut == 0 && len(group) > 1 {
			cut = 1
		}
		test = append(test, group[:cut]...)
		train = append(train, group[cut:]...)
	}

	// Interleave labels so downstream consumers never see label-sorted data.
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// Filter returns only the posts whose label is in keep. An empty keep set
// returns the input unchanged.
func Filter(posts []domain.Post, keep []string) []domain.Post {
	if len(keep) == 0 {
		return posts
	}
	allowed := make(map[string]struct{}, len(keep))
	for _, label := range keep {
		allowed[label] = struct{}{}
	}

	filtered := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := allowed[p.Subreddit]; ok {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

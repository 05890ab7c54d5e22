package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/scheduler"
	"github.com/jonesrussell/subsift/internal/scrape"
)

func TestStart_RequiresSubreddits(t *testing.T) {
	run := func(_ context.Context, _ scrape.Options) error { return nil }
	s := scheduler.New(run, nil, 10, 100, logger.NewNoOp())

	err := s.Start(context.Background(), "@every 1h")
	require.Error(t, err)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	run := func(_ context.Context, _ scrape.Options) error { return nil }
	s := scheduler.New(run, []string{"golang"}, 10, 100, logger.NewNoOp())

	err := s.Start(context.Background(), "not a cron spec")
	require.Error(t, err)
}

func TestScheduler_TriggersEachSubreddit(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)
	run := func(_ context.Context, opts scrape.Options) error {
		mu.Lock()
		defer mu.Unlock()
		seen[opts.Subreddit]++
		return nil
	}

	s := scheduler.New(run, []string{"golang", "rust"}, 3, 50, logger.NewNoOp())
	// @every floors at one second, so give the ticker room for two fires.
	require.NoError(t, s.Start(context.Background(), "@every 1s"))
	defer s.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["golang"] > 0 && seen["rust"] > 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	started := 0
	run := func(_ context.Context, _ scrape.Options) error {
		mu.Lock()
		started++
		mu.Unlock()
		close(entered)
		<-block
		return nil
	}

	s := scheduler.New(run, []string{"golang"}, 3, 50, logger.NewNoOp())
	require.NoError(t, s.Start(context.Background(), "@every 1h"))

	// First tick blocks inside the scrape; later ticks must be skipped.
	go s.Trigger("golang")
	<-entered
	s.Trigger("golang")
	s.Trigger("golang")

	close(block)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, started)
}

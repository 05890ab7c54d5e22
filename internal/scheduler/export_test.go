package scheduler

// Trigger fires one schedule tick for a subreddit synchronously, bypassing
// cron timing.
func (s *Scheduler) Trigger(subreddit string) {
	s.trigger(subreddit)
}

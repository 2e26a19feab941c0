package session

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper is implemented by stores that need periodic cleanup.
type Sweeper interface {
	Sweep() int
}

// StartSweeper runs s.Sweep on the given cron schedule ("@every 10m",
// "*/5 * * * *", ...). Stop the returned scheduler on shutdown.
func StartSweeper(schedule string, s Sweeper) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := s.Sweep(); n > 0 {
			slog.Debug("expired sessions removed", "count", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}
	c.Start()
	return c, nil
}

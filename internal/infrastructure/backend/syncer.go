package backend

import (
	"context"
	"time"
)

const defaultSyncInterval = 30 * time.Second

// RunAutoSync imports channel orders on a fixed interval while the
// channel.auto_sync flag is enabled, until ctx is cancelled. Flipping the flag
// pauses and resumes the loop without a restart.
func (s *Server) RunAutoSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.store.flagEnabled("channel.auto_sync") {
				continue
			}
			results := s.syncChannels()
			s.log.Debug().Interface("results", results).Msg("scheduled channel sync")
		}
	}
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aasfg1234/vote-system/internal/domain"
	"github.com/aasfg1234/vote-system/lib/logger/sl"
)

// RunReaper sweeps periodically until ctx is cancelled, terminating
// meetings idle beyond their configured timeout.
func (s *MeetingService) RunReaper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepIdle(ctx)
		}
	}
}

// SweepIdle performs one reaper pass.
func (s *MeetingService) SweepIdle(ctx context.Context) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		s.log.Error("reaper sweep failed", sl.Err(err))
		return
	}

	now := time.Now()
	for _, meeting := range meetings {
		meeting.Mutex.RLock()
		expired := meeting.Status != domain.StatusTerminated && meeting.IdleExpired(now)
		meeting.Mutex.RUnlock()

		if expired {
			s.log.Info("terminating idle meeting", slog.String("pin", meeting.Pin))
			s.terminate(ctx, meeting, "auto-timeout")
		}
	}
}

package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/aasfg1234/vote-system/internal/domain"
)

// StartVote opens a new poll. Valid from any non-terminated state; a
// still-running poll is archived and replaced. Requires at least two
// options.
func (s *MeetingService) StartVote(ctx context.Context, client *domain.Client, params StartVoteParams) error {
	const op = "service.meeting.startVote"

	meeting, ok := s.hostMeeting(ctx, client)
	if !ok {
		return nil
	}
	if len(params.Options) < 2 {
		return nil
	}

	options := make([]domain.Option, len(params.Options))
	for i, opt := range params.Options {
		options[i] = domain.Option{Text: opt.Text, Color: opt.Color}
	}

	duration := params.Duration
	if duration > s.cfg.MaxPollSeconds {
		duration = s.cfg.MaxPollSeconds
	}

	meeting.Mutex.Lock()
	if meeting.Status == domain.StatusTerminated {
		meeting.Mutex.Unlock()
		return nil
	}
	meeting.Touch()
	s.cancelCountdownLocked(meeting)

	voteID := time.Now().UnixMilli()
	if voteID <= meeting.VoteID {
		// two polls inside one millisecond still need distinct ids
		voteID = meeting.VoteID + 1
	}
	archived := meeting.BeginPoll(params.Question, options, domain.Settings{
		AllowMulti: params.AllowMulti,
		BlindMode:  params.BlindMode,
		Duration:   duration,
	}, voteID)

	if duration > 0 {
		meeting.EndTime = time.Now().Add(time.Duration(duration) * time.Second)
		timerCtx, cancel := context.WithCancel(context.Background())
		meeting.CancelCountdown = cancel
		go s.runCountdown(timerCtx, meeting, voteID)
	}
	meeting.Mutex.Unlock()

	if archived != nil {
		s.pushHistory(meeting)
	}

	s.log.Info("vote started",
		slog.String("op", op),
		slog.String("pin", meeting.Pin),
		slog.Int64("vote_id", voteID),
		slog.Int("options", len(options)),
		slog.Int("duration", duration),
	)

	s.broadcastState(meeting)
	return nil
}

// StopVote closes the active poll and archives it. Valid only while
// voting.
func (s *MeetingService) StopVote(ctx context.Context, client *domain.Client) error {
	meeting, ok := s.hostMeeting(ctx, client)
	if !ok {
		return nil
	}

	meeting.Mutex.Lock()
	if meeting.Status != domain.StatusVoting {
		meeting.Mutex.Unlock()
		return nil
	}
	meeting.Touch()
	s.cancelCountdownLocked(meeting)
	meeting.Status = domain.StatusEnded
	meeting.EndTime = time.Time{}
	archived := meeting.ArchiveCurrent()
	meeting.Mutex.Unlock()

	if archived != nil {
		s.pushHistory(meeting)
	}
	s.broadcastState(meeting)
	return nil
}

// TerminateMeeting is the host-requested termination.
func (s *MeetingService) TerminateMeeting(ctx context.Context, client *domain.Client) error {
	meeting, ok := s.hostMeeting(ctx, client)
	if !ok {
		return nil
	}
	meeting.Mutex.Lock()
	meeting.Touch()
	meeting.Mutex.Unlock()
	s.terminate(ctx, meeting, "manual")
	return nil
}

// terminate drives any meeting to the terminal state: archive if
// needed, cancel the countdown, mark every ledger entry offline, notify
// on auto-timeout, and schedule deferred deletion from the registry so
// late references (exports, rejoin attempts) still resolve briefly.
func (s *MeetingService) terminate(ctx context.Context, meeting *domain.Meeting, reason string) {
	const op = "service.meeting.terminate"

	meeting.Mutex.Lock()
	if meeting.Status == domain.StatusTerminated {
		meeting.Mutex.Unlock()
		return
	}
	archived := meeting.ArchiveCurrent()
	s.cancelCountdownLocked(meeting)
	meeting.Status = domain.StatusTerminated
	meeting.Question = ""
	meeting.EndTime = time.Time{}
	meeting.Voters.MarkAllOffline()
	clients := snapshotClients(meeting)
	meeting.Mutex.Unlock()

	if archived != nil {
		s.pushHistory(meeting)
	}
	s.broadcastState(meeting)

	if reason == "auto-timeout" {
		for _, c := range clients {
			c.EnqueueEvent(domain.Event{Type: domain.EvForceTerminated, Data: msgIdleTerminated})
		}
	}

	s.log.Info("meeting terminated",
		slog.String("op", op),
		slog.String("pin", meeting.Pin),
		slog.String("reason", reason),
	)

	pin := meeting.Pin
	time.AfterFunc(s.cfg.DeletionGrace, func() {
		_ = s.meetings.Delete(context.Background(), pin)
		s.broadcastAdminList(context.Background())
	})

	s.broadcastAdminList(ctx)
}

// runCountdown ticks once per second for the poll identified by
// (meeting, voteID). A tick that finds a different voteId or a
// non-voting status belongs to a superseded poll and does nothing.
func (s *MeetingService) runCountdown(ctx context.Context, meeting *domain.Meeting, voteID int64) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		meeting.Mutex.Lock()
		if meeting.Status != domain.StatusVoting || meeting.VoteID != voteID {
			meeting.Mutex.Unlock()
			return
		}

		left := int(math.Round(time.Until(meeting.EndTime).Seconds()))
		if left <= 0 {
			s.cancelCountdownLocked(meeting)
			meeting.Status = domain.StatusEnded
			meeting.EndTime = time.Time{}
			archived := meeting.ArchiveCurrent()
			meeting.Mutex.Unlock()

			if archived != nil {
				s.pushHistory(meeting)
			}
			s.broadcastState(meeting)
			return
		}

		clients := snapshotClients(meeting)
		meeting.Mutex.Unlock()

		for _, c := range clients {
			c.EnqueueEvent(domain.Event{Type: domain.EvTimerTick, Data: left})
		}
	}
}

// cancelCountdownLocked stops the armed countdown before any status
// change so a stale timer cannot resurrect a superseded poll. Caller
// holds the meeting lock.
func (s *MeetingService) cancelCountdownLocked(meeting *domain.Meeting) {
	if meeting.CancelCountdown != nil {
		meeting.CancelCountdown()
		meeting.CancelCountdown = nil
	}
}

func snapshotClients(meeting *domain.Meeting) []*domain.Client {
	clients := make([]*domain.Client, 0, len(meeting.Clients))
	for _, c := range meeting.Clients {
		clients = append(clients, c)
	}
	return clients
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/aasfg1234/vote-system/internal/config"
	"github.com/aasfg1234/vote-system/internal/domain"
	"github.com/aasfg1234/vote-system/internal/export"
	"github.com/aasfg1234/vote-system/internal/ratelimit"
	"github.com/aasfg1234/vote-system/internal/repository"
	"github.com/aasfg1234/vote-system/lib/logger/sl"
)

var (
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrMeetingTerminated = errors.New("meeting terminated")
	ErrMeetingCapacity   = errors.New("meeting capacity reached")
	ErrNotAuthorized     = errors.New("not authorized")
)

const (
	msgInvalidPin      = "PIN 碼無效"
	msgMeetingEnded    = "會議已結束"
	msgCapacityReached = "會議數量已達上限，請稍後再試"
	msgIdleTerminated  = "系統閒置過久自動關閉"
)

// MeetingService owns the authoritative meeting state: registry access,
// the lifecycle state machine, tally broadcast fanout, countdown timers
// and the idle reaper. Per-meeting mutation is serialized by the
// meeting's own mutex, one inbound event at a time.
type MeetingService struct {
	meetings repository.MeetingRepository
	log      *slog.Logger
	cfg      config.MeetingConfig

	createLimiter *ratelimit.Limiter
	loginLimiter  *ratelimit.Limiter
	adminPassword string

	mu      sync.RWMutex
	admins  map[string]*domain.Client
	presets []domain.Preset
}

func NewMeetingService(meetings repository.MeetingRepository, cfg *config.Config, log *slog.Logger) *MeetingService {
	if log == nil {
		log = slog.Default()
	}
	return &MeetingService{
		meetings:      meetings,
		log:           log,
		cfg:           cfg.Meeting,
		createLimiter: ratelimit.New(cfg.RateLimit.CreateLimit, cfg.RateLimit.Window),
		loginLimiter:  ratelimit.New(cfg.RateLimit.LoginLimit, cfg.RateLimit.Window),
		adminPassword: cfg.Admin.Password,
		admins:        make(map[string]*domain.Client),
		presets:       domain.DefaultPresets(),
	}
}

// CreateMeeting allocates a collision-free 4-digit pin and stores a
// fresh meeting in waiting state, attaching the host capability to the
// creating connection.
func (s *MeetingService) CreateMeeting(ctx context.Context, client *domain.Client, hostName string) error {
	const op = "service.meeting.create"
	log := s.log.With(slog.String("op", op), slog.String("ip", client.IP))

	if !s.createLimiter.Allow(client.IP) {
		log.Warn("meeting creation rate limited")
		return nil
	}

	var meeting *domain.Meeting
	for {
		s.mu.RLock()
		presets := append([]domain.Preset(nil), s.presets...)
		s.mu.RUnlock()

		meeting = domain.NewMeeting(generatePin(), hostName, presets, s.cfg.IdleTimeout)
		if err := s.meetings.CreateIfUnderCap(ctx, meeting, s.cfg.MaxMeetings); err != nil {
			if errors.Is(err, repository.ErrPinExists) {
				continue
			}
			if errors.Is(err, repository.ErrCapacityReached) {
				client.EnqueueEvent(domain.Event{Type: domain.EvCreateFail, Data: map[string]any{
					"error": msgCapacityReached,
				}})
				return ErrMeetingCapacity
			}
			return err
		}
		break
	}

	client.SetSession(meeting.Pin, domain.RoleHost, "", meeting.HostName)

	meeting.Mutex.Lock()
	meeting.Clients[client.ID] = client
	meeting.Mutex.Unlock()

	client.EnqueueEvent(domain.Event{Type: domain.EvCreateSuccess, Data: map[string]any{
		"pin":      meeting.Pin,
		"hostName": meeting.HostName,
	}})

	log.Info("meeting created", slog.String("pin", meeting.Pin), slog.String("host", meeting.HostName))

	s.broadcastState(meeting)
	s.broadcastAdminList(ctx)
	return nil
}

// ResumeHost reattaches a host connection to an existing, non-terminated
// meeting, replaying the archive history.
func (s *MeetingService) ResumeHost(ctx context.Context, client *domain.Client, pin string) error {
	const op = "service.meeting.resumeHost"

	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		client.EnqueueEvent(domain.Event{Type: domain.EvHostResumeFail})
		return ErrMeetingNotFound
	}

	meeting.Mutex.Lock()
	if meeting.Status == domain.StatusTerminated {
		meeting.Mutex.Unlock()
		client.EnqueueEvent(domain.Event{Type: domain.EvHostResumeFail})
		return ErrMeetingTerminated
	}
	client.SetSession(pin, domain.RoleHost, "", meeting.HostName)
	meeting.Clients[client.ID] = client
	meeting.Touch()
	hostName := meeting.HostName
	history := append([]domain.Snapshot(nil), meeting.History...)
	meeting.Mutex.Unlock()

	client.EnqueueEvent(domain.Event{Type: domain.EvHostResumeSuccess, Data: map[string]any{
		"pin":      pin,
		"hostName": hostName,
		"history":  history,
	}})

	s.log.Info("host resumed", slog.String("op", op), slog.String("pin", pin))

	s.broadcastState(meeting)
	return nil
}

// Join attaches a participant connection. A rejoining device gets its
// current-poll selection restored, but only while the meeting is voting.
func (s *MeetingService) Join(ctx context.Context, client *domain.Client, pin, username, deviceID string) error {
	const op = "service.meeting.join"

	pin = domain.Truncate(pin, 4)
	username = domain.Truncate(username, domain.MaxUsernameLength)

	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		client.EnqueueEvent(joinFailed(msgInvalidPin))
		return ErrMeetingNotFound
	}

	meeting.Mutex.Lock()
	if meeting.Status == domain.StatusTerminated {
		meeting.Mutex.Unlock()
		client.EnqueueEvent(joinFailed(msgMeetingEnded))
		return ErrMeetingTerminated
	}

	client.SetSession(pin, domain.RoleParticipant, deviceID, username)
	meeting.Clients[client.ID] = client
	meeting.Touch()

	var restored []int
	if deviceID != "" {
		restored = meeting.Voters.RegisterOrUpdate(deviceID, username, meeting.Status == domain.StatusVoting)
	}
	meeting.Mutex.Unlock()

	client.EnqueueEvent(domain.Event{Type: domain.EvJoined, Data: map[string]any{"success": true}})
	if restored != nil {
		client.EnqueueEvent(domain.Event{Type: domain.EvVoteConfirmed, Data: restored})
	}

	s.log.Info("participant joined",
		slog.String("op", op),
		slog.String("pin", pin),
		slog.String("username", username),
	)

	s.broadcastState(meeting)
	s.broadcastAdminList(ctx)
	return nil
}

// SubmitVote overwrites the device's selection for the active poll.
// Dropped when the meeting is not voting or the caller holds the host
// capability. Votes referencing options outside the current poll are
// filtered out.
func (s *MeetingService) SubmitVote(ctx context.Context, client *domain.Client, votes []int, username, deviceID string) error {
	pin, role, _ := client.Session()
	if pin == "" || role == domain.RoleHost {
		return nil
	}
	if deviceID == "" {
		return nil
	}

	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		return nil
	}

	username = domain.Truncate(username, domain.MaxUsernameLength)

	meeting.Mutex.Lock()
	if meeting.Status != domain.StatusVoting {
		meeting.Mutex.Unlock()
		return nil
	}
	meeting.Touch()

	safeVotes := make([]int, 0, len(votes))
	seen := make(map[int]bool, len(votes))
	for _, v := range votes {
		if v >= 0 && v < len(meeting.Options) && !seen[v] {
			seen[v] = true
			safeVotes = append(safeVotes, v)
		}
	}
	meeting.Voters.RecordVote(deviceID, username, safeVotes)
	meeting.Mutex.Unlock()

	s.broadcastState(meeting)
	client.EnqueueEvent(domain.Event{Type: domain.EvVoteConfirmed, Data: safeVotes})
	return nil
}

// RequestExport returns the meeting's archive history as CSV text to
// the host connection.
func (s *MeetingService) RequestExport(ctx context.Context, client *domain.Client) error {
	meeting, ok := s.hostMeeting(ctx, client)
	if !ok {
		return nil
	}

	meeting.Mutex.Lock()
	meeting.Touch()
	history := append([]domain.Snapshot(nil), meeting.History...)
	meeting.Mutex.Unlock()

	client.EnqueueEvent(domain.Event{Type: domain.EvExportData, Data: export.HistoryCSV(history)})
	return nil
}

// Disconnect detaches a connection: the device's ledger entry is marked
// offline but keeps its votes so the device can resume.
func (s *MeetingService) Disconnect(ctx context.Context, client *domain.Client) error {
	s.mu.Lock()
	delete(s.admins, client.ID)
	s.mu.Unlock()

	pin, _, deviceID := client.Session()
	if pin != "" {
		if meeting, err := s.meetings.Get(ctx, pin); err == nil {
			meeting.Mutex.Lock()
			delete(meeting.Clients, client.ID)
			if deviceID != "" {
				meeting.Voters.MarkOffline(deviceID)
			}
			meeting.Mutex.Unlock()
			s.broadcastState(meeting)
		}
	}

	client.Close()
	s.broadcastAdminList(ctx)
	return nil
}

func (s *MeetingService) GetMeeting(ctx context.Context, pin string) (*domain.Meeting, error) {
	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		return nil, ErrMeetingNotFound
	}
	return meeting, nil
}

// hostMeeting resolves the caller's meeting when the caller holds the
// host capability for it. Unauthorized callers are silently refused.
func (s *MeetingService) hostMeeting(ctx context.Context, client *domain.Client) (*domain.Meeting, bool) {
	pin, _, _ := client.Session()
	if pin == "" || !client.IsHostOf(pin) {
		return nil, false
	}
	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		s.log.Debug("host meeting lookup failed", slog.String("pin", pin), sl.Err(err))
		return nil, false
	}
	return meeting, true
}

func joinFailed(msg string) domain.Event {
	return domain.Event{Type: domain.EvJoined, Data: map[string]any{
		"success": false,
		"error":   msg,
	}}
}

func generatePin() string {
	return fmt.Sprintf("%04d", 1000+rand.Intn(9000))
}

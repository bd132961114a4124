package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/aasfg1234/vote-system/internal/domain"
	"github.com/aasfg1234/vote-system/lib/logger/sl"
)

const (
	minTimeoutHours = 0.5
	maxTimeoutHours = 24
)

// AdminMeetingInfo is one row of the monitoring list pushed to admins.
type AdminMeetingInfo struct {
	Pin            string        `json:"pin"`
	HostName       string        `json:"hostName"`
	Status         domain.Status `json:"status"`
	ActiveUsers    int           `json:"activeUsers"`
	RemainingTime  int           `json:"remainingTime"`  // minutes until idle termination
	TimeoutSetting int           `json:"timeoutSetting"` // configured timeout, hours
}

// AdminLogin grants the admin capability. Excess attempts within the
// window surface as plain login failure.
func (s *MeetingService) AdminLogin(ctx context.Context, client *domain.Client, password string) error {
	const op = "service.admin.login"
	log := s.log.With(slog.String("op", op), slog.String("ip", client.IP))

	if !s.loginLimiter.Allow(client.IP) {
		log.Warn("admin login rate limited")
		client.EnqueueEvent(domain.Event{Type: domain.EvAdminLoginFail})
		return nil
	}

	if password != s.adminPassword {
		log.Warn("admin login rejected")
		client.EnqueueEvent(domain.Event{Type: domain.EvAdminLoginFail})
		return nil
	}

	client.SetAdmin(true)
	s.mu.Lock()
	s.admins[client.ID] = client
	s.mu.Unlock()

	client.EnqueueEvent(domain.Event{Type: domain.EvAdminLoginOK})
	log.Info("admin logged in")

	s.broadcastAdminList(ctx)
	return nil
}

// AdminTerminate force-terminates an arbitrary meeting by pin.
func (s *MeetingService) AdminTerminate(ctx context.Context, client *domain.Client, pin string) error {
	if !client.IsAdmin() {
		return nil
	}
	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		return nil
	}
	s.terminate(ctx, meeting, "admin-force")
	return nil
}

// AdminUpdateTimeout adjusts one meeting's idle window, clamped to
// 0.5–24 hours.
func (s *MeetingService) AdminUpdateTimeout(ctx context.Context, client *domain.Client, pin string, hours float64) error {
	if !client.IsAdmin() {
		return nil
	}
	meeting, err := s.meetings.Get(ctx, pin)
	if err != nil {
		return nil
	}

	hours = math.Max(minTimeoutHours, math.Min(hours, maxTimeoutHours))

	meeting.Mutex.Lock()
	meeting.IdleTimeout = time.Duration(hours * float64(time.Hour))
	meeting.Mutex.Unlock()

	s.log.Info("meeting timeout updated", slog.String("pin", pin), slog.Float64("hours", hours))

	s.broadcastAdminList(ctx)
	return nil
}

// AdminAddPreset appends a template to the global list and to every
// tracked meeting, then rebroadcasts so hosts see it immediately.
func (s *MeetingService) AdminAddPreset(ctx context.Context, client *domain.Client, preset domain.Preset) error {
	if !client.IsAdmin() {
		return nil
	}
	if preset.Name == "" || preset.Question == "" || len(preset.Options) == 0 {
		return nil
	}

	s.mu.Lock()
	s.presets = append(s.presets, preset)
	s.mu.Unlock()

	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return err
	}
	for _, meeting := range meetings {
		meeting.Mutex.Lock()
		meeting.Presets = append(meeting.Presets, preset)
		meeting.Mutex.Unlock()
		s.broadcastState(meeting)
	}

	client.EnqueueEvent(domain.Event{Type: domain.EvAdminMsg, Data: "全域模板已新增"})
	return nil
}

// AdminChangePassword is advisory only: the password is sourced from
// the environment and cannot be rotated at runtime.
func (s *MeetingService) AdminChangePassword(ctx context.Context, client *domain.Client) error {
	if !client.IsAdmin() {
		return nil
	}
	client.EnqueueEvent(domain.Event{
		Type: domain.EvAdminMsg,
		Data: "基於安全考量，請透過修改環境變數 (ADMIN_PASSWORD) 來變更密碼",
	})
	return nil
}

// broadcastAdminList recomputes the monitoring list and pushes it to
// every logged-in admin.
func (s *MeetingService) broadcastAdminList(ctx context.Context) {
	s.mu.RLock()
	admins := make([]*domain.Client, 0, len(s.admins))
	for _, c := range s.admins {
		admins = append(admins, c)
	}
	s.mu.RUnlock()

	if len(admins) == 0 {
		return
	}

	meetings, err := s.meetings.List(ctx)
	if err != nil {
		s.log.Error("admin list failed", sl.Err(err))
		return
	}

	now := time.Now()
	list := make([]AdminMeetingInfo, 0, len(meetings))
	for _, meeting := range meetings {
		meeting.Mutex.RLock()
		list = append(list, AdminMeetingInfo{
			Pin:            meeting.Pin,
			HostName:       meeting.HostName,
			Status:         meeting.Status,
			ActiveUsers:    len(meeting.Clients),
			RemainingTime:  int(math.Round(meeting.IdleRemaining(now).Minutes())),
			TimeoutSetting: int(math.Round(meeting.IdleTimeout.Hours())),
		})
		meeting.Mutex.RUnlock()
	}

	for _, c := range admins {
		c.EnqueueEvent(domain.Event{Type: domain.EvAdminListUpdate, Data: list})
	}
}

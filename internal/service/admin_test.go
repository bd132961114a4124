package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aasfg1234/vote-system/internal/config"
	"github.com/aasfg1234/vote-system/internal/domain"
)

func loginAdmin(t *testing.T, s *MeetingService) *domain.Client {
	t.Helper()
	admin := domain.NewClient("10.0.0.99")
	require.NoError(t, s.AdminLogin(context.Background(), admin, "secret"))
	events := drainEvents(admin)
	require.True(t, hasEventOfType(events, domain.EvAdminLoginOK))
	return admin
}

func TestAdminLoginWrongPassword(t *testing.T) {
	s := newTestService(t)
	client := domain.NewClient("10.0.0.99")

	require.NoError(t, s.AdminLogin(context.Background(), client, "wrong"))

	assert.True(t, hasEventOfType(drainEvents(client), domain.EvAdminLoginFail))
	assert.False(t, client.IsAdmin())
}

func TestAdminLoginRateLimited(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.RateLimit.LoginLimit = 2
	})

	for i := 0; i < 2; i++ {
		c := domain.NewClient("10.0.0.99")
		require.NoError(t, s.AdminLogin(context.Background(), c, "wrong"))
	}

	// correct password, but the window is exhausted for this identity
	blocked := domain.NewClient("10.0.0.99")
	require.NoError(t, s.AdminLogin(context.Background(), blocked, "secret"))

	assert.True(t, hasEventOfType(drainEvents(blocked), domain.EvAdminLoginFail))
	assert.False(t, blocked.IsAdmin())
}

func TestAdminListPushedOnLogin(t *testing.T) {
	s := newTestService(t)
	host := domain.NewClient("10.0.0.1")
	pin := createMeeting(t, s, host, "Host")

	admin := domain.NewClient("10.0.0.99")
	require.NoError(t, s.AdminLogin(context.Background(), admin, "secret"))

	event := lastEventOfType(t, drainEvents(admin), domain.EvAdminListUpdate)
	list, ok := event.Data.([]AdminMeetingInfo)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, pin, list[0].Pin)
	assert.Equal(t, "Host", list[0].HostName)
	assert.Equal(t, domain.StatusWaiting, list[0].Status)
	assert.Equal(t, 1, list[0].TimeoutSetting)
}

func TestAdminTerminate(t *testing.T) {
	s := newTestService(t)
	host := domain.NewClient("10.0.0.1")
	pin := createMeeting(t, s, host, "Host")
	admin := loginAdmin(t, s)

	require.NoError(t, s.AdminTerminate(context.Background(), admin, pin))

	meeting, err := s.GetMeeting(context.Background(), pin)
	require.NoError(t, err)
	meeting.Mutex.RLock()
	defer meeting.Mutex.RUnlock()
	assert.Equal(t, domain.StatusTerminated, meeting.Status)
}

func TestAdminTerminateRequiresCapability(t *testing.T) {
	s := newTestService(t)
	host := domain.NewClient("10.0.0.1")
	pin := createMeeting(t, s, host, "Host")

	intruder := domain.NewClient("10.0.0.66")
	require.NoError(t, s.AdminTerminate(context.Background(), intruder, pin))

	meeting, err := s.GetMeeting(context.Background(), pin)
	require.NoError(t, err)
	meeting.Mutex.RLock()
	defer meeting.Mutex.RUnlock()
	assert.Equal(t, domain.StatusWaiting, meeting.Status)
}

func TestAdminUpdateTimeoutClamps(t *testing.T) {
	s := newTestService(t)
	host := domain.NewClient("10.0.0.1")
	pin := createMeeting(t, s, host, "Host")
	admin := loginAdmin(t, s)

	meeting, err := s.GetMeeting(context.Background(), pin)
	require.NoError(t, err)

	require.NoError(t, s.AdminUpdateTimeout(context.Background(), admin, pin, 100))
	meeting.Mutex.RLock()
	assert.Equal(t, 24*time.Hour, meeting.IdleTimeout)
	meeting.Mutex.RUnlock()

	require.NoError(t, s.AdminUpdateTimeout(context.Background(), admin, pin, 0.1))
	meeting.Mutex.RLock()
	assert.Equal(t, 30*time.Minute, meeting.IdleTimeout)
	meeting.Mutex.RUnlock()

	require.NoError(t, s.AdminUpdateTimeout(context.Background(), admin, pin, 2))
	meeting.Mutex.RLock()
	assert.Equal(t, 2*time.Hour, meeting.IdleTimeout)
	meeting.Mutex.RUnlock()
}

func TestAdminAddPreset(t *testing.T) {
	s := newTestService(t)
	host := domain.NewClient("10.0.0.1")
	pin := createMeeting(t, s, host, "Host")
	admin := loginAdmin(t, s)

	preset := domain.Preset{Name: "New", Question: "Q?", Options: []string{"a", "b"}}
	require.NoError(t, s.AdminAddPreset(context.Background(), admin, preset))

	meeting, err := s.GetMeeting(context.Background(), pin)
	require.NoError(t, err)
	meeting.Mutex.RLock()
	assert.Contains(t, meeting.Presets, preset)
	meeting.Mutex.RUnlock()

	assert.True(t, hasEventOfType(drainEvents(admin), domain.EvAdminMsg))

	// later meetings are seeded with the new template too
	host2 := domain.NewClient("10.0.0.2")
	pin2 := createMeeting(t, s, host2, "Other")
	meeting2, err := s.GetMeeting(context.Background(), pin2)
	require.NoError(t, err)
	meeting2.Mutex.RLock()
	defer meeting2.Mutex.RUnlock()
	assert.Contains(t, meeting2.Presets, preset)
}

func TestAdminAddPresetValidation(t *testing.T) {
	s := newTestService(t)
	admin := loginAdmin(t, s)

	require.NoError(t, s.AdminAddPreset(context.Background(), admin, domain.Preset{Name: "x"}))

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.presets, len(domain.DefaultPresets()))
}

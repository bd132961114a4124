package domain

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusVoting     Status = "voting"
	StatusEnded      Status = "ended"
	StatusTerminated Status = "terminated"
)

const (
	MaxQuestionLength = 200
	MaxOptionLength   = 100
	MaxUsernameLength = 20
	MaxHostNameLength = 50
)

// Option is one answer of the active poll. ID is the position in the
// option list and is stable only within a single voteId.
type Option struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

type Settings struct {
	AllowMulti bool `json:"allowMulti"`
	BlindMode  bool `json:"blindMode"`
	Duration   int  `json:"duration"`
}

// Snapshot is the immutable archive record of one completed poll.
type Snapshot struct {
	Question     string           `json:"question"`
	Options      []Option         `json:"options"`
	Timestamp    string           `json:"timestamp"`
	TotalVotes   int              `json:"totalVotes"`
	VoterDetails map[string][]int `json:"voterDetails"`
}

// Meeting is the aggregate root of one polling session. All fields are
// guarded by Mutex; the service locks per inbound event so handlers for
// the same meeting never interleave mid-mutation.
type Meeting struct {
	Mutex       sync.RWMutex
	Pin         string
	HostName    string
	Status      Status
	Question    string
	Options     []Option
	Settings    Settings
	VoteID      int64
	EndTime     time.Time
	HasArchived bool
	History     []Snapshot
	Voters      VoterLedger
	Presets     []Preset
	Clients     map[string]*Client
	CreatedAt   time.Time
	LastActive  time.Time
	IdleTimeout time.Duration

	// CancelCountdown stops the countdown goroutine owned by the current
	// (pin, voteId) pair. Nil when no countdown is armed.
	CancelCountdown func()
}

func NewMeeting(pin, hostName string, presets []Preset, idleTimeout time.Duration) *Meeting {
	now := time.Now()
	return &Meeting{
		Pin:         pin,
		HostName:    SanitizeName(hostName, MaxHostNameLength, "HOST"),
		Status:      StatusWaiting,
		Settings:    Settings{},
		Voters:      make(VoterLedger),
		Presets:     append([]Preset(nil), presets...),
		Clients:     make(map[string]*Client),
		CreatedAt:   now,
		LastActive:  now,
		IdleTimeout: idleTimeout,
	}
}

// Touch records inbound activity so the idle reaper leaves the meeting alone.
func (m *Meeting) Touch() {
	m.LastActive = time.Now()
}

func (m *Meeting) IdleExpired(now time.Time) bool {
	return now.Sub(m.LastActive) > m.IdleTimeout
}

// IdleRemaining reports how long the meeting may stay inactive before
// the reaper terminates it.
func (m *Meeting) IdleRemaining(now time.Time) time.Duration {
	remaining := m.IdleTimeout - now.Sub(m.LastActive)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ArchiveCurrent appends an immutable snapshot of the active poll to the
// history. At most one snapshot is produced per poll instance: the
// HasArchived flag is reset by BeginPoll and checked here, so a stop
// racing a timer expiry still archives exactly once. Returns nil when
// there is nothing to archive. Caller holds the meeting lock.
func (m *Meeting) ArchiveCurrent() *Snapshot {
	if m.Question == "" || m.HasArchived {
		return nil
	}

	options := make([]Option, len(m.Options))
	copy(options, m.Options)
	for i := range options {
		options[i].Count = 0
	}

	snapshot := Snapshot{
		Question:     m.Question,
		Options:      options,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		VoterDetails: make(map[string][]int),
	}

	for _, record := range m.Voters {
		if len(record.Votes) == 0 {
			continue
		}
		snapshot.TotalVotes++
		snapshot.VoterDetails[record.Username] = append([]int(nil), record.Votes...)
		for _, optID := range record.Votes {
			if optID >= 0 && optID < len(options) {
				options[optID].Count++
			}
		}
	}

	m.History = append(m.History, snapshot)
	m.HasArchived = true
	return &snapshot
}

// BeginPoll replaces the active poll. Side effects in order: archive the
// previous poll if still unarchived, clear per-poll votes, assign a new
// voteId, install zero-counted options. The countdown (if any) is armed
// by the caller. Returns the archived snapshot of the previous poll, or
// nil. Caller holds the meeting lock.
func (m *Meeting) BeginPoll(question string, options []Option, settings Settings, voteID int64) *Snapshot {
	archived := m.ArchiveCurrent()
	m.Voters.ClearForNewPoll()

	m.Status = StatusVoting
	m.Question = Truncate(question, MaxQuestionLength)
	m.Settings = settings
	m.VoteID = voteID
	m.HasArchived = false
	m.EndTime = time.Time{}

	m.Options = make([]Option, len(options))
	for i, opt := range options {
		m.Options[i] = Option{
			ID:    i,
			Text:  Truncate(opt.Text, MaxOptionLength),
			Color: opt.Color,
		}
	}

	return archived
}

// Truncate limits s to max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// SanitizeName truncates a display name and falls back when it is empty
// or blank.
func SanitizeName(s string, max int, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return Truncate(s, max)
}

package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVotingMeeting() *Meeting {
	m := NewMeeting("1234", "Host", DefaultPresets(), time.Hour)
	m.BeginPoll("Lunch?", []Option{{Text: "Ramen"}, {Text: "Sushi"}}, Settings{}, 1)
	return m
}

func TestNewMeetingDefaults(t *testing.T) {
	m := NewMeeting("1234", "Host", DefaultPresets(), time.Hour)

	assert.Equal(t, StatusWaiting, m.Status)
	assert.Equal(t, "1234", m.Pin)
	assert.Empty(t, m.History)
	assert.NotEmpty(t, m.Presets)
	assert.Equal(t, time.Hour, m.IdleTimeout)
}

func TestNewMeetingSanitizesHostName(t *testing.T) {
	assert.Equal(t, "HOST", NewMeeting("1234", "   ", nil, time.Hour).HostName)
	assert.Equal(t, "HOST", NewMeeting("1234", "", nil, time.Hour).HostName)

	long := strings.Repeat("x", 80)
	assert.Len(t, NewMeeting("1234", long, nil, time.Hour).HostName, MaxHostNameLength)
}

func TestBeginPollAssignsPositionalIDs(t *testing.T) {
	m := newVotingMeeting()

	require.Len(t, m.Options, 2)
	assert.Equal(t, 0, m.Options[0].ID)
	assert.Equal(t, 1, m.Options[1].ID)
	assert.Equal(t, 0, m.Options[0].Count)
	assert.Equal(t, StatusVoting, m.Status)
	assert.False(t, m.HasArchived)
}

func TestBeginPollTruncatesText(t *testing.T) {
	m := NewMeeting("1234", "Host", nil, time.Hour)

	m.BeginPoll(strings.Repeat("q", 300), []Option{
		{Text: strings.Repeat("a", 150)},
		{Text: "b"},
	}, Settings{}, 1)

	assert.Len(t, m.Question, MaxQuestionLength)
	assert.Len(t, m.Options[0].Text, MaxOptionLength)
}

func TestBeginPollClearsLedgerVotes(t *testing.T) {
	m := newVotingMeeting()
	m.Voters.RecordVote("dev-1", "Alice", []int{0})

	m.BeginPoll("Next?", []Option{{Text: "a"}, {Text: "b"}}, Settings{}, 2)

	assert.Empty(t, m.Voters["dev-1"].Votes)
	assert.Equal(t, int64(2), m.VoteID)
}

func TestArchiveCurrentBuildsSnapshot(t *testing.T) {
	m := newVotingMeeting()
	m.Voters.RecordVote("dev-1", "Alice", []int{0})
	m.Voters.RecordVote("dev-2", "Bob", []int{0, 1})
	m.Voters.RecordVote("dev-3", "Carol", []int{})

	snapshot := m.ArchiveCurrent()

	require.NotNil(t, snapshot)
	assert.Equal(t, "Lunch?", snapshot.Question)
	assert.Equal(t, 2, snapshot.TotalVotes)
	assert.Equal(t, 2, snapshot.Options[0].Count)
	assert.Equal(t, 1, snapshot.Options[1].Count)
	assert.Equal(t, []int{0}, snapshot.VoterDetails["Alice"])
	assert.Equal(t, []int{0, 1}, snapshot.VoterDetails["Bob"])
	assert.NotContains(t, snapshot.VoterDetails, "Carol")
	assert.Len(t, m.History, 1)
}

func TestArchiveCurrentExactlyOnce(t *testing.T) {
	m := newVotingMeeting()
	m.Voters.RecordVote("dev-1", "Alice", []int{0})

	first := m.ArchiveCurrent()
	second := m.ArchiveCurrent()

	assert.NotNil(t, first)
	assert.Nil(t, second, "a poll instance archives at most once")
	assert.Len(t, m.History, 1)
}

func TestArchiveCurrentSkipsEmptyPoll(t *testing.T) {
	m := NewMeeting("1234", "Host", nil, time.Hour)

	assert.Nil(t, m.ArchiveCurrent())
	assert.Empty(t, m.History)
}

func TestBeginPollArchivesPreviousPoll(t *testing.T) {
	m := newVotingMeeting()
	m.Voters.RecordVote("dev-1", "Alice", []int{0})

	archived := m.BeginPoll("Next?", []Option{{Text: "a"}, {Text: "b"}}, Settings{}, 2)

	require.NotNil(t, archived)
	assert.Equal(t, "Lunch?", archived.Question)
	assert.Len(t, m.History, 1)
	assert.False(t, m.HasArchived, "the new poll is unarchived")
}

func TestIdleExpiry(t *testing.T) {
	m := NewMeeting("1234", "Host", nil, time.Minute)

	assert.False(t, m.IdleExpired(time.Now()))
	assert.True(t, m.IdleExpired(time.Now().Add(2*time.Minute)))
	assert.Equal(t, time.Duration(0), m.IdleRemaining(time.Now().Add(2*time.Minute)))

	m.Touch()
	assert.False(t, m.IdleExpired(time.Now()))
}

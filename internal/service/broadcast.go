package service

import (
	"math"
	"time"

	"github.com/aasfg1234/vote-system/internal/domain"
	"github.com/aasfg1234/vote-system/internal/tally"
)

// StatePayload is the full state-update frame. Every broadcast carries
// the complete current state, so a dropped delivery is healed by the
// next one. HostVoterMap, Presets and History are host-only.
type StatePayload struct {
	Status      domain.Status        `json:"status"`
	Question    string               `json:"question"`
	TotalVotes  int                  `json:"totalVotes"`
	JoinedCount int                  `json:"joinedCount"`
	MeetingName string               `json:"meetingName"`
	Settings    domain.Settings      `json:"settings"`
	TimeLeft    int                  `json:"timeLeft"`
	VoteID      int64                `json:"voteId"`
	Options     []tally.OptionResult `json:"options"`

	HostVoterMap map[int][]string  `json:"hostVoterMap,omitempty"`
	Presets      []domain.Preset   `json:"presets,omitempty"`
	History      []domain.Snapshot `json:"history,omitempty"`
}

// broadcastState recomputes the tally and fans the state out to both
// audiences. The host always receives true counts plus the voter
// roster; participants receive redacted counts while blind mode is on
// and the poll is still open. The reported headcount excludes host
// connections on both sides.
func (s *MeetingService) broadcastState(meeting *domain.Meeting) {
	meeting.Mutex.RLock()

	result := tally.Compute(meeting.Options, meeting.Voters)

	var hosts, participants []*domain.Client
	joinedCount := 0
	for _, c := range meeting.Clients {
		if c.IsHostOf(meeting.Pin) {
			hosts = append(hosts, c)
		} else {
			participants = append(participants, c)
			joinedCount++
		}
	}

	base := StatePayload{
		Status:      meeting.Status,
		Question:    meeting.Question,
		TotalVotes:  result.TotalVotes,
		JoinedCount: joinedCount,
		MeetingName: meeting.HostName,
		Settings:    meeting.Settings,
		TimeLeft:    secondsLeft(meeting.EndTime),
		VoteID:      meeting.VoteID,
	}

	hostPayload := base
	hostPayload.Options = result.Options
	hostPayload.HostVoterMap = result.VoterMap
	hostPayload.Presets = append([]domain.Preset(nil), meeting.Presets...)
	hostPayload.History = append([]domain.Snapshot(nil), meeting.History...)

	participantPayload := base
	if meeting.Settings.BlindMode && meeting.Status == domain.StatusVoting {
		participantPayload.Options = result.Blinded()
	} else {
		participantPayload.Options = result.Options
	}

	meeting.Mutex.RUnlock()

	for _, c := range hosts {
		c.EnqueueEvent(domain.Event{Type: domain.EvStateUpdate, Data: hostPayload})
	}
	for _, c := range participants {
		c.EnqueueEvent(domain.Event{Type: domain.EvStateUpdate, Data: participantPayload})
	}
}

// pushHistory sends the updated archive history to host connections.
func (s *MeetingService) pushHistory(meeting *domain.Meeting) {
	meeting.Mutex.RLock()
	history := append([]domain.Snapshot(nil), meeting.History...)
	var hosts []*domain.Client
	for _, c := range meeting.Clients {
		if c.IsHostOf(meeting.Pin) {
			hosts = append(hosts, c)
		}
	}
	meeting.Mutex.RUnlock()

	for _, c := range hosts {
		c.EnqueueEvent(domain.Event{Type: domain.EvHistoryUpdate, Data: history})
	}
}

func secondsLeft(endTime time.Time) int {
	if endTime.IsZero() {
		return 0
	}
	left := int(math.Round(time.Until(endTime).Seconds()))
	if left < 0 {
		return 0
	}
	return left
}

package converter

import (
	"time"

	"github.com/aasfg1234/vote-system/internal/domain"
)

// MeetingResponse is the read-only REST view of a meeting. Host-only
// material (voter roster, history, presets) is deliberately absent.
type MeetingResponse struct {
	Pin         string        `json:"pin"`
	HostName    string        `json:"hostName"`
	Status      domain.Status `json:"status"`
	Question    string        `json:"question"`
	JoinedCount int           `json:"joinedCount"`
	PollCount   int           `json:"pollCount"`
	CreatedAt   time.Time     `json:"created_at"`
}

func MeetingToApi(m *domain.Meeting) *MeetingResponse {
	m.Mutex.RLock()
	defer m.Mutex.RUnlock()

	joined := 0
	for _, c := range m.Clients {
		if !c.IsHostOf(m.Pin) {
			joined++
		}
	}

	return &MeetingResponse{
		Pin:         m.Pin,
		HostName:    m.HostName,
		Status:      m.Status,
		Question:    m.Question,
		JoinedCount: joined,
		PollCount:   len(m.History),
		CreatedAt:   m.CreatedAt,
	}
}

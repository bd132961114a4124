package domain

import "time"

// VoterRecord is one physical device's participation state. The record
// survives disconnects so the device can resume with its prior votes.
type VoterRecord struct {
	Username  string
	Votes     []int
	FirstJoin time.Time
	LastLeave time.Time
	Online    bool
}

// VoterLedger maps a device identity (client-generated opaque token) to
// that device's record. Identity is keyed by device id consistently;
// display names are not identities and may collide freely.
type VoterLedger map[string]*VoterRecord

// RegisterOrUpdate creates or refreshes the record for a device. When
// restoreVotes is true (the meeting is currently voting) the device's
// recorded selection for the active poll is returned so a rejoining
// participant sees it restored; otherwise nil.
func (l VoterLedger) RegisterOrUpdate(deviceID, username string, restoreVotes bool) []int {
	record, ok := l[deviceID]
	if !ok {
		l[deviceID] = &VoterRecord{
			Username:  username,
			Votes:     []int{},
			FirstJoin: time.Now(),
			Online:    true,
		}
		return nil
	}

	record.Username = username
	record.Online = true
	record.LastLeave = time.Time{}

	if restoreVotes && len(record.Votes) > 0 {
		return append([]int(nil), record.Votes...)
	}
	return nil
}

// RecordVote overwrites (never unions) the stored selection for the
// device. Lifecycle and host checks are the caller's responsibility.
func (l VoterLedger) RecordVote(deviceID, username string, votes []int) {
	record, ok := l[deviceID]
	if !ok {
		record = &VoterRecord{FirstJoin: time.Now(), Online: true}
		l[deviceID] = record
	}
	record.Username = username
	record.Votes = append([]int(nil), votes...)
}

func (l VoterLedger) MarkOffline(deviceID string) {
	if record, ok := l[deviceID]; ok {
		record.Online = false
		record.LastLeave = time.Now()
	}
}

func (l VoterLedger) MarkAllOffline() {
	now := time.Now()
	for _, record := range l {
		if record.Online {
			record.Online = false
			record.LastLeave = now
		}
	}
}

// ClearForNewPoll resets every record's selection while preserving
// identity and presence fields. Called at the start of every poll.
func (l VoterLedger) ClearForNewPoll() {
	for _, record := range l {
		record.Votes = []int{}
	}
}

package domain

import "encoding/json"

// Inbound event types (client -> core).
const (
	EvCreateMeeting      = "create-meeting"
	EvHostResume         = "host-resume"
	EvJoin               = "join"
	EvStartVote          = "start-vote"
	EvSubmitVote         = "submit-vote"
	EvStopVote           = "stop-vote"
	EvTerminateMeeting   = "terminate-meeting"
	EvRequestExport      = "request-export"
	EvAdminLogin         = "admin-login"
	EvAdminTerminate     = "admin-terminate"
	EvAdminUpdateTimeout = "admin-update-timeout"
	EvAdminAddPreset     = "admin-add-preset"
	EvAdminChangePwd     = "admin-change-password"
)

// Outbound event types (core -> client).
const (
	EvJoined            = "joined"
	EvCreateSuccess     = "create-success"
	EvCreateFail        = "create-fail"
	EvHostResumeSuccess = "host-resume-success"
	EvHostResumeFail    = "host-resume-fail"
	EvStateUpdate       = "state-update"
	EvTimerTick         = "timer-tick"
	EvVoteConfirmed     = "vote-confirmed"
	EvForceTerminated   = "force-terminated"
	EvHistoryUpdate     = "history-update"
	EvAdminListUpdate   = "admin-list-update"
	EvExportData        = "export-data"
	EvAdminLoginOK      = "admin-login-success"
	EvAdminLoginFail    = "admin-login-fail"
	EvAdminMsg          = "admin-msg"
)

// Envelope is an inbound websocket frame. Data is decoded per event
// type by the gateway; malformed frames are dropped.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound frame queued on a client's event channel.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

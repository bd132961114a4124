package service

import (
	"context"

	"github.com/aasfg1234/vote-system/internal/domain"
)

// StartVoteParams carries the host's new-poll request. Options keep
// their request order; ids are assigned by position.
type StartVoteParams struct {
	Question   string
	Options    []OptionParam
	Duration   int
	AllowMulti bool
	BlindMode  bool
}

type OptionParam struct {
	Text  string
	Color string
}

type MeetingInteractor interface {
	CreateMeeting(ctx context.Context, client *domain.Client, hostName string) error
	ResumeHost(ctx context.Context, client *domain.Client, pin string) error
	Join(ctx context.Context, client *domain.Client, pin, username, deviceID string) error
	StartVote(ctx context.Context, client *domain.Client, params StartVoteParams) error
	SubmitVote(ctx context.Context, client *domain.Client, votes []int, username, deviceID string) error
	StopVote(ctx context.Context, client *domain.Client) error
	TerminateMeeting(ctx context.Context, client *domain.Client) error
	RequestExport(ctx context.Context, client *domain.Client) error
	Disconnect(ctx context.Context, client *domain.Client) error
	GetMeeting(ctx context.Context, pin string) (*domain.Meeting, error)
}

type AdminInteractor interface {
	AdminLogin(ctx context.Context, client *domain.Client, password string) error
	AdminTerminate(ctx context.Context, client *domain.Client, pin string) error
	AdminUpdateTimeout(ctx context.Context, client *domain.Client, pin string, hours float64) error
	AdminAddPreset(ctx context.Context, client *domain.Client, preset domain.Preset) error
	AdminChangePassword(ctx context.Context, client *domain.Client) error
}

package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aasfg1234/vote-system/internal/domain"
	"github.com/aasfg1234/vote-system/internal/service"
	"github.com/aasfg1234/vote-system/lib/logger/sl"
)

// GatewayController owns the websocket endpoint. All inbound events
// arrive as {type, data} envelopes on a single connection; malformed
// frames are dropped without touching state.
type GatewayController struct {
	meetings service.MeetingInteractor
	admin    service.AdminInteractor
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewGatewayController(meetings service.MeetingInteractor, admin service.AdminInteractor, log *slog.Logger) *GatewayController {
	if log == nil {
		log = slog.Default()
	}
	return &GatewayController{
		meetings: meetings,
		admin:    admin,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *GatewayController) Connect(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	client := domain.NewClient(ctx.ClientIP())
	client.Socket = conn

	go forwardClientEvents(client)

	for {
		var envelope domain.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			_ = c.meetings.Disconnect(context.Background(), client)
			conn.Close()
			return
		}

		c.dispatch(context.Background(), client, envelope)
	}
}

// dispatch decodes the envelope per event type and hands it to the
// service. Decode failures and unknown types drop the frame; service
// errors are logged only (the service has already surfaced whatever the
// caller is allowed to see).
func (c *GatewayController) dispatch(ctx context.Context, client *domain.Client, envelope domain.Envelope) {
	var err error

	switch envelope.Type {
	case domain.EvCreateMeeting:
		var hostName string
		if json.Unmarshal(envelope.Data, &hostName) != nil {
			return
		}
		err = c.meetings.CreateMeeting(ctx, client, hostName)

	case domain.EvHostResume:
		var pin string
		if json.Unmarshal(envelope.Data, &pin) != nil {
			return
		}
		err = c.meetings.ResumeHost(ctx, client, pin)

	case domain.EvJoin:
		var req struct {
			Pin      string `json:"pin"`
			Username string `json:"username"`
			DeviceID string `json:"deviceId"`
		}
		if json.Unmarshal(envelope.Data, &req) != nil {
			return
		}
		if req.Pin == "" || req.Username == "" {
			return
		}
		err = c.meetings.Join(ctx, client, req.Pin, req.Username, req.DeviceID)

	case domain.EvStartVote:
		var req struct {
			Question string `json:"question"`
			Options  []struct {
				Text  string `json:"text"`
				Color string `json:"color"`
			} `json:"options"`
			Duration   int  `json:"duration"`
			AllowMulti bool `json:"allowMulti"`
			BlindMode  bool `json:"blindMode"`
		}
		if json.Unmarshal(envelope.Data, &req) != nil {
			return
		}
		params := service.StartVoteParams{
			Question:   req.Question,
			Duration:   req.Duration,
			AllowMulti: req.AllowMulti,
			BlindMode:  req.BlindMode,
		}
		for _, opt := range req.Options {
			params.Options = append(params.Options, service.OptionParam{Text: opt.Text, Color: opt.Color})
		}
		err = c.meetings.StartVote(ctx, client, params)

	case domain.EvSubmitVote:
		var req struct {
			Votes    []any  `json:"votes"`
			Username string `json:"username"`
			DeviceID string `json:"deviceId"`
		}
		if json.Unmarshal(envelope.Data, &req) != nil {
			return
		}
		err = c.meetings.SubmitVote(ctx, client, integerVotes(req.Votes), req.Username, req.DeviceID)

	case domain.EvStopVote:
		err = c.meetings.StopVote(ctx, client)

	case domain.EvTerminateMeeting:
		err = c.meetings.TerminateMeeting(ctx, client)

	case domain.EvRequestExport:
		err = c.meetings.RequestExport(ctx, client)

	case domain.EvAdminLogin:
		var password string
		if json.Unmarshal(envelope.Data, &password) != nil {
			return
		}
		err = c.admin.AdminLogin(ctx, client, password)

	case domain.EvAdminTerminate:
		var pin string
		if json.Unmarshal(envelope.Data, &pin) != nil {
			return
		}
		err = c.admin.AdminTerminate(ctx, client, pin)

	case domain.EvAdminUpdateTimeout:
		var req struct {
			Pin   string  `json:"pin"`
			Hours float64 `json:"hours"`
		}
		if json.Unmarshal(envelope.Data, &req) != nil {
			return
		}
		err = c.admin.AdminUpdateTimeout(ctx, client, req.Pin, req.Hours)

	case domain.EvAdminAddPreset:
		var preset domain.Preset
		if json.Unmarshal(envelope.Data, &preset) != nil {
			return
		}
		err = c.admin.AdminAddPreset(ctx, client, preset)

	case domain.EvAdminChangePwd:
		err = c.admin.AdminChangePassword(ctx, client)

	default:
		c.log.Debug("unknown event type", slog.String("type", envelope.Type))
		return
	}

	if err != nil {
		c.log.Debug("event rejected",
			slog.String("type", envelope.Type),
			slog.String("client", client.ID),
			sl.Err(err),
		)
	}
}

// integerVotes keeps only whole-number elements, mirroring the wire
// contract that votes are option indexes.
func integerVotes(raw []any) []int {
	votes := make([]int, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			continue
		}
		votes = append(votes, int(f))
	}
	return votes
}

func forwardClientEvents(client *domain.Client) {
	for event := range client.Events {
		if client.Socket == nil {
			return
		}
		if err := client.Socket.WriteJSON(event); err != nil {
			return
		}
	}
}

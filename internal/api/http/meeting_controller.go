package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aasfg1234/vote-system/internal/api/http/converter"
	"github.com/aasfg1234/vote-system/internal/domain"
	"github.com/aasfg1234/vote-system/internal/service"
)

type MeetingController struct {
	meetings service.MeetingInteractor
}

func NewMeetingController(meetings service.MeetingInteractor) *MeetingController {
	return &MeetingController{meetings: meetings}
}

// GetMeeting is a read-only peek used by join pages to validate a pin
// before opening the websocket.
func (c *MeetingController) GetMeeting(ctx *gin.Context) {
	pin := ctx.Param("pin")
	if len(pin) != 4 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pin"})
		return
	}

	meeting, err := c.meetings.GetMeeting(ctx.Request.Context(), pin)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrMeetingNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	meeting.Mutex.RLock()
	terminated := meeting.Status == domain.StatusTerminated
	meeting.Mutex.RUnlock()
	if terminated {
		ctx.JSON(http.StatusGone, gin.H{"error": service.ErrMeetingTerminated.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"meeting": converter.MeetingToApi(meeting)})
}

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(nil, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetMeetingInvalidPin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gateway, svc := newTestGateway()
	router := SetupRouter(gateway, NewMeetingController(svc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/meetings/12", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMeetingNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gateway, svc := newTestGateway()
	router := SetupRouter(gateway, NewMeetingController(svc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/meetings/9999", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// Client is one websocket connection. Its session capability
// (pin, role, deviceId) is attached at join/create/resume time and is
// the only authorization record handlers consult.
type Client struct {
	ID          string
	Pin         string
	Role        Role
	DeviceID    string
	Username    string
	IP          string
	Admin       bool
	ConnectedAt time.Time
	Mutex       sync.RWMutex
	Socket      *websocket.Conn
	Events      chan Event
	closed      bool
}

func NewClient(ip string) *Client {
	return &Client{
		ID:          uuid.New().String(),
		IP:          ip,
		ConnectedAt: time.Now(),
		Events:      make(chan Event, 16),
	}
}

// EnqueueEvent delivers fire-and-forget: when the client's buffer is
// full the event is dropped, and the next state change resends the full
// current state anyway.
func (c *Client) EnqueueEvent(event Event) {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.Events <- event:
	default:
	}
}

// Close shuts the event channel so the writer goroutine drains and
// exits. Later enqueues become no-ops instead of panics.
func (c *Client) Close() {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}

func (c *Client) IsHostOf(pin string) bool {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	return c.Role == RoleHost && c.Pin == pin && pin != ""
}

func (c *Client) SetSession(pin string, role Role, deviceID, username string) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	c.Pin = pin
	c.Role = role
	c.DeviceID = deviceID
	c.Username = username
}

func (c *Client) Session() (pin string, role Role, deviceID string) {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	return c.Pin, c.Role, c.DeviceID
}

func (c *Client) SetAdmin(admin bool) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	c.Admin = admin
}

func (c *Client) IsAdmin() bool {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	return c.Admin
}

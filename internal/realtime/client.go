package realtime

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var clientIDCounter atomic.Uint64

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Client struct {
	id     uint64
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan types.Frame
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan types.Frame, sendBuffer),
	}
}

func (c *Client) ID() uint64 {
	return c.id
}

// Run registers the client and blocks until the connection closes.
func (c *Client) Run() {
	c.hub.Register(c)
	logging.Debug().Uint64("client_id", c.id).Uint("user_id", c.userID).Msg("websocket client connected")

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logging.Debug().Err(err).Uint64("client_id", c.id).Msg("ignoring malformed frame")
			continue
		}

		c.handle(frame)
	}
}

func (c *Client) handle(frame inboundFrame) {
	switch frame.Event {
	case types.FrameJoinEvents:
		var ids []json.RawMessage
		if err := json.Unmarshal(frame.Data, &ids); err != nil {
			return
		}
		for _, raw := range ids {
			if room, ok := parseRoom(raw); ok {
				c.hub.Join(c, room)
			}
		}
	case types.FrameJoinEvent:
		if room, ok := parseRoom(frame.Data); ok {
			c.hub.Join(c, room)
		}
	case types.FrameLeaveEvent:
		if room, ok := parseRoom(frame.Data); ok {
			c.hub.Leave(c, room)
		}
	default:
		logging.Debug().Str("event", frame.Event).Uint64("client_id", c.id).Msg("unknown frame")
	}
}

// parseRoom accepts an event id sent either as a JSON number or a string.
func parseRoom(raw json.RawMessage) (string, bool) {
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatUint(n, 10), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return "", false
	}
	return s, true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Package realtime pushes event notifications to websocket clients.
//
// Clients join rooms named after event ids. Handlers publish through a
// Notifier onto an in-process watermill topic; the Hub consumes that topic
// and fans each notification out to the matching room. Delivery is best
// effort: a client whose send buffer is full misses the frame.
package realtime

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/types"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "speeddate_ws_clients",
		Help: "Connected websocket clients.",
	})
	openRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "speeddate_ws_rooms",
		Help: "Event rooms with at least one member.",
	})
	droppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speeddate_ws_dropped_frames_total",
		Help: "Frames dropped because a client's send buffer was full.",
	})
)

// RoomName is the room key for an event.
func RoomName(eventID uint) string {
	return strconv.FormatUint(uint64(eventID), 10)
}

type Hub struct {
	subscriber message.Subscriber

	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

func NewHub(subscriber message.Subscriber) *Hub {
	return &Hub{
		subscriber: subscriber,
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]map[string]struct{}),
		ready:      make(chan struct{}),
	}
}

// Ready is closed once Serve has subscribed to the notification topic.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		return
	}
	h.clients[c] = make(map[string]struct{})
	connectedClients.Inc()
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[c]
	if !ok {
		return
	}

	members := h.rooms[room]
	if members == nil {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
		openRooms.Inc()
	}
	members[c] = struct{}{}
	joined[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(c, room)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if joined, ok := h.clients[c]; ok {
		delete(joined, room)
	}

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
		openRooms.Dec()
	}
}

// Remove takes c out of every room and closes its send channel, which ends
// its write pump.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[c]
	if !ok {
		return
	}
	for room := range joined {
		h.leaveLocked(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	connectedClients.Dec()
}

// Broadcast queues frame for every member of room and returns how many
// clients accepted it.
func (h *Hub) Broadcast(room string, frame types.Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- frame:
			delivered++
		default:
			droppedFrames.Inc()
		}
	}
	return delivered
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Serve relays bus notifications to rooms until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Serve(ctx context.Context) error {
	messages, err := h.subscriber.Subscribe(ctx, types.NotificationsTopic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", types.NotificationsTopic, err)
	}
	h.readyOnce.Do(func() { close(h.ready) })

	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			h.dispatch(msg)
			msg.Ack()
		}
	}
}

func (h *Hub) dispatch(msg *message.Message) {
	var note Notification
	if err := json.Unmarshal(msg.Payload, &note); err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed notification")
		return
	}

	frame := types.Frame{Event: note.Kind}
	if note.Message != "" {
		frame.Data = note.Message
	}

	room := RoomName(note.EventID)
	delivered := h.Broadcast(room, frame)

	logging.Debug().
		Str("room", room).
		Str("frame", note.Kind).
		Int("delivered", delivered).
		Msg("broadcast")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Remove(c)
	}
}

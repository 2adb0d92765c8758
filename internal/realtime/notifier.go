package realtime

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/types"
)

// Notification is the bus payload. Kind is the outbound frame name.
type Notification struct {
	EventID uint   `json:"eventId"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// NewBus returns the in-process pub/sub shared by the Notifier and the Hub.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logging.NewWatermillAdapter())
}

// Notifier is the handler-facing side of the realtime channel.
type Notifier struct {
	publisher message.Publisher
}

func NewNotifier(publisher message.Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// EventStarting tells everyone in the event's room that it is starting.
func (n *Notifier) EventStarting(ctx context.Context, eventID uint, msg string) error {
	return n.publish(ctx, Notification{EventID: eventID, Kind: types.FrameNotifyStart, Message: msg})
}

// EventUpdated asks the event's room to refetch the event.
func (n *Notifier) EventUpdated(ctx context.Context, eventID uint) error {
	return n.publish(ctx, Notification{EventID: eventID, Kind: types.FrameNotify})
}

func (n *Notifier) publish(ctx context.Context, note Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_id", strconv.FormatUint(uint64(note.EventID), 10))
	msg.Metadata.Set("kind", note.Kind)

	if err := n.publisher.Publish(types.NotificationsTopic, msg); err != nil {
		return fmt.Errorf("publish %s for event %d: %w", note.Kind, note.EventID, err)
	}
	return nil
}

package types

// ContextIdentityKey is the gin key the session guard stores the caller under.
const ContextIdentityKey = "identity"

// Room and frame names used by the realtime channel.
const (
	FrameJoinEvents  = "join_events"
	FrameJoinEvent   = "join_event"
	FrameLeaveEvent  = "leave_event"
	FrameNotifyStart = "notify_start"
	FrameNotify      = "notify"
)

const NotificationsTopic = "event.notifications"

package models

// Channel names used by the daemon.
const (
	ChannelRealtime = "realtime"
)

// Frame types pushed to channel subscribers.
const (
	FrameSnapshotDelta = "snapshot_delta"
	FrameHeartbeat     = "heartbeat"
	FrameSubscribed    = "subscribed"
	FrameJobs          = "jobs"
	FrameSessions      = "sessions"
)

// Frame is one message on a realtime channel.
type Frame struct {
	Channel string      `json:"channel"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// SubscribeRequest is the client->server intent on the websocket endpoint.
type SubscribeRequest struct {
	Action  string `json:"action"` // subscribe | unsubscribe
	Channel string `json:"channel"`
}

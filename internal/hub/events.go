package hub

import "fmt"

// Event types pushed to subscribed clients. Each frame is the event type, a
// newline, then the JSON payload.
const (
	EventMessageCreated = "message_created"
	EventChannelCreated = "channel_created"
	EventChannelDeleted = "channel_deleted"
	EventMemberJoined   = "member_joined"
	EventRoleChanged    = "role_changed"
)

// ChannelTopic carries message events for one channel. A client is subscribed
// to at most one channel topic at a time.
func ChannelTopic(serverID int64, channelID string) string {
	return fmt.Sprintf("channel:%d/%s", serverID, channelID)
}

// ServerTopic carries structural events for one server: channel create/delete,
// joins, role changes.
func ServerTopic(serverID int64) string {
	return fmt.Sprintf("server:%d", serverID)
}

package domain

import "strings"

// Channels are namespaced pub/sub topics. A connection always belongs to
// exactly one org channel and one user channel, plus any conversation
// channels it explicitly joined.
const (
	orgPrefix  = "org:"
	userPrefix = "user:"
	convPrefix = "conv:"
)

func OrgChannel(orgID string) string {
	return orgPrefix + orgID
}

func UserChannel(userID string) string {
	return userPrefix + userID
}

func ConversationChannel(conversationID string) string {
	return convPrefix + conversationID
}

// IsConversationChannel reports whether the channel name targets a conversation.
// The registry drops these on disconnect together with the fixed channels.
func IsConversationChannel(channel string) bool {
	return strings.HasPrefix(channel, convPrefix)
}

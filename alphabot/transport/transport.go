// Package transport defines the capability surface the bot needs from a
// Messenger chat client. The wire protocol itself (cookie login, MQTT
// listening, HTTP sends) lives behind this interface; the bundled
// implementation bridges to an external client process.
package transport

import "context"

// SendResult carries the identifiers of a delivered message.
type SendResult struct {
	MessageID string `json:"messageID"`
	ThreadID  string `json:"threadID"`
	Timestamp int64  `json:"timestamp"`
}

// UserInfo is the subset of profile data the bot consumes.
type UserInfo struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	Gender    string `json:"gender"`
	IsFriend  bool   `json:"isFriend"`
}

// ChatTransport is the opaque chat client the dispatcher and command
// handlers call through. All blocking operations take a context.
type ChatTransport interface {
	// SendMessage sends content to a thread. replyToMessageID may be empty.
	SendMessage(ctx context.Context, content string, threadID string, replyToMessageID string) (*SendResult, error)

	// SetMessageReaction sets (or clears, with empty emoji) a reaction.
	SetMessageReaction(ctx context.Context, emoji string, messageID string) error

	// GetUserInfo fetches profile data for the given user IDs.
	GetUserInfo(ctx context.Context, userIDs []string) (map[string]UserInfo, error)

	// GetCurrentUserID returns the logged-in account's ID.
	GetCurrentUserID() string

	// Listen delivers inbound events to fn until ctx is cancelled or the
	// connection fails.
	Listen(ctx context.Context, fn func(Event)) error

	// GetAppState snapshots the authenticated cookie jar for persistence.
	GetAppState(ctx context.Context) (AppState, error)

	// Logout invalidates the session.
	Logout(ctx context.Context) error
}

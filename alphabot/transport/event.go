package transport

// Kind classifies a normalized inbound event.
type Kind string

const (
	KindMessage  Kind = "message"
	KindReply    Kind = "message_reply"
	KindReaction Kind = "message_reaction"
	KindLog      Kind = "event"
	KindUnknown  Kind = "unknown"
)

// Thread-log subtypes delivered with KindLog events.
const (
	LogSubscribe    = "log:subscribe"
	LogUnsubscribe  = "log:unsubscribe"
	LogUserNickname = "log:user-nickname"
	LogThreadCall   = "log:thread-call"
	LogThreadName   = "log:thread-name"
	LogThreadIcon   = "log:thread-icon"
	LogThreadColor  = "log:thread-color"
	LogApprovalMode = "log:approval-mode"
	LogThreadAdmins = "log:thread-admins"
)

// ReplySource identifies the message a reply points back at.
type ReplySource struct {
	MessageID string `json:"messageID"`
	SenderID  string `json:"senderID"`
	Body      string `json:"body"`
}

// Event is a normalized inbound protocol event. The transport fills only the
// fields meaningful for its Kind.
type Event struct {
	Kind      Kind   `json:"type"`
	ThreadID  string `json:"threadID"`
	SenderID  string `json:"senderID"`
	MessageID string `json:"messageID"`
	Body      string `json:"body"`
	IsGroup   bool   `json:"isGroup"`
	Timestamp int64  `json:"timestamp"`

	// KindReply
	ReplyTo *ReplySource `json:"messageReply,omitempty"`

	// KindReaction
	Reaction string `json:"reaction,omitempty"`

	// KindLog
	LogType string         `json:"logMessageType,omitempty"`
	LogBody string         `json:"logMessageBody,omitempty"`
	LogData map[string]any `json:"logMessageData,omitempty"`

	Mentions     map[string]string `json:"mentions,omitempty"`
	Participants []string          `json:"participantIDs,omitempty"`
}

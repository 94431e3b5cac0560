// Package plugin defines the command/event records the bot loads at startup,
// the registry they live in, and the capability context handed to handlers.
package plugin

import "time"

// HandlerFunc is the body of a command, waiter, or event handler.
type HandlerFunc func(c *Ctx) error

// Command is the canonical runtime record for one command. Instances are
// built by the loader (see Adapt) and owned by the Registry; they are
// immutable after registration except through Registry.Reload.
type Command struct {
	Name             string
	Aliases          []string
	Description      string
	Usage            string
	Category         string
	PermissionLevels []int
	CooldownSeconds  int
	NSFW             bool

	Run HandlerFunc
}

// MessageHandler runs for every non-command message. All registered handlers
// run; they are not mutually exclusive.
type MessageHandler struct {
	Name string
	Run  HandlerFunc
}

// LogEventHandler handles one thread-log event type (subscribe, nickname
// change, ...).
type LogEventHandler struct {
	Name string
	Run  HandlerFunc
}

// WaiterOptions configure a reply/reaction waiter registration.
type WaiterOptions struct {
	// AuthorOnly restricts the follow-up to the user who triggered the
	// original command.
	AuthorOnly bool

	// TTL overrides the default 60s expiry.
	TTL time.Duration
}

package plugin

import (
	"context"
	"strings"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/database/repositories"
	"github.com/alphabot-dev/alphabot/alphabot/lang"
	"github.com/alphabot-dev/alphabot/alphabot/permissions"
	"github.com/alphabot-dev/alphabot/alphabot/session"
	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

// Ctx carries one inbound event through a handler together with the
// capabilities it may use. The dispatcher builds one Ctx per handler
// invocation; handlers never see ambient globals.
type Ctx struct {
	Context context.Context
	Event   transport.Event

	Chat     transport.ChatTransport
	Sessions *session.Store
	Threads  repositories.ThreadRepository
	Users    repositories.UserRepository
	Perms    *permissions.Resolver

	// Thread and User are the records for the triggering event, fetched once
	// per dispatch.
	Thread *models.Thread
	User   *models.User

	// Command fields; zero for message/event handlers.
	CommandName string
	Args        []string

	BotID string
}

// Language returns the effective reply language for this event.
func (c *Ctx) Language() string {
	if c.Thread != nil && c.Thread.Language != "" {
		return c.Thread.Language
	}
	if c.User != nil && c.User.Language != "" {
		return c.User.Language
	}
	return lang.DefaultLanguage
}

// T renders a localized message template.
func (c *Ctx) T(key string, args ...any) string {
	return lang.T(c.Language(), key, args...)
}

// RawArgs returns the argument portion of the command message as typed.
func (c *Ctx) RawArgs() string {
	return strings.Join(c.Args, " ")
}

// Send sends content to the event's thread.
func (c *Ctx) Send(content string) (*transport.SendResult, error) {
	return c.Chat.SendMessage(c.Context, content, c.Event.ThreadID, "")
}

// Reply sends content quoting the triggering message.
func (c *Ctx) Reply(content string) (*transport.SendResult, error) {
	return c.Chat.SendMessage(c.Context, content, c.Event.ThreadID, c.Event.MessageID)
}

// React sets a reaction on the triggering message.
func (c *Ctx) React(emoji string) error {
	return c.Chat.SetMessageReaction(c.Context, emoji, c.Event.MessageID)
}

// AddReplyEvent registers fn to run when someone replies to messageID.
// Single-shot with TTL expiry; see session.Store.
func (c *Ctx) AddReplyEvent(messageID string, opts WaiterOptions, fn HandlerFunc) {
	c.addWaiter(session.KindReply, messageID, opts, fn)
}

// AddReactEvent registers fn to run when someone reacts to messageID.
func (c *Ctx) AddReactEvent(messageID string, opts WaiterOptions, fn HandlerFunc) {
	c.addWaiter(session.KindReaction, messageID, opts, fn)
}

func (c *Ctx) addWaiter(kind session.Kind, messageID string, opts WaiterOptions, fn HandlerFunc) {
	var callback session.WaiterFunc
	if fn != nil {
		callback = func(ev transport.Event) error {
			return fn(c.ForEvent(ev))
		}
	}
	c.Sessions.AddWaiter(kind, messageID, &session.Waiter{
		Name:       c.CommandName,
		AuthorID:   c.Event.SenderID,
		AuthorOnly: opts.AuthorOnly,
		Callback:   callback,
	}, opts.TTL)
}

// WithCancel registers a cancellation token for a long-running handler loop.
// It reports false if a loop already runs under the same key; loops must
// check the returned context every iteration and call Release on exit.
func (c *Ctx) WithCancel(key string) (context.Context, bool) {
	return c.Sessions.WithCancel(c.Context, key)
}

// LoopKey builds the session key for this command in this thread.
func (c *Ctx) LoopKey() string {
	return c.CommandName + ":" + c.Event.ThreadID
}

// ForEvent derives a Ctx for a follow-up event, keeping the capabilities and
// resolved records of the original dispatch.
func (c *Ctx) ForEvent(ev transport.Event) *Ctx {
	nc := *c
	nc.Event = ev
	nc.Args = nil
	return &nc
}

// Package dispatcher routes normalized inbound events to command, waiter,
// message, and thread-log handlers.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/database/repositories"
	"github.com/alphabot-dev/alphabot/alphabot/lang"
	"github.com/alphabot-dev/alphabot/alphabot/logger"
	"github.com/alphabot-dev/alphabot/alphabot/permissions"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
	"github.com/alphabot-dev/alphabot/alphabot/session"
	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

// cooldownEmoji is the only user-visible signal for an active cooldown.
const cooldownEmoji = "🕓"

// Dispatcher resolves inbound events against the plugin registry, the
// permission resolver, and the session store, and invokes the target
// handler. Handler errors never escape: they are logged and converted to a
// reply in the thread.
type Dispatcher struct {
	Registry *plugin.Registry
	Sessions *session.Store
	Perms    *permissions.Resolver
	Threads  repositories.ThreadRepository
	Users    repositories.UserRepository
	Chat     transport.ChatTransport

	// Prefix is the global command prefix; threads may override it.
	Prefix string

	// DenyPolicy controls whether failed permission checks reply or stay
	// silent.
	DenyPolicy permissions.DenyPolicy

	// BotID is the logged-in account; events it caused are ignored.
	BotID string
}

type Config struct {
	Prefix     string
	DenyPolicy permissions.DenyPolicy
}

func New(cfg Config, reg *plugin.Registry, sessions *session.Store, perms *permissions.Resolver,
	threads repositories.ThreadRepository, users repositories.UserRepository, chat transport.ChatTransport) *Dispatcher {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "/"
	}
	return &Dispatcher{
		Registry:   reg,
		Sessions:   sessions,
		Perms:      perms,
		Threads:    threads,
		Users:      users,
		Chat:       chat,
		Prefix:     prefix,
		DenyPolicy: cfg.DenyPolicy,
		BotID:      chat.GetCurrentUserID(),
	}
}

// HandleEvent is the transport listen callback. Each event is dispatched on
// its own goroutine; ordering is only guaranteed per arrival, not across
// conversations.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev transport.Event) {
	go d.Dispatch(ctx, ev)
}

// Dispatch classifies and routes one event to completion. It never returns
// an error to the listen loop.
func (d *Dispatcher) Dispatch(ctx context.Context, ev transport.Event) {
	if ev.SenderID == d.BotID {
		return
	}
	if ev.ThreadID == "" {
		return
	}

	// Thread and user records are fetched once here and reused for the
	// whole dispatch.
	thread, user, err := d.loadRecords(ctx, ev)
	if err != nil {
		logger.LogError("Failed to load records for event", err,
			slog.String("thread_id", ev.ThreadID),
			slog.String("sender_id", ev.SenderID))
		return
	}

	// A banned actor never reaches a handler, on any path, and gets no
	// feedback.
	if user.Banned || thread.Banned {
		slog.Debug("Dropping event from banned actor",
			slog.String("thread_id", ev.ThreadID),
			slog.String("sender_id", ev.SenderID))
		return
	}

	c := &plugin.Ctx{
		Context:  ctx,
		Event:    ev,
		Chat:     d.Chat,
		Sessions: d.Sessions,
		Threads:  d.Threads,
		Users:    d.Users,
		Perms:    d.Perms,
		Thread:   thread,
		User:     user,
		BotID:    d.BotID,
	}

	switch ev.Kind {
	case transport.KindReaction:
		d.dispatchWaiter(c, session.KindReaction)
	case transport.KindLog:
		d.dispatchLog(c)
	case transport.KindMessage, transport.KindReply:
		if ev.ReplyTo != nil && d.dispatchReplyWaiter(c) {
			return
		}
		if body, ok := d.stripPrefix(thread, ev.Body); ok {
			d.dispatchCommand(c, body)
			return
		}
		d.dispatchMessage(c)
	}
}

func (d *Dispatcher) loadRecords(ctx context.Context, ev transport.Event) (*models.Thread, *models.User, error) {
	thread, err := d.Threads.GetOrCreate(ctx, ev.ThreadID)
	if err != nil {
		return nil, nil, err
	}
	if ev.IsGroup && !thread.IsGroup {
		thread, err = d.Threads.Modify(ctx, ev.ThreadID, func(t *models.Thread) error {
			t.IsGroup = true
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	user, err := d.Users.GetOrCreate(ctx, ev.SenderID)
	if err != nil {
		return nil, nil, err
	}
	return thread, user, nil
}

// stripPrefix reports whether body is addressed to the bot, preferring the
// thread's stored prefix over the global one.
func (d *Dispatcher) stripPrefix(thread *models.Thread, body string) (string, bool) {
	prefix := d.Prefix
	if thread.Prefix != "" {
		prefix = thread.Prefix
	}
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
}

func (d *Dispatcher) dispatchCommand(c *plugin.Ctx, body string) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	name, args := fields[0], fields[1:]

	cmd, found := d.Registry.Resolve(name)
	if !found {
		if suggestion := d.Registry.Suggest(name); suggestion != "" {
			d.send(c, c.T(lang.KeySuggestion, name, suggestion))
		} else {
			d.send(c, c.T(lang.KeyCommandNotFound, name))
		}
		return
	}

	c.CommandName = cmd.Name
	c.Args = args

	// Permission gate. The silent drop on failure is deliberate: replying
	// would let non-privileged users enumerate privileged commands.
	tags := d.Perms.Resolve(c.Event.SenderID, c.Thread, c.User)
	if !permissions.Check(cmd.PermissionLevels, tags) {
		if d.DenyPolicy == permissions.NotifyDeny {
			d.send(c, c.T(lang.KeyPermissionDeny))
		} else {
			slog.Debug("Permission denied",
				slog.String("type", "cmd"),
				slog.String("name", cmd.Name),
				slog.String("user_id", c.Event.SenderID))
		}
		return
	}

	// NSFW gate replies instead of silently dropping: the sender already
	// knows the command exists.
	if cmd.NSFW && c.Thread.IsGroup && !c.Thread.NSFW {
		d.send(c, c.T(lang.KeyNSFWNotAllowed))
		return
	}

	if ready, remaining := d.Sessions.CheckCooldown(cmd.Name, c.Event.SenderID, cmd.CooldownSeconds); !ready {
		slog.Debug("Command on cooldown",
			slog.String("type", "cmd"),
			slog.String("name", cmd.Name),
			slog.String("user_id", c.Event.SenderID),
			slog.Duration("remaining", remaining))
		if err := c.React(cooldownEmoji); err != nil {
			logger.LogError("Failed to react with cooldown emoji", err)
		}
		return
	}

	d.invoke(c, cmd.Name, cmd.Run)

	// The cooldown arms after the handler ran, whether or not it succeeded.
	d.Sessions.SetCooldown(cmd.Name, c.Event.SenderID, cmd.CooldownSeconds)
}

// dispatchReplyWaiter consumes a pending reply waiter for the quoted
// message. It reports whether the event was claimed by a waiter.
func (d *Dispatcher) dispatchReplyWaiter(c *plugin.Ctx) bool {
	w := d.Sessions.ConsumeWaiter(session.KindReply, c.Event.ReplyTo.MessageID)
	if w == nil {
		return false
	}
	d.runWaiter(c, w)
	return true
}

func (d *Dispatcher) dispatchWaiter(c *plugin.Ctx, kind session.Kind) {
	w := d.Sessions.ConsumeWaiter(kind, c.Event.MessageID)
	if w == nil {
		return
	}
	d.runWaiter(c, w)
}

func (d *Dispatcher) runWaiter(c *plugin.Ctx, w *session.Waiter) {
	if w.AuthorOnly && w.AuthorID != c.Event.SenderID {
		return
	}

	start := time.Now()
	err := runRecovered(func() error { return w.Callback(c.Event) })
	logger.LogCommand(w.Name+":waiter", time.Since(start), err)
	if err != nil {
		d.send(c, c.T(lang.KeyHandlerError, err))
	}
}

// dispatchMessage runs every registered message handler. Handlers are not
// mutually exclusive, and one failing handler must not block the rest.
func (d *Dispatcher) dispatchMessage(c *plugin.Ctx) {
	for _, h := range d.Registry.MessageHandlers() {
		if err := runRecovered(func() error { return h.Run(c) }); err != nil {
			logger.LogError("Message handler failed", err,
				slog.String("handler", h.Name))
		}
	}
}

func (d *Dispatcher) dispatchLog(c *plugin.Ctx) {
	h, ok := d.Registry.LogEvent(c.Event.LogType)
	if !ok {
		return
	}
	d.invoke(c, h.Name, h.Run)
}

// invoke runs a handler with panic recovery, logs the outcome, and converts
// any error into a localized reply. Errors never propagate to the listen
// loop.
func (d *Dispatcher) invoke(c *plugin.Ctx, name string, fn plugin.HandlerFunc) {
	start := time.Now()
	err := runRecovered(func() error { return fn(c) })
	logger.LogCommand(name, time.Since(start), err)
	if err != nil {
		d.send(c, c.T(lang.KeyHandlerError, err))
	}
}

func runRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return fn()
}

// send delivers a dispatcher-generated reply, logging delivery failures
// instead of surfacing them.
func (d *Dispatcher) send(c *plugin.Ctx, content string) {
	if _, err := c.Send(content); err != nil {
		logger.LogError("Failed to send dispatcher reply", err,
			slog.String("thread_id", c.Event.ThreadID))
	}
}

// Package events contains the thread-log event handlers and the handlers
// run for every plain (non-command) message.
package events

import (
	"fmt"
	"strings"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

// Register maps the handled thread-log types and appends the message
// handlers. Unmapped log types are ignored by the dispatcher.
func Register(reg *plugin.Registry, prefix string) {
	reg.RegisterLogEvent(transport.LogSubscribe, &plugin.LogEventHandler{
		Name: "subscribe",
		Run:  onSubscribe,
	})
	reg.RegisterLogEvent(transport.LogUnsubscribe, &plugin.LogEventHandler{
		Name: "unsubscribe",
		Run:  onUnsubscribe,
	})
	reg.RegisterLogEvent(transport.LogUserNickname, &plugin.LogEventHandler{
		Name: "nickname",
		Run:  onNickname,
	})
	reg.RegisterLogEvent(transport.LogThreadCall, &plugin.LogEventHandler{
		Name: "call",
		Run:  onCall,
	})
	reg.RegisterLogEvent(transport.LogThreadName, &plugin.LogEventHandler{
		Name: "thread-name",
		Run:  onThreadName,
	})
	reg.RegisterLogEvent(transport.LogThreadAdmins, &plugin.LogEventHandler{
		Name: "thread-admins",
		Run:  onThreadAdmins,
	})

	reg.RegisterMessageHandler(plugin.MessageHandler{
		Name: "mention-hint",
		Run:  mentionHint(prefix),
	})
}

func logDataString(c *plugin.Ctx, key string) string {
	if c.Event.LogData == nil {
		return ""
	}
	if v, ok := c.Event.LogData[key].(string); ok {
		return v
	}
	return ""
}

// onSubscribe greets added members, or introduces the bot when it is the one
// being added.
func onSubscribe(c *plugin.Ctx) error {
	added := c.Event.Participants
	for _, id := range added {
		if id == c.BotID {
			_, err := c.Send("🤖 Alphabot connected. Type /help to get started.")
			return err
		}
	}
	if len(added) == 0 {
		return nil
	}
	_, err := c.Send(fmt.Sprintf("👋 Welcome! %d new member(s) joined.", len(added)))
	return err
}

func onUnsubscribe(c *plugin.Ctx) error {
	left := logDataString(c, "leftParticipantFbId")
	if left == "" || left == c.BotID {
		return nil
	}
	_, err := c.Send("👋 A member left the thread.")
	return err
}

func onNickname(c *plugin.Ctx) error {
	nickname := logDataString(c, "nickname")
	target := logDataString(c, "participant_id")
	if target == "" {
		return nil
	}
	if nickname == "" {
		_, err := c.Send("✏️ A nickname was cleared.")
		return err
	}
	_, err := c.Send(fmt.Sprintf("✏️ Nickname changed to %q.", nickname))
	return err
}

func onCall(c *plugin.Ctx) error {
	if logDataString(c, "event") == "group_call_started" {
		_, err := c.Send("📞 A call has started.")
		return err
	}
	return nil
}

// onThreadName keeps the stored thread name in sync with the conversation.
func onThreadName(c *plugin.Ctx) error {
	name := strings.TrimSpace(logDataString(c, "name"))
	_, err := c.Threads.Modify(c.Context, c.Event.ThreadID, func(t *models.Thread) error {
		t.Name = name
		return nil
	})
	return err
}

// onThreadAdmins tracks admin promotions/demotions in the stored record so
// the permission resolver sees the current list.
func onThreadAdmins(c *plugin.Ctx) error {
	target := logDataString(c, "TARGET_ID")
	if target == "" {
		return nil
	}
	promoted := logDataString(c, "ADMIN_EVENT") == "add_admin"

	_, err := c.Threads.Modify(c.Context, c.Event.ThreadID, func(t *models.Thread) error {
		if promoted {
			if !t.AdminIDs.Contains(target) {
				t.AdminIDs = append(t.AdminIDs, target)
			}
			return nil
		}
		kept := t.AdminIDs[:0]
		for _, id := range t.AdminIDs {
			if id != target {
				kept = append(kept, id)
			}
		}
		t.AdminIDs = kept
		return nil
	})
	return err
}

// mentionHint nudges users who mention the bot without using the prefix.
func mentionHint(prefix string) plugin.HandlerFunc {
	return func(c *plugin.Ctx) error {
		if _, mentioned := c.Event.Mentions[c.BotID]; !mentioned {
			return nil
		}
		_, err := c.Reply(fmt.Sprintf("My prefix is %s. Try %shelp to get started.", prefix, prefix))
		return err
	}
}

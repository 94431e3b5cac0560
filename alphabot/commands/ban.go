package commands

import (
	"fmt"
	"strings"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

func targetFromArgs(c *plugin.Ctx) (string, bool) {
	for id := range c.Event.Mentions {
		return id, true
	}
	if len(c.Args) > 0 {
		return c.Args[0], true
	}
	return "", false
}

func Ban() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "ban",
			Description: "Ban a user from using the bot",
			Usage:       "ban <userID|@mention> [reason]",
			Category:    "admin",
			Permissions: []int{2},
			Cooldowns:   2,
		},
		Run: func(c *plugin.Ctx) error {
			targetID, ok := targetFromArgs(c)
			if !ok {
				_, err := c.Reply("Usage: ban <userID|@mention> [reason]")
				return err
			}
			if c.Perms.IsBotAdmin(targetID) {
				_, err := c.Reply("Bot admins cannot be banned.")
				return err
			}

			var reason string
			if len(c.Args) > 1 {
				reason = strings.Join(c.Args[1:], " ")
			}
			_, err := c.Users.Modify(c.Context, targetID, func(u *models.User) error {
				u.Banned = true
				u.BanReason = reason
				return nil
			})
			if err != nil {
				return err
			}
			_, err = c.Reply(fmt.Sprintf("🔨 Banned %s.", targetID))
			return err
		},
	})
}

func Unban() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "unban",
			Description: "Lift a user's bot ban",
			Usage:       "unban <userID|@mention>",
			Category:    "admin",
			Permissions: []int{2},
			Cooldowns:   2,
		},
		Run: func(c *plugin.Ctx) error {
			targetID, ok := targetFromArgs(c)
			if !ok {
				_, err := c.Reply("Usage: unban <userID|@mention>")
				return err
			}

			_, err := c.Users.Modify(c.Context, targetID, func(u *models.User) error {
				u.Banned = false
				u.BanReason = ""
				return nil
			})
			if err != nil {
				return err
			}
			_, err = c.Reply(fmt.Sprintf("✅ Unbanned %s.", targetID))
			return err
		},
	})
}

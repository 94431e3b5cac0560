package commands

import (
	"fmt"
	"strings"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

// Me shows the caller's stored record and offers a reply follow-up to set a
// display name. The follow-up is a single-shot, author-bound reply waiter.
func Me(deps Deps) *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "me",
			Aliases:     []string{"profile"},
			Description: "Show your profile",
			Usage:       "me",
			Category:    "social",
			Permissions: []int{0},
			Cooldowns:   5,
		},
		Run: func(c *plugin.Ctx) error {
			name := c.User.Name
			if name == "" && deps.Users != nil {
				if fetched, err := deps.Users.Name(c.Context, c.Event.SenderID); err == nil {
					name = fetched
				}
			}
			if name == "" {
				name = c.Event.SenderID
			}

			result, err := c.Reply(fmt.Sprintf(
				"👤 %s\n💰 Money: %d\n✨ Exp: %d\n\nReply to this message to set a display name.",
				name, c.User.Money, c.User.Exp))
			if err != nil {
				return err
			}

			c.AddReplyEvent(result.MessageID, plugin.WaiterOptions{AuthorOnly: true}, func(rc *plugin.Ctx) error {
				newName := strings.TrimSpace(rc.Event.Body)
				if newName == "" || len(newName) > 50 {
					_, err := rc.Reply("That name will not work, keep it between 1 and 50 characters.")
					return err
				}
				_, err := rc.Users.Modify(rc.Context, rc.Event.SenderID, func(u *models.User) error {
					u.Name = newName
					return nil
				})
				if err != nil {
					return err
				}
				_, err = rc.Reply(fmt.Sprintf("✅ Display name set to %s.", newName))
				return err
			})
			return nil
		},
	})
}

package commands

import (
	"fmt"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/permissions"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

func Prefix(deps Deps) *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "prefix",
			Aliases:     []string{"setprefix"},
			Description: "Show or change this thread's command prefix",
			Usage:       "prefix [new prefix]",
			Category:    "admin",
			Permissions: []int{0, 2},
			Cooldowns:   2,
		},
		Run: func(c *plugin.Ctx) error {
			if len(c.Args) == 0 {
				current := c.Thread.Prefix
				if current == "" {
					current = deps.Prefix
				}
				_, err := c.Reply(fmt.Sprintf("Current prefix: %s", current))
				return err
			}

			// Anyone may view the prefix; changing it takes thread admin.
			tags := c.Perms.Resolve(c.Event.SenderID, c.Thread, c.User)
			if !permissions.Check([]int{2}, tags) {
				return nil
			}

			newPrefix := c.Args[0]
			if len(newPrefix) > 3 {
				_, err := c.Reply("Prefix must be at most 3 characters.")
				return err
			}

			_, err := c.Threads.Modify(c.Context, c.Event.ThreadID, func(t *models.Thread) error {
				t.Prefix = newPrefix
				return nil
			})
			if err != nil {
				return err
			}
			_, err = c.Reply(fmt.Sprintf("✅ Prefix changed to %s", newPrefix))
			return err
		},
	})
}

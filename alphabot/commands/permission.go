package commands

import (
	"fmt"
	"strings"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

var validTags = map[string]bool{
	"user":         true,
	"mod":          true,
	"thread_admin": true,
	"admin":        true,
	"supper_admin": true,
}

// SetPermission stores a per-thread permission override for a user. Mentions
// take precedence over a literal ID argument.
func SetPermission() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "setpermission",
			Aliases:     []string{"setperm"},
			Description: "Override a user's permission tags in this thread",
			Usage:       "setpermission <userID|@mention> <tag...>",
			Category:    "admin",
			Permissions: []int{3},
			Cooldowns:   2,
		},
		Run: func(c *plugin.Ctx) error {
			if len(c.Args) < 2 {
				_, err := c.Reply("Usage: setpermission <userID|@mention> <tag...>")
				return err
			}

			targetID := c.Args[0]
			for id := range c.Event.Mentions {
				targetID = id
				break
			}

			tags := c.Args[1:]
			for _, tag := range tags {
				if !validTags[tag] {
					_, err := c.Reply(fmt.Sprintf("Unknown tag %q. Valid: user, mod, thread_admin, admin, supper_admin.", tag))
					return err
				}
			}

			_, err := c.Threads.Modify(c.Context, c.Event.ThreadID, func(t *models.Thread) error {
				if t.Permissions == nil {
					t.Permissions = make(map[string][]string)
				}
				t.Permissions[targetID] = tags
				return nil
			})
			if err != nil {
				return err
			}

			_, err = c.Reply(fmt.Sprintf("✅ %s now has: %s", targetID, strings.Join(tags, ", ")))
			return err
		},
	})
}

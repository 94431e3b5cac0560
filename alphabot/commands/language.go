package commands

import (
	"fmt"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/lang"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

func Language() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "language",
			Aliases:     []string{"lang"},
			Description: "Set this thread's reply language",
			Usage:       "language <en|vi>",
			Category:    "admin",
			Permissions: []int{2},
			Cooldowns:   2,
		},
		Run: func(c *plugin.Ctx) error {
			if len(c.Args) == 0 {
				_, err := c.Reply(fmt.Sprintf("Current language: %s", c.Language()))
				return err
			}

			code := c.Args[0]
			if !lang.Supported(code) {
				_, err := c.Reply(fmt.Sprintf("Language %q is not supported.", code))
				return err
			}

			_, err := c.Threads.Modify(c.Context, c.Event.ThreadID, func(t *models.Thread) error {
				t.Language = code
				return nil
			})
			if err != nil {
				return err
			}
			_, err = c.Reply(fmt.Sprintf("✅ Language set to %s.", code))
			return err
		},
	})
}

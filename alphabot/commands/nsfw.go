package commands

import (
	"github.com/alphabot-dev/alphabot/alphabot/database/models"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

// NSFW toggles the per-thread NSFW flag the dispatcher's gate consults.
// Uses the legacy single-level config shape on purpose; it keeps the adapter
// path exercised by a real plugin.
func NSFW() *plugin.Command {
	level := 2
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:         "nsfw",
			Description:  "Enable or disable NSFW commands in this thread",
			Usage:        "nsfw <on|off>",
			Category:     "admin",
			HasPermssion: &level,
			Cooldowns:    2,
		},
		OnStart: func(c *plugin.Ctx) error {
			if len(c.Args) == 0 || (c.Args[0] != "on" && c.Args[0] != "off") {
				_, err := c.Reply("Usage: nsfw <on|off>")
				return err
			}
			enable := c.Args[0] == "on"

			_, err := c.Threads.Modify(c.Context, c.Event.ThreadID, func(t *models.Thread) error {
				t.NSFW = enable
				return nil
			})
			if err != nil {
				return err
			}

			if enable {
				_, err = c.Reply("🔞 NSFW commands enabled for this thread.")
			} else {
				_, err = c.Reply("✅ NSFW commands disabled for this thread.")
			}
			return err
		},
	})
}

package commands

import (
	"fmt"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

func Uptime(deps Deps) *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "uptime",
			Aliases:     []string{"upt"},
			Description: "Show how long the bot has been running",
			Usage:       "uptime",
			Category:    "system",
			Permissions: []int{0},
			Cooldowns:   5,
		},
		Run: func(c *plugin.Ctx) error {
			up := time.Since(deps.StartedAt).Round(time.Second)
			days := int(up.Hours()) / 24
			hours := int(up.Hours()) % 24
			minutes := int(up.Minutes()) % 60
			seconds := int(up.Seconds()) % 60

			_, err := c.Reply(fmt.Sprintf("⏱️ Uptime: %dd %dh %dm %ds", days, hours, minutes, seconds))
			return err
		},
	})
}

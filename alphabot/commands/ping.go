package commands

import (
	"fmt"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

func Ping() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "ping",
			Aliases:     []string{"p"},
			Description: "Check that the bot is alive",
			Usage:       "ping",
			Category:    "system",
			Permissions: []int{0},
			Cooldowns:   2,
		},
		Run: func(c *plugin.Ctx) error {
			start := time.Now()
			result, err := c.Reply("🏓 Pong!")
			if err != nil {
				return err
			}
			latency := time.Since(start)
			if latency > time.Second {
				_, err = c.Chat.SendMessage(c.Context,
					fmt.Sprintf("⚠️ Slow connection: %dms", latency.Milliseconds()),
					c.Event.ThreadID, result.MessageID)
			}
			return err
		},
	})
}
